package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dashboard/core/calendar"
	"github.com/trezcool/dashboard/core/user"
)

var errEvtNotFoundInCtx = errors.New("event object not found in echo.Context")

type eventApi struct {
	svc      *calendar.Service
	validate *validator.Validate
	appName  string
}

func registerEventAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *calendar.Service,
	validate *validator.Validate,
	appName string,
) {
	api := eventApi{
		svc:      svc,
		validate: validate,
		appName:  appName,
	}
	editors := rolesMiddleware(user.RoleAdmin, user.RoleStaff)

	eg := g.Group("/events", jwt)
	eg.GET("", api.query)
	eg.POST("", api.create, editors)
	eg.GET("/export.ics", api.export)

	// detail endpoints
	dg := eg.Group("/:id", eventMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, editors)
	dg.DELETE("", api.destroy, editors)
	dg.PUT("/attendance", api.updateAttendance, rolesMiddleware(user.RoleED))
}

// Handlers

func (api *eventApi) create(ctx echo.Context) error {
	var data calendar.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate, api.svc.Location()); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	createdBy := claims.Username
	if createdBy == "" {
		createdBy = claims.Email
	}

	evt, err := api.svc.Create(ctx.Request().Context(), data, createdBy)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *eventApi) filter(ctx echo.Context) (*calendar.QueryFilter, error) {
	filter := new(calendar.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid query").SetInternal(err)
	}
	filter.Clean()

	var err error
	if filter.From, err = queryTime(ctx, "from", api.svc.Location()); err != nil {
		return nil, err
	}
	if filter.To, err = queryTime(ctx, "to", api.svc.Location()); err != nil {
		return nil, err
	}
	return filter, nil
}

func (api *eventApi) query(ctx echo.Context) error {
	filter, err := api.filter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	events, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	return ctx.JSON(http.StatusOK, events)
}

// export serves the filtered events as an iCalendar file.
func (api *eventApi) export(ctx echo.Context) error {
	filter, err := api.filter(ctx)
	if err != nil {
		return err
	}

	events, err := api.svc.Query(ctx.Request().Context(), filter, nil)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}

	var buf bytes.Buffer
	if err = calendar.ExportICal(&buf, events, api.appName); err != nil {
		return errors.Wrap(err, "exporting events")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="events.ics"`)
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(calendar.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) update(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(calendar.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}

	var data calendar.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(evt, api.validate, api.svc.Location()); err != nil {
		return err
	}

	evt, err := api.svc.Update(ctx.Request().Context(), evt, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) updateAttendance(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(calendar.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}

	var data calendar.AttendanceUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttendanceUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.UpdateAttendance(ctx.Request().Context(), evt, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(calendar.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), evt.ID); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func eventMiddleware(svc *calendar.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			evt, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == calendar.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding event by ID")
			}
			ctx.Set("object", evt)
			return next(ctx)
		}
	}
}
