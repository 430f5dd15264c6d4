package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dashboard/core/business"
	"github.com/trezcool/dashboard/core/user"
)

var (
	errEntNotFoundInCtx = errors.New("entity object not found in echo.Context")
	errMsNotFoundInCtx  = errors.New("milestone object not found in echo.Context")
)

type businessApi struct {
	svc      *business.Service
	validate *validator.Validate
}

func registerBusinessAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *business.Service,
	validate *validator.Validate,
) {
	api := businessApi{
		svc:      svc,
		validate: validate,
	}
	editors := rolesMiddleware(user.RoleAdmin, user.RoleStaff)

	bg := g.Group("/business", jwt)

	eg := bg.Group("/entities")
	eg.GET("", api.queryEntities)
	eg.POST("", api.createEntity, editors)

	edg := eg.Group("/:id", entityMiddleware(api.svc))
	edg.GET("", api.retrieveEntity)
	edg.PUT("", api.updateEntity, editors)
	edg.DELETE("", api.destroyEntity, editors)
	edg.GET("/milestones", api.queryEntityMilestones)
	edg.POST("/milestones", api.createMilestone, editors)

	mg := bg.Group("/milestones")
	mg.GET("", api.queryMilestones)

	mdg := mg.Group("/:id", milestoneMiddleware(api.svc))
	mdg.GET("", api.retrieveMilestone)
	mdg.PUT("", api.updateMilestone, editors)
	mdg.DELETE("", api.destroyMilestone, editors)
}

// Entities

func (api *businessApi) createEntity(ctx echo.Context) error {
	var data business.NewEntity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntity")
	}
	if err := data.Validate(api.validate, api.svc.Location()); err != nil {
		return err
	}

	ent, err := api.svc.CreateEntity(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating entity")
	}
	return ctx.JSON(http.StatusCreated, ent)
}

func (api *businessApi) queryEntities(ctx echo.Context) error {
	filter := new(business.EntityFilter)
	if err := ctx.Bind(filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query").SetInternal(err)
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	entities, err := api.svc.QueryEntities(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying entities")
	}
	return ctx.JSON(http.StatusOK, entities)
}

func (api *businessApi) retrieveEntity(ctx echo.Context) error {
	ent, ok := ctx.Get("object").(business.Entity)
	if !ok {
		return errors.Wrap(errEntNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, ent)
}

func (api *businessApi) updateEntity(ctx echo.Context) error {
	ent, ok := ctx.Get("object").(business.Entity)
	if !ok {
		return errors.Wrap(errEntNotFoundInCtx, "retrieving object from context")
	}

	var data business.UpdateEntity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEntity")
	}
	if err := data.Validate(ent, api.validate, api.svc.Location()); err != nil {
		return err
	}

	ent, err := api.svc.UpdateEntity(ctx.Request().Context(), ent, data)
	if err != nil {
		return errors.Wrap(err, "updating entity")
	}
	return ctx.JSON(http.StatusOK, ent)
}

// destroyEntity answers 409 with the blocking milestones when the entity still has some.
func (api *businessApi) destroyEntity(ctx echo.Context) error {
	ent, ok := ctx.Get("object").(business.Entity)
	if !ok {
		return errors.Wrap(errEntNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.DeleteEntity(ctx.Request().Context(), ent.ID); err != nil {
		return errors.Wrap(err, "deleting entity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Milestones

func (api *businessApi) createMilestone(ctx echo.Context) error {
	ent, ok := ctx.Get("object").(business.Entity)
	if !ok {
		return errors.Wrap(errEntNotFoundInCtx, "retrieving object from context")
	}

	var data business.NewMilestone
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMilestone")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.CreateMilestone(ctx.Request().Context(), ent, data)
	if err != nil {
		return errors.Wrap(err, "creating milestone")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *businessApi) milestoneFilter(ctx echo.Context) (*business.MilestoneFilter, error) {
	filter := new(business.MilestoneFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid query").SetInternal(err)
	}

	var err error
	if filter.DueFrom, err = queryTime(ctx, "due_from", api.svc.Location()); err != nil {
		return nil, err
	}
	if filter.DueTo, err = queryTime(ctx, "due_to", api.svc.Location()); err != nil {
		return nil, err
	}
	return filter, nil
}

func (api *businessApi) queryMilestones(ctx echo.Context) error {
	filter, err := api.milestoneFilter(ctx)
	if err != nil {
		return err
	}
	return api.respondMilestones(ctx, filter)
}

func (api *businessApi) queryEntityMilestones(ctx echo.Context) error {
	ent, ok := ctx.Get("object").(business.Entity)
	if !ok {
		return errors.Wrap(errEntNotFoundInCtx, "retrieving object from context")
	}
	filter, err := api.milestoneFilter(ctx)
	if err != nil {
		return err
	}
	filter.EntityIDs = []string{ent.ID}
	return api.respondMilestones(ctx, filter)
}

func (api *businessApi) respondMilestones(ctx echo.Context, filter *business.MilestoneFilter) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	milestones, err := api.svc.QueryMilestones(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying milestones")
	}
	return ctx.JSON(http.StatusOK, milestones)
}

func (api *businessApi) retrieveMilestone(ctx echo.Context) error {
	m, ok := ctx.Get("object").(business.PaymentMilestone)
	if !ok {
		return errors.Wrap(errMsNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *businessApi) updateMilestone(ctx echo.Context) error {
	m, ok := ctx.Get("object").(business.PaymentMilestone)
	if !ok {
		return errors.Wrap(errMsNotFoundInCtx, "retrieving object from context")
	}

	var data business.UpdateMilestone
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMilestone")
	}
	if err := data.Validate(m, api.validate); err != nil {
		return err
	}

	m, err := api.svc.UpdateMilestone(ctx.Request().Context(), m, data)
	if err != nil {
		return errors.Wrap(err, "updating milestone")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *businessApi) destroyMilestone(ctx echo.Context) error {
	m, ok := ctx.Get("object").(business.PaymentMilestone)
	if !ok {
		return errors.Wrap(errMsNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.DeleteMilestone(ctx.Request().Context(), m.ID); err != nil {
		return errors.Wrap(err, "deleting milestone")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func entityMiddleware(svc *business.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ent, err := svc.GetEntity(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == business.ErrEntityNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding entity by ID")
			}
			ctx.Set("object", ent)
			return next(ctx)
		}
	}
}

func milestoneMiddleware(svc *business.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			m, err := svc.GetMilestone(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == business.ErrMilestoneNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding milestone by ID")
			}
			ctx.Set("object", m)
			return next(ctx)
		}
	}
}
