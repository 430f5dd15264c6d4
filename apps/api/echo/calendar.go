package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dashboard/core/calendar"
)

type calendarApi struct {
	svc *calendar.Service
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *calendar.Service) {
	api := calendarApi{svc: svc}

	cg := g.Group("/calendar", jwt)
	cg.GET("/day", api.day)
	cg.GET("/week", api.week)
	cg.GET("/month", api.month)
}

// Handlers

func (api *calendarApi) day(ctx echo.Context) error {
	date, err := queryDate(ctx, "date", api.svc.Location())
	if err != nil {
		return err
	}
	view, err := api.svc.Day(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "building day view")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *calendarApi) week(ctx echo.Context) error {
	date, err := queryDate(ctx, "date", api.svc.Location())
	if err != nil {
		return err
	}
	view, err := api.svc.Week(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "building week view")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *calendarApi) month(ctx echo.Context) error {
	month, err := queryMonth(ctx, "month", api.svc.Location())
	if err != nil {
		return err
	}
	showAdjacent, err := queryBool(ctx, "show_adjacent")
	if err != nil {
		return err
	}
	view, err := api.svc.Month(ctx.Request().Context(), month, showAdjacent)
	if err != nil {
		return errors.Wrap(err, "building month view")
	}
	return ctx.JSON(http.StatusOK, view)
}
