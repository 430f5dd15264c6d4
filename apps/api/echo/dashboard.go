package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dashboard/core/dashboard"
	"github.com/trezcool/dashboard/core/user"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}

	dg := g.Group("/dashboard", jwt, rolesMiddleware(user.RoleAdmin, user.RoleED))
	dg.GET("/finance", api.finance)
}

func (api *dashboardApi) finance(ctx echo.Context) error {
	fin, err := api.svc.Finance(ctx.Request().Context(), ctx.QueryParam("fy"))
	if err != nil {
		return errors.Wrap(err, "building finance dashboard")
	}
	return ctx.JSON(http.StatusOK, fin)
}
