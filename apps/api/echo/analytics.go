package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/analytics"
)

type analyticsApi struct {
	svc *analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *analytics.Service) {
	api := analyticsApi{svc: svc}

	ag := g.Group("/analytics", jwt, viewerMiddleware())
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/programme/:id", api.programmeStats)
}

func (api *analyticsApi) dashboard(ctx echo.Context) error {
	overview, err := api.svc.Overview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing dashboard overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *analyticsApi) programmeStats(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	stats, err := api.svc.ProgrammeStats(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == analytics.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing programme stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
