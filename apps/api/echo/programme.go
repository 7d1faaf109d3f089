package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/analytics"
	"github.com/boardwave/academy/core/programme"
)

type programmeApi struct {
	svc          *programme.Service
	analyticsSvc *analytics.Service
	validate     *validator.Validate
}

func registerProgrammeAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *programme.Service,
	analyticsSvc *analytics.Service,
	validate *validator.Validate,
) {
	api := programmeApi{
		svc:          svc,
		analyticsSvc: analyticsSvc,
		validate:     validate,
	}

	pg := g.Group("/programmes", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, adminMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update, adminMiddleware())
	pg.DELETE("/:id", api.destroy, adminMiddleware())
	pg.GET("/:id/stats", api.stats, viewerMiddleware())
}

func (api *programmeApi) create(ctx echo.Context) error {
	var data programme.NewProgramme
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgramme")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	prog, err := api.svc.Create(ctx.Request().Context(), data, claims.UserID())
	if err != nil {
		return errors.Wrap(err, "creating programme")
	}
	return ctx.JSON(http.StatusCreated, prog)
}

func (api *programmeApi) query(ctx echo.Context) error {
	progs, err := api.svc.Query(ctx.Request().Context(), ctx.QueryParam("status"))
	if err != nil {
		return errors.Wrap(err, "querying programmes")
	}
	if progs == nil {
		progs = []programme.Programme{}
	}
	return ctx.JSON(http.StatusOK, progs)
}

func (api *programmeApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	prog, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == programme.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding programme by ID")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *programmeApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data programme.UpdateProgramme
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgramme")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prog, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == programme.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating programme")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *programmeApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == programme.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting programme")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *programmeApi) stats(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	stats, err := api.analyticsSvc.ProgrammeStats(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == analytics.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing programme stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
