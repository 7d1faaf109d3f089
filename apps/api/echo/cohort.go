package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/analytics"
	"github.com/boardwave/academy/core/cohort"
	"github.com/boardwave/academy/core/enrollment"
)

type cohortApi struct {
	svc          *cohort.Service
	enrollSvc    *enrollment.Service
	analyticsSvc *analytics.Service
	validate     *validator.Validate
}

func registerCohortAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *cohort.Service,
	enrollSvc *enrollment.Service,
	analyticsSvc *analytics.Service,
	validate *validator.Validate,
) {
	api := cohortApi{
		svc:          svc,
		enrollSvc:    enrollSvc,
		analyticsSvc: analyticsSvc,
		validate:     validate,
	}

	cg := g.Group("/cohorts", jwt)
	cg.GET("", api.query)
	cg.GET("/programme/:programmeId", api.queryByProgramme)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, adminMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())
	cg.GET("/:id/participants", api.participants, mentorMiddleware())
	cg.GET("/:id/progress", api.progress, mentorMiddleware())
}

func (api *cohortApi) create(ctx echo.Context) error {
	var data cohort.NewCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCohort")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	coh, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating cohort")
	}
	return ctx.JSON(http.StatusCreated, coh)
}

func (api *cohortApi) query(ctx echo.Context) error {
	return api.queryCohorts(ctx, intQueryParam(ctx, "programme_id"))
}

func (api *cohortApi) queryByProgramme(ctx echo.Context) error {
	programmeID, err := intParam(ctx, "programmeId")
	if err != nil {
		return err
	}
	return api.queryCohorts(ctx, programmeID)
}

func (api *cohortApi) queryCohorts(ctx echo.Context, programmeID int) error {
	cohorts, err := api.svc.Query(ctx.Request().Context(), programmeID, ctx.QueryParam("status"))
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	if cohorts == nil {
		cohorts = []cohort.CohortWithCounts{}
	}
	return ctx.JSON(http.StatusOK, cohorts)
}

func (api *cohortApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	coh, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == cohort.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding cohort by ID")
	}
	return ctx.JSON(http.StatusOK, coh)
}

func (api *cohortApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data cohort.UpdateCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCohort")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	coh, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == cohort.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating cohort")
	}
	return ctx.JSON(http.StatusOK, coh)
}

func (api *cohortApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == cohort.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting cohort")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cohortApi) participants(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	enrollments, err := api.enrollSvc.QueryByCohort(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying cohort participants")
	}
	if enrollments == nil {
		enrollments = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *cohortApi) progress(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	engagement, err := api.analyticsSvc.UserEngagement(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying cohort progress")
	}
	if engagement == nil {
		engagement = []analytics.UserEngagement{}
	}
	return ctx.JSON(http.StatusOK, engagement)
}
