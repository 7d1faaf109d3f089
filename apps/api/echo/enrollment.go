package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/enrollment"
)

type enrollmentApi struct {
	svc      *enrollment.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *enrollment.Service, validate *validator.Validate) {
	api := enrollmentApi{
		svc:      svc,
		validate: validate,
	}

	eg := g.Group("/enrollments", jwt)
	eg.GET("", api.query, mentorMiddleware())
	eg.GET("/cohort/:cohortId", api.queryByCohort, mentorMiddleware())
	eg.GET("/user/:userId", api.queryByUser, mentorMiddleware())
	eg.GET("/:id", api.retrieve, mentorMiddleware())
	eg.POST("", api.create, adminMiddleware())
	eg.POST("/bulk", api.bulkCreate, adminMiddleware())
	eg.PUT("/:id", api.update, adminMiddleware())
	eg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "enrolling user")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

// bulkCreate enrolls a set of users in one cohort; users already enrolled
// are skipped, the response reports how many rows were actually created.
func (api *enrollmentApi) bulkCreate(ctx echo.Context) error {
	var data enrollment.BulkEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.BulkEnroll(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "bulk enrolling users")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *enrollmentApi) query(ctx echo.Context) error {
	enrollments, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, emptyEnrollmentsIfNil(enrollments))
}

func (api *enrollmentApi) queryByCohort(ctx echo.Context) error {
	cohortID, err := intParam(ctx, "cohortId")
	if err != nil {
		return err
	}
	enrollments, err := api.svc.QueryByCohort(ctx.Request().Context(), cohortID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments by cohort")
	}
	return ctx.JSON(http.StatusOK, emptyEnrollmentsIfNil(enrollments))
}

func (api *enrollmentApi) queryByUser(ctx echo.Context) error {
	userID, err := intParam(ctx, "userId")
	if err != nil {
		return err
	}
	enrollments, err := api.svc.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments by user")
	}
	return ctx.JSON(http.StatusOK, emptyEnrollmentsIfNil(enrollments))
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	enr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding enrollment by ID")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data enrollment.UpdateEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Withdraw(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == enrollment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "withdrawing enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func emptyEnrollmentsIfNil(enrollments []enrollment.Enrollment) []enrollment.Enrollment {
	if enrollments == nil {
		return []enrollment.Enrollment{}
	}
	return enrollments
}
