package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, validate *validator.Validate) {
	api := courseApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.GET("/programme/:programmeId", api.queryByProgramme)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, adminMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())

	cg.GET("/:id/modules", api.queryModules)
	cg.POST("/:id/modules", api.createModule, adminMiddleware())
	cg.DELETE("/:id/modules", api.destroyModules, adminMiddleware())

	cg.GET("/:id/prerequisites", api.queryPrerequisites)
	cg.GET("/:id/dependents", api.queryDependents)
	cg.GET("/:id/check-prerequisites", api.checkPrerequisites)
	cg.POST("/:id/prerequisites", api.addPrerequisite, adminMiddleware())
	cg.DELETE("/:id/prerequisites/:prerequisiteId", api.removePrerequisite, adminMiddleware())
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(courses))
}

func (api *courseApi) queryByProgramme(ctx echo.Context) error {
	programmeID, err := intParam(ctx, "programmeId")
	if err != nil {
		return err
	}
	courses, err := api.svc.QueryByProgramme(ctx.Request().Context(), programmeID)
	if err != nil {
		return errors.Wrap(err, "querying courses by programme")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(courses))
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.svc.GetWithModules(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryModules(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	modules, err := api.svc.QueryModules(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	if modules == nil {
		modules = []course.Module{}
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *courseApi) createModule(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data course.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	data.CourseID = id
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *courseApi) destroyModules(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteModules(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting modules")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryPrerequisites(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	prereqs, err := api.svc.QueryPrerequisites(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying prerequisites")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(prereqs))
}

func (api *courseApi) queryDependents(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	deps, err := api.svc.QueryDependents(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying dependents")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(deps))
}

func (api *courseApi) checkPrerequisites(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	check, err := api.svc.CheckAccess(ctx.Request().Context(), claims.UserID(), id)
	if err != nil {
		return errors.Wrap(err, "checking prerequisites")
	}
	return ctx.JSON(http.StatusOK, check)
}

func (api *courseApi) addPrerequisite(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data course.NewPrerequisite
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrerequisite")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	edge, err := api.svc.AddPrerequisite(ctx.Request().Context(), id, data.PrerequisiteCourseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding prerequisite")
	}
	return ctx.JSON(http.StatusCreated, edge)
}

func (api *courseApi) removePrerequisite(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	prereqID, err := intParam(ctx, "prerequisiteId")
	if err != nil {
		return err
	}

	if err := api.svc.RemovePrerequisite(ctx.Request().Context(), id, prereqID); err != nil {
		if errors.Cause(err) == course.ErrPrerequisiteNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "removing prerequisite")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func emptyIfNil(courses []course.Course) []course.Course {
	if courses == nil {
		return []course.Course{}
	}
	return courses
}
