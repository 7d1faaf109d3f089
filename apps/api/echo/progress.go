package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/progress"
)

type progressApi struct {
	svc      *progress.Service
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *progress.Service, validate *validator.Validate) {
	api := progressApi{
		svc:      svc,
		validate: validate,
	}

	pg := g.Group("/progress", jwt)
	pg.GET("/user/:userId", api.queryByUser, mentorMiddleware())
	pg.GET("/user/:userId/summary", api.userSummary, mentorMiddleware())
	pg.POST("/module/:moduleId/start", api.startModule)
	pg.POST("/module/:moduleId/complete", api.completeModule)
}

func (api *progressApi) queryByUser(ctx echo.Context) error {
	userID, err := intParam(ctx, "userId")
	if err != nil {
		return err
	}
	trackings, err := api.svc.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying progress by user")
	}
	if trackings == nil {
		trackings = []progress.Tracking{}
	}
	return ctx.JSON(http.StatusOK, trackings)
}

func (api *progressApi) userSummary(ctx echo.Context) error {
	userID, err := intParam(ctx, "userId")
	if err != nil {
		return err
	}
	summary, err := api.svc.UserSummary(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "computing progress summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

// startModule marks the authenticated user's progress on a module as started.
func (api *progressApi) startModule(ctx echo.Context) error {
	moduleID, err := intParam(ctx, "moduleId")
	if err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tr, err := api.svc.StartModule(ctx.Request().Context(), claims.UserID(), moduleID)
	if err != nil {
		if errors.Cause(err) == progress.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "starting module")
	}
	return ctx.JSON(http.StatusOK, tr)
}

// completeModule marks the authenticated user's progress on a module as
// completed, accumulating the reported time spent.
func (api *progressApi) completeModule(ctx echo.Context) error {
	moduleID, err := intParam(ctx, "moduleId")
	if err != nil {
		return err
	}

	var data struct {
		TimeSpentMinutes int `json:"time_spent_minutes" validate:"omitempty,min=0"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding completion data")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tr, err := api.svc.CompleteModule(ctx.Request().Context(), claims.UserID(), moduleID, data.TimeSpentMinutes)
	if err != nil {
		if errors.Cause(err) == progress.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "completing module")
	}
	return ctx.JSON(http.StatusOK, tr)
}
