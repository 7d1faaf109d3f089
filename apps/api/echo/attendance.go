package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{
		svc:      svc,
		validate: validate,
	}

	ag := g.Group("/attendance", jwt)
	ag.GET("/cohort/:cohortId", api.queryByCohort, mentorMiddleware())
	ag.GET("/cohort/:cohortId/stats", api.cohortStats, mentorMiddleware())
	ag.GET("/user/:userId", api.queryByUser, mentorMiddleware())
	ag.POST("", api.record, mentorMiddleware())
	ag.POST("/bulk", api.bulkRecord, mentorMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())

	sg := g.Group("/sessions", jwt)
	sg.GET("/cohort/:cohortId", api.querySessions)
	sg.GET("/cohort/:cohortId/with-stats", api.querySessionsWithStats)
	sg.GET("/:id", api.retrieveSession)
	sg.POST("", api.createSession, mentorMiddleware())
	sg.PUT("/:id", api.updateSession, mentorMiddleware())
	sg.POST("/:id/complete", api.completeSession, mentorMiddleware())
	sg.DELETE("/:id", api.destroySession, adminMiddleware())
}

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Record(ctx.Request().Context(), data, claims.UserID())
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

// bulkRecord marks attendance for a whole cohort session in one transaction;
// either every entry is recorded or none is.
func (api *attendanceApi) bulkRecord(ctx echo.Context) error {
	var data attendance.BulkRecording
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkRecording")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	recs, err := api.svc.BulkRecord(ctx.Request().Context(), data, claims.UserID())
	if err != nil {
		return errors.Wrap(err, "bulk recording attendance")
	}
	return ctx.JSON(http.StatusCreated, recs)
}

func (api *attendanceApi) queryByCohort(ctx echo.Context) error {
	cohortID, err := intParam(ctx, "cohortId")
	if err != nil {
		return err
	}
	recs, err := api.svc.QueryByCohort(ctx.Request().Context(), cohortID)
	if err != nil {
		return errors.Wrap(err, "querying attendance by cohort")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) queryByUser(ctx echo.Context) error {
	userID, err := intParam(ctx, "userId")
	if err != nil {
		return err
	}
	recs, err := api.svc.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying attendance by user")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) cohortStats(ctx echo.Context) error {
	cohortID, err := intParam(ctx, "cohortId")
	if err != nil {
		return err
	}
	stats, err := api.svc.CohortStats(ctx.Request().Context(), cohortID)
	if err != nil {
		return errors.Wrap(err, "computing cohort attendance stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteRecords(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Sessions

func (api *attendanceApi) createSession(ctx echo.Context) error {
	var data attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.CreateSession(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == attendance.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *attendanceApi) querySessions(ctx echo.Context) error {
	cohortID, err := intParam(ctx, "cohortId")
	if err != nil {
		return err
	}
	sessions, err := api.svc.QuerySessions(ctx.Request().Context(), cohortID)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *attendanceApi) querySessionsWithStats(ctx echo.Context) error {
	cohortID, err := intParam(ctx, "cohortId")
	if err != nil {
		return err
	}
	sessions, err := api.svc.QuerySessionsWithStats(ctx.Request().Context(), cohortID)
	if err != nil {
		return errors.Wrap(err, "querying sessions with stats")
	}
	if sessions == nil {
		sessions = []attendance.SessionWithStats{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *attendanceApi) retrieveSession(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	sess, err := api.svc.GetSession(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == attendance.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding session by ID")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *attendanceApi) updateSession(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data attendance.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.UpdateSession(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == attendance.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *attendanceApi) completeSession(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data struct {
		Notes string `json:"notes"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding session notes")
	}

	sess, err := api.svc.CompleteSession(ctx.Request().Context(), id, data.Notes)
	if err != nil {
		if errors.Cause(err) == attendance.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "completing session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *attendanceApi) destroySession(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSessions(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == attendance.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}
