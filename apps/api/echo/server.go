package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/analytics"
	"github.com/boardwave/academy/core/attendance"
	"github.com/boardwave/academy/core/cohort"
	"github.com/boardwave/academy/core/course"
	"github.com/boardwave/academy/core/enrollment"
	"github.com/boardwave/academy/core/programme"
	"github.com/boardwave/academy/core/progress"
	"github.com/boardwave/academy/core/user"
)

type (
	// ServerDeps is everything a Server needs to route requests.
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        user.ServiceInterface
		ProgrammeSvc   *programme.Service
		CohortSvc      *cohort.Service
		CourseSvc      *course.Service
		EnrollmentSvc  *enrollment.Service
		AttendanceSvc  *attendance.Service
		ProgressSvc    *progress.Service
		AnalyticsSvc   *analytics.Service
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf
	initJWTConfig(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.Conf, s.deps.UserSvc, s.deps.Validate)
	registerProgrammeAPI(v1, jwt, s.deps.ProgrammeSvc, s.deps.AnalyticsSvc, s.deps.Validate)
	registerCohortAPI(v1, jwt, s.deps.CohortSvc, s.deps.EnrollmentSvc, s.deps.AnalyticsSvc, s.deps.Validate)
	registerCourseAPI(v1, jwt, s.deps.CourseSvc, s.deps.Validate)
	registerEnrollmentAPI(v1, jwt, s.deps.EnrollmentSvc, s.deps.Validate)
	registerAttendanceAPI(v1, jwt, s.deps.AttendanceSvc, s.deps.Validate)
	registerProgressAPI(v1, jwt, s.deps.ProgressSvc, s.deps.Validate)
	registerAnalyticsAPI(v1, jwt, s.deps.AnalyticsSvc)
}

func (s *Server) Start() {
	s.errs <- s.app.Start(s.deps.Conf.Server.Address())
}

// Errors reports fatal server errors; the server is unusable once one is received.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// ShutdownSignal relays OS signals and internal shutdown requests.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Academy API!")
}
