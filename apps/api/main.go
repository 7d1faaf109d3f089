package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/boardwave/academy/apps/api/echo"
	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/analytics"
	"github.com/boardwave/academy/core/attendance"
	"github.com/boardwave/academy/core/cohort"
	"github.com/boardwave/academy/core/course"
	"github.com/boardwave/academy/core/enrollment"
	"github.com/boardwave/academy/core/programme"
	"github.com/boardwave/academy/core/progress"
	"github.com/boardwave/academy/core/user"
	emailsvc "github.com/boardwave/academy/services/email"
	logsvc "github.com/boardwave/academy/services/logger"
	"github.com/boardwave/academy/storage/database"
	sqlxrepos "github.com/boardwave/academy/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(db, sqlxrepos.NewUserRepository(db), mailSvc, conf)
	progSvc := programme.NewService(db, sqlxrepos.NewProgrammeRepository(db))
	cohortSvc := cohort.NewService(db, sqlxrepos.NewCohortRepository(db))
	progressSvc := progress.NewService(sqlxrepos.NewProgressRepository(db))
	courseSvc := course.NewService(db, sqlxrepos.NewCourseRepository(db), progressSvc)
	enrollSvc := enrollment.NewService(db, sqlxrepos.NewEnrollmentRepository(db), usrSvc, mailSvc, conf)
	attendSvc := attendance.NewService(db, sqlxrepos.NewAttendanceRepository(db))
	analyticsSvc := analytics.NewService(sqlxrepos.NewAnalyticsRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			ProgrammeSvc:  progSvc,
			CohortSvc:     cohortSvc,
			CourseSvc:     courseSvc,
			EnrollmentSvc: enrollSvc,
			AttendanceSvc: attendSvc,
			ProgressSvc:   progressSvc,
			AnalyticsSvc:  analyticsSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*database.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
