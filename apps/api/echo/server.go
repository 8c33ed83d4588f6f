package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/actionplan"
	"github.com/trezcool/studytrack/core/dashboard"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/myday"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/student"
	"github.com/trezcool/studytrack/core/subject"
	"github.com/trezcool/studytrack/core/task"
	"github.com/trezcool/studytrack/core/timetable"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
	}

	Deps struct {
		Conf          *core.Config
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		StudentSvc    *student.Service
		SubjectSvc    *subject.Service
		GoalSvc       *goal.Service
		TaskSvc       *task.Service
		ActionPlanSvc *actionplan.Service
		ProgressSync  *progress.Synchronizer
		TimetableSvc  *timetable.Service
		MyDaySvc      *myday.Service
		DashboardSvc  *dashboard.Service
	}

	Server struct {
		opts     Options
		deps     Deps
		app      *echo.Echo
		jwt      middleware.JWTConfig
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(opts Options, deps Deps) *Server {
	if opts.Address == "" {
		opts.Address = deps.Conf.Server.Address
	}
	s := &Server{
		opts:     opts,
		deps:     deps,
		app:      echo.New(),
		jwt:      newJWTConfig(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.jwt)

	registerStudentAPI(v1, jwt, s)
	registerSubjectAPI(v1, jwt, s)
	registerGoalAPI(v1, jwt, s)
	registerActionPlanAPI(v1, jwt, s)
	registerTaskAPI(v1, jwt, s)
	registerProgressAPI(v1, jwt, s)
	registerTimetableAPI(v1, jwt, s)
	registerMyDayAPI(v1, jwt, s)
	registerDashboardAPI(v1, jwt, s)
}

// Start blocks until the listener stops; failures are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the application to shut down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
