package dig_container

import (
	"io"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/studytrack/apps/api/echo"
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
	emailsvc "github.com/trezcool/studytrack/services/email"
	logsvc "github.com/trezcool/studytrack/services/logger"
	schedulersvc "github.com/trezcool/studytrack/services/scheduler"
	"github.com/trezcool/studytrack/storage/database"
	inmemdb "github.com/trezcool/studytrack/storage/database/inmem"
	sqlxrepos "github.com/trezcool/studytrack/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Store holds the repositories of the configured engine, under every interface the services need.
type Store struct {
	dig.Out

	DB          io.Closer
	Tx          core.Transactor
	Students    student.Repository
	Subjects    subject.Repository
	Goals       goal.Repository
	ActionPlans actionplan.Repository
	Tasks       task.Repository
	Progress    progress.Repository
	Timetables  timetable.Repository
	MyDays      myday.Repository

	GoalLookup      progress.GoalLookup
	TaskCounter     progress.TaskCounter
	ProgressCleaner goal.ProgressCleaner
	StepMirror      task.StepMirror
}

type ServerParams struct {
	dig.In

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

func newLogger(conf *core.Config) (core.Logger, error) {
	sugar, err := logsvc.NewZap(conf)
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	logger := logsvc.NewRollbarLogger(sugar.Named("api"), conf)
	logger.Enable(!(conf.Debug || conf.TestMode))
	return logger, nil
}

func newDBLogger(conf *core.Config) (core.Logger, error) {
	sugar, err := logsvc.NewZap(conf)
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	logger := logsvc.NewRollbarLogger(sugar.Named("db"), conf)
	logger.Enable(!(conf.Debug || conf.TestMode))
	return logger, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newStore(conf *core.Config, loggerParam DBLoggerParam) Store {
	if conf.Database.Engine == database.EngineMemory {
		db := inmemdb.Open()
		repos := inmemdb.NewRepositories(db)
		return Store{
			DB:              nopCloser{},
			Tx:              db,
			Students:        repos.Students,
			Subjects:        repos.Subjects,
			Goals:           repos.Goals,
			ActionPlans:     repos.ActionPlans,
			Tasks:           repos.Tasks,
			Progress:        repos.Progress,
			Timetables:      repos.Timetables,
			MyDays:          repos.MyDays,
			GoalLookup:      repos.Goals,
			TaskCounter:     repos.Tasks,
			ProgressCleaner: repos.Progress,
			StepMirror:      repos.ActionPlans,
		}
	}

	setUp := func() (io.Closer, *sqlxrepos.Transactor, *sqlxrepos.Repositories, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, nil, nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return db, sqlxrepos.NewTransactor(db), sqlxrepos.NewRepositories(db), nil
	}

	db, tx, repos, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	return Store{
		DB:              db,
		Tx:              tx,
		Students:        repos.Students,
		Subjects:        repos.Subjects,
		Goals:           repos.Goals,
		ActionPlans:     repos.ActionPlans,
		Tasks:           repos.Tasks,
		Progress:        repos.Progress,
		Timetables:      repos.Timetables,
		MyDays:          repos.MyDays,
		GoalLookup:      repos.Goals,
		TaskCounter:     repos.Tasks,
		ProgressCleaner: repos.Progress,
		StepMirror:      repos.ActionPlans,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	switch {
	case conf.TestMode:
		return emailsvc.NewServiceMock(conf, logger)
	case conf.Debug:
		return emailsvc.NewConsoleService(conf, logger)
	default:
		return emailsvc.NewSendgridService(conf, logger)
	}
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	goal.InitValidators(validate, translator)
	return validate
}

func newStudySyncer(svc *timetable.Service) dashboard.StudySyncer { return svc }

func newScheduler(
	conf *core.Config,
	cal *core.Calendar,
	students *student.Service,
	study *timetable.Service,
	logger core.Logger,
) *schedulersvc.Scheduler {
	return schedulersvc.New(conf, cal, students, study, logger)
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(
		echoapi.Options{Address: p.Conf.Server.Address, DisableReqLogs: p.Conf.TestMode},
		echoapi.Deps{
			Conf:          p.Conf,
			Logger:        p.Logger,
			Validate:      p.Validate,
			Translator:    p.Translator,
			StudentSvc:    p.StudentSvc,
			SubjectSvc:    p.SubjectSvc,
			GoalSvc:       p.GoalSvc,
			TaskSvc:       p.TaskSvc,
			ActionPlanSvc: p.ActionPlanSvc,
			ProgressSync:  p.ProgressSync,
			TimetableSvc:  p.TimetableSvc,
			MyDaySvc:      p.MyDaySvc,
			DashboardSvc:  p.DashboardSvc,
		},
	)
}

type NewConfigFunc func() *core.Config

// New returns a new dependency injection dig.Container
func New(newConfig NewConfigFunc) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(core.NewCalendarFromConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))

	must(c.Provide(student.NewService))
	must(c.Provide(subject.NewService))
	must(c.Provide(goal.NewService))
	must(c.Provide(progress.NewSynchronizer))
	must(c.Provide(task.NewService))
	must(c.Provide(actionplan.NewService))
	must(c.Provide(timetable.NewService))
	must(c.Provide(myday.NewService))
	must(c.Provide(newStudySyncer))
	must(c.Provide(dashboard.NewService))

	must(c.Provide(newScheduler))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
