package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/dig"

	dig_container "github.com/trezcool/studytrack/apps/api/di/dig"
	echoapi "github.com/trezcool/studytrack/apps/api/echo"
	"github.com/trezcool/studytrack/assets"
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
	schedulersvc "github.com/trezcool/studytrack/services/scheduler"
)

// DefaultPassword satisfies the password policy.
const DefaultPassword = "Str0ng&Secret"

type appParams struct {
	dig.In

	Conf   *core.Config
	Cal    *core.Calendar
	Logger core.Logger
	Mail   core.EmailService

	Tx          core.Transactor
	Students    student.Repository
	Subjects    subject.Repository
	Goals       goal.Repository
	ActionPlans actionplan.Repository
	Tasks       task.Repository
	Progress    progress.Repository
	Timetables  timetable.Repository
	MyDays      myday.Repository

	StudentSvc    *student.Service
	SubjectSvc    *subject.Service
	GoalSvc       *goal.Service
	TaskSvc       *task.Service
	ActionPlanSvc *actionplan.Service
	ProgressSync  *progress.Synchronizer
	TimetableSvc  *timetable.Service
	MyDaySvc      *myday.Service
	DashboardSvc  *dashboard.Service

	Scheduler *schedulersvc.Scheduler
	Server    *echoapi.Server
}

// App is the whole application wired on a fresh in-memory store.
type App struct {
	appParams
	Mail *emailsvc.ServiceMock
}

// NewApp builds an App whose calendar is frozen at now.
func NewApp(t *testing.T, now time.Time) *App {
	t.Helper()

	c := dig_container.New(core.NewTestConfig)
	var app App
	err := c.Invoke(func(p appParams) {
		app.appParams = p
	})
	if err != nil {
		t.Fatalf("NewApp(): %v", err)
	}
	mail, ok := app.appParams.Mail.(*emailsvc.ServiceMock)
	if !ok {
		t.Fatalf("NewApp(): unexpected email service %T", app.appParams.Mail)
	}
	app.Mail = mail
	app.Cal.SetClock(func() time.Time { return now })
	core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, app.Conf, app.Logger)
	return &app
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func CreateStudent(t *testing.T, repo student.Repository, name, email string, createdAt ...time.Time) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	st := student.Student{
		ID:        core.StudentID(core.NewID()),
		Name:      name,
		Email:     email,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := st.SetPassword(DefaultPassword); err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	st, err := repo.CreateStudent(context.Background(), st)
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return st
}

func CreateGoal(t *testing.T, svc *goal.Service, studentID core.StudentID, title string, typ goal.Type) goal.Goal {
	t.Helper()

	g, err := svc.Create(context.Background(), studentID, goal.NewGoal{Title: title, Type: string(typ)})
	if err != nil {
		t.Fatalf("CreateGoal(): %v", err)
	}
	return g
}

func CreateSubject(t *testing.T, svc *subject.Service, studentID core.StudentID, name string) subject.Subject {
	t.Helper()

	sub, err := svc.Create(context.Background(), studentID, subject.NewSubject{Name: name})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}
	return sub
}

// CreateTask creates a task linked to goalID, if any, and fails on any error including a sync failure.
func CreateTask(t *testing.T, svc *task.Service, studentID core.StudentID, title string, goalID core.GoalID, done bool) task.Task {
	t.Helper()

	tsk, err := svc.Create(context.Background(), studentID, task.NewTask{Title: title, GoalID: string(goalID), IsCompleted: done})
	if err != nil {
		t.Fatalf("CreateTask(): %v", err)
	}
	return tsk
}
