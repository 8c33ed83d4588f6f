// Package schedulersvc runs the daily background jobs.
package schedulersvc

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/student"
	"github.com/trezcool/studytrack/core/task"
)

const jobTimeout = 5 * time.Minute

type (
	// StudentLister lists every registered student.
	StudentLister interface {
		QueryAll(ctx context.Context) ([]student.Student, error)
	}

	// StudySyncer creates a student's study tasks for the current day.
	StudySyncer interface {
		SyncToday(ctx context.Context, studentID core.StudentID) ([]task.Task, error)
	}

	// Scheduler generates every student's daily study tasks once a day,
	// so they exist before anyone opens the dashboard.
	Scheduler struct {
		scheduler *gocron.Scheduler
		students  StudentLister
		study     StudySyncer
		logger    core.Logger
		at        string
	}
)

func New(conf *core.Config, cal *core.Calendar, students StudentLister, study StudySyncer, logger core.Logger) *Scheduler {
	s := gocron.NewScheduler(cal.Location())
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		students:  students,
		study:     study,
		logger:    logger,
		at:        conf.Scheduler.DailySyncAt,
	}
}

// Start schedules the jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.at).Do(s.syncStudyTasks); err != nil {
		return errors.Wrap(err, "scheduling daily study tasks")
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) syncStudyTasks() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.SyncAll(ctx); err != nil {
		s.logger.Error(err.Error(), err)
	}
}

// SyncAll creates today's study tasks of every student and returns how many were created.
// A failure for one student is logged and does not stop the others.
func (s *Scheduler) SyncAll(ctx context.Context) (int, error) {
	students, err := s.students.QueryAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying students")
	}

	created := 0
	for _, st := range students {
		tasks, err := s.study.SyncToday(ctx, st.ID)
		created += len(tasks)
		if err != nil {
			s.logger.Error("syncing study tasks", err, st.Person())
		}
	}
	return created, nil
}
