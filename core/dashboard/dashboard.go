// Package dashboard aggregates a student's records into the home screen summary.
package dashboard

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/myday"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/subject"
	"github.com/trezcool/studytrack/core/task"
)

type Summary struct {
	TotalSubjects     int                 `json:"total_subjects"`
	TotalGoals        int                 `json:"total_goals"`
	TotalTasks        int                 `json:"total_tasks"`
	CompletedTasks    int                 `json:"completed_tasks"`
	OverallProgress   int                 `json:"overall_progress"`
	Progress          []progress.Progress `json:"progress"`
	TodayTasks        []task.Task         `json:"today_tasks"`
	ProductivityScore *int                `json:"productivity_score"` // nil until today is logged
}

// StudySyncer creates today's study tasks.
type StudySyncer interface {
	SyncToday(ctx context.Context, studentID core.StudentID) ([]task.Task, error)
}

type Service struct {
	subjects subject.Repository
	goals    goal.Repository
	tasks    task.Repository
	progress *progress.Synchronizer
	study    StudySyncer
	days     *myday.Service
	cal      *core.Calendar
}

func NewService(
	subjects subject.Repository,
	goals goal.Repository,
	tasks task.Repository,
	progress *progress.Synchronizer,
	study StudySyncer,
	days *myday.Service,
	cal *core.Calendar,
) *Service {
	return &Service{
		subjects: subjects,
		goals:    goals,
		tasks:    tasks,
		progress: progress,
		study:    study,
		days:     days,
		cal:      cal,
	}
}

// Summary first generates today's study tasks, then computes the figures.
// When the generation fails the summary is still returned along with a *core.SyncError.
func (svc *Service) Summary(ctx context.Context, studentID core.StudentID) (Summary, error) {
	var syncErr error
	if _, err := svc.study.SyncToday(ctx, studentID); err != nil {
		if _, ok := core.AsSyncError(err); ok {
			syncErr = err
		} else {
			syncErr = &core.SyncError{StudentID: studentID, Err: err}
		}
	}

	subjects, err := svc.subjects.QuerySubjects(ctx, studentID, subject.QueryFilter{})
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying subjects")
	}
	goalIDs, err := svc.goals.QueryGoalIDs(ctx, studentID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying goals")
	}
	total, completed, err := svc.tasks.CountTasksByStudent(ctx, studentID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting tasks")
	}
	prog, err := svc.progress.QueryByStudent(ctx, studentID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying progress")
	}
	todayTasks, err := svc.tasks.QueryTasks(ctx, studentID, task.QueryFilter{StudyDate: svc.cal.Today()})
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying today's tasks")
	}

	sum := Summary{
		TotalSubjects:   len(subjects),
		TotalGoals:      len(goalIDs),
		TotalTasks:      total,
		CompletedTasks:  completed,
		OverallProgress: progress.Percentage(completed, total),
		Progress:        prog,
		TodayTasks:      todayTasks,
	}
	if sum.Progress == nil {
		sum.Progress = []progress.Progress{}
	}
	if sum.TodayTasks == nil {
		sum.TodayTasks = []task.Task{}
	}

	day, err := svc.days.Today(ctx, studentID)
	switch {
	case err == nil:
		sum.ProductivityScore = &day.ProductivityScore
	case errors.Cause(err) != myday.ErrNotFound:
		return Summary{}, errors.Wrap(err, "getting today's my day")
	}
	return sum, syncErr
}
