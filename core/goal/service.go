package goal

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

var ErrNotFound = core.NewNotFoundError("goal", "")

type (
	Repository interface {
		CreateGoal(ctx context.Context, g Goal, exec ...core.DBExecutor) (Goal, error)
		// QueryGoals returns the goals of a student, oldest first.
		QueryGoals(ctx context.Context, studentID core.StudentID, filter QueryFilter, exec ...core.DBExecutor) ([]Goal, error)
		GetGoal(ctx context.Context, studentID core.StudentID, id core.GoalID, exec ...core.DBExecutor) (Goal, error)
		UpdateGoal(ctx context.Context, g Goal, exec ...core.DBExecutor) (Goal, error)
		DeleteGoal(ctx context.Context, studentID core.StudentID, id core.GoalID, exec ...core.DBExecutor) error

		GoalExists(ctx context.Context, studentID core.StudentID, id core.GoalID, exec ...core.DBExecutor) (bool, error)
		QueryGoalIDs(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) ([]core.GoalID, error)
	}

	// ProgressCleaner drops the cached progress of a removed goal.
	ProgressCleaner interface {
		DeleteProgress(ctx context.Context, studentID core.StudentID, goalID core.GoalID, exec ...core.DBExecutor) error
	}

	Service struct {
		tx       core.Transactor
		repo     Repository
		progress ProgressCleaner
	}
)

func NewService(tx core.Transactor, repo Repository, progress ProgressCleaner) *Service {
	return &Service{tx: tx, repo: repo, progress: progress}
}

func (svc *Service) Create(ctx context.Context, studentID core.StudentID, ng NewGoal) (Goal, error) {
	now := time.Now().UTC()
	status := ng.Status
	if status == "" {
		status = DefaultStatus
	}
	return svc.repo.CreateGoal(ctx, Goal{
		ID:        core.GoalID(core.NewID()),
		StudentID: studentID,
		Title:     ng.Title,
		Type:      Type(ng.Type),
		StartDate: ng.StartDate,
		EndDate:   ng.EndDate,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, studentID core.StudentID, filter QueryFilter) ([]Goal, error) {
	return svc.repo.QueryGoals(ctx, studentID, filter)
}

func (svc *Service) Get(ctx context.Context, studentID core.StudentID, id core.GoalID) (Goal, error) {
	return svc.repo.GetGoal(ctx, studentID, id)
}

func (svc *Service) Update(ctx context.Context, g Goal, ug UpdateGoal) (Goal, error) {
	if ug.Title != "" {
		g.Title = ug.Title
	}
	if ug.Type != "" {
		g.Type = Type(ug.Type)
	}
	if ug.StartDate != "" {
		g.StartDate = ug.StartDate
	}
	if ug.EndDate != "" {
		g.EndDate = ug.EndDate
	}
	if ug.Status != "" {
		g.Status = ug.Status
	}
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGoal(ctx, g)
}

// Delete removes the goal and its cached progress. Tasks and action plans keep their reference.
func (svc *Service) Delete(ctx context.Context, studentID core.StudentID, id core.GoalID) error {
	return svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.repo.DeleteGoal(ctx, studentID, id, exec); err != nil {
			return errors.Wrap(err, "deleting goal")
		}
		if err := svc.progress.DeleteProgress(ctx, studentID, id, exec); err != nil {
			return errors.Wrap(err, "deleting progress")
		}
		return nil
	})
}
