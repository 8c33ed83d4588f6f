package progress

import (
	"context"
	"expvar"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

// syncFailures counts recomputations that failed after their triggering mutation was persisted.
var syncFailures = expvar.NewInt("progress_sync_failures")

// SyncFailures returns the number of failed synchronizations since start.
func SyncFailures() int64 { return syncFailures.Value() }

// Synchronizer recomputes progress from scratch on every call.
// The count-then-write sequence is not isolated from concurrent writers:
// two overlapping calls for the same goal may store a stale count (last write wins).
type Synchronizer struct {
	repo  Repository
	tasks TaskCounter
	goals GoalLookup
	now   func() time.Time
}

func NewSynchronizer(repo Repository, tasks TaskCounter, goals GoalLookup) *Synchronizer {
	return &Synchronizer{
		repo:  repo,
		tasks: tasks,
		goals: goals,
		now:   time.Now,
	}
}

// Recompute recounts the tasks of goalID and upserts the (studentID, goalID) record.
func (s *Synchronizer) Recompute(ctx context.Context, studentID core.StudentID, goalID core.GoalID) (Progress, error) {
	var flds []core.FieldError
	if studentID == "" {
		flds = append(flds, core.FieldError{Field: "student_id", Error: "this field is required"})
	}
	if goalID == "" {
		flds = append(flds, core.FieldError{Field: "goal_id", Error: "this field is required"})
	}
	if flds != nil {
		return Progress{}, core.NewValidationError(nil, flds...)
	}

	exists, err := s.goals.GoalExists(ctx, studentID, goalID)
	if err != nil {
		return Progress{}, errors.Wrap(err, "checking goal")
	}
	if !exists {
		return Progress{}, core.NewNotFoundError("goal", string(goalID))
	}

	total, completed, err := s.tasks.CountTasksByGoal(ctx, goalID)
	if err != nil {
		return Progress{}, errors.Wrap(err, "counting tasks")
	}

	p, err := s.repo.UpsertProgress(ctx, Progress{
		StudentID:  studentID,
		GoalID:     goalID,
		Percentage: Percentage(completed, total),
		Total:      total,
		Completed:  completed,
		UpdatedAt:  s.now().UTC(),
	})
	if err != nil {
		return Progress{}, errors.Wrap(err, "upserting progress")
	}
	return p, nil
}

// Sync runs Recompute on behalf of a mutation that already succeeded.
// Any failure is returned as a *core.SyncError so callers can keep the mutated record.
// A goal that no longer exists has no progress to refresh and is skipped.
func (s *Synchronizer) Sync(ctx context.Context, studentID core.StudentID, goalID core.GoalID) error {
	if _, err := s.Recompute(ctx, studentID, goalID); err != nil {
		if core.IsNotFound(err) {
			return nil
		}
		syncFailures.Add(1)
		return &core.SyncError{StudentID: studentID, GoalID: goalID, Err: err}
	}
	return nil
}

// Get returns the stored record, or a zero record when the goal was never synchronized.
func (s *Synchronizer) Get(ctx context.Context, studentID core.StudentID, goalID core.GoalID) (Progress, error) {
	p, err := s.repo.GetProgress(ctx, studentID, goalID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Progress{StudentID: studentID, GoalID: goalID}, nil
		}
		return Progress{}, errors.Wrap(err, "getting progress")
	}
	return p, nil
}

func (s *Synchronizer) QueryByStudent(ctx context.Context, studentID core.StudentID) ([]Progress, error) {
	return s.repo.QueryProgress(ctx, studentID)
}

// RecomputeStudent recomputes every goal of the student.
func (s *Synchronizer) RecomputeStudent(ctx context.Context, studentID core.StudentID) ([]Progress, error) {
	ids, err := s.goals.QueryGoalIDs(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying goals")
	}
	res := make([]Progress, 0, len(ids))
	for _, id := range ids {
		p, err := s.Recompute(ctx, studentID, id)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}
