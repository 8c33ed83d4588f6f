package task

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/progress"
)

var ErrNotFound = core.NewNotFoundError("task", "")

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
		// CreateTaskIfAbsent inserts t unless a task already holds one of its generation keys:
		// (action_plan_id, step_index) or (student_id, subject_id, study_date).
		// It returns the stored task and whether it was created by this call.
		CreateTaskIfAbsent(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, bool, error)
		QueryTasks(ctx context.Context, studentID core.StudentID, filter QueryFilter, exec ...core.DBExecutor) ([]Task, error)
		GetTask(ctx context.Context, studentID core.StudentID, id core.TaskID, exec ...core.DBExecutor) (Task, error)
		UpdateTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
		DeleteTask(ctx context.Context, studentID core.StudentID, id core.TaskID, exec ...core.DBExecutor) error
		DeleteTasksByActionPlan(ctx context.Context, planID core.ActionPlanID, exec ...core.DBExecutor) (int, error)
		CountTasksByGoal(ctx context.Context, goalID core.GoalID, exec ...core.DBExecutor) (total, completed int, err error)
		CountTasksByStudent(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) (total, completed int, err error)
	}

	// StepMirror keeps the step a task was generated for in line with the task.
	StepMirror interface {
		SetStepDone(ctx context.Context, planID core.ActionPlanID, stepIndex int, isDone bool, exec ...core.DBExecutor) error
	}

	Service struct {
		tx    core.Transactor
		repo  Repository
		goals progress.GoalLookup
		steps StepMirror
		sync  *progress.Synchronizer
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	goals progress.GoalLookup,
	steps StepMirror,
	sync *progress.Synchronizer,
) *Service {
	return &Service{tx: tx, repo: repo, goals: goals, steps: steps, sync: sync}
}

func (svc *Service) checkGoal(ctx context.Context, studentID core.StudentID, goalID string) error {
	exists, err := svc.goals.GoalExists(ctx, studentID, core.GoalID(goalID))
	if err != nil {
		return errors.Wrap(err, "checking goal")
	}
	if !exists {
		return core.NewValidationError(nil, core.FieldError{Field: "goal_id", Error: "goal not found"})
	}
	return nil
}

// Create stores the task, then refreshes the progress of its goal.
// A *core.SyncError is returned along with the created task when only the refresh failed.
func (svc *Service) Create(ctx context.Context, studentID core.StudentID, nt NewTask) (Task, error) {
	if nt.GoalID != "" {
		if err := svc.checkGoal(ctx, studentID, nt.GoalID); err != nil {
			return Task{}, err
		}
	}

	now := time.Now().UTC()
	t := Task{
		ID:          core.TaskID(core.NewID()),
		StudentID:   studentID,
		Title:       nt.Title,
		DueDate:     nt.DueDate,
		IsCompleted: nt.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if nt.GoalID != "" {
		goalID := core.GoalID(nt.GoalID)
		t.GoalID = &goalID
	}
	if nt.SubjectID != "" {
		subjectID := core.SubjectID(nt.SubjectID)
		t.SubjectID = &subjectID
	}

	t, err := svc.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, errors.Wrap(err, "creating task")
	}
	if t.GoalID != nil {
		return t, svc.sync.Sync(ctx, studentID, *t.GoalID)
	}
	return t, nil
}

func (svc *Service) Query(ctx context.Context, studentID core.StudentID, filter QueryFilter) ([]Task, error) {
	return svc.repo.QueryTasks(ctx, studentID, filter)
}

func (svc *Service) Get(ctx context.Context, studentID core.StudentID, id core.TaskID) (Task, error) {
	return svc.repo.GetTask(ctx, studentID, id)
}

// Update applies the changes, mirrors the completion onto the generating step if any,
// then refreshes the progress of the resulting goal and of the previous one if it moved.
func (svc *Service) Update(ctx context.Context, t Task, ut UpdateTask) (Task, error) {
	prevGoal := t.Goal()

	if ut.GoalID != nil {
		if *ut.GoalID == "" {
			t.GoalID = nil
		} else {
			if err := svc.checkGoal(ctx, t.StudentID, *ut.GoalID); err != nil {
				return Task{}, err
			}
			goalID := core.GoalID(*ut.GoalID)
			t.GoalID = &goalID
		}
	}
	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.DueDate != "" {
		t.DueDate = ut.DueDate
	}
	if ut.IsCompleted != nil {
		t.IsCompleted = *ut.IsCompleted
	}
	t.UpdatedAt = time.Now().UTC()

	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if t, err = svc.repo.UpdateTask(ctx, t, exec); err != nil {
			return errors.Wrap(err, "updating task")
		}
		if t.FromStep() {
			if err = svc.steps.SetStepDone(ctx, *t.ActionPlanID, *t.StepIndex, t.IsCompleted, exec); err != nil && !core.IsNotFound(err) {
				return errors.Wrap(err, "mirroring step")
			}
		}
		return nil
	})
	if err != nil {
		return Task{}, err
	}

	var syncErr error
	if goalID := t.Goal(); goalID != "" {
		syncErr = svc.sync.Sync(ctx, t.StudentID, goalID)
	}
	if prevGoal != "" && prevGoal != t.Goal() {
		if err := svc.sync.Sync(ctx, t.StudentID, prevGoal); err != nil && syncErr == nil {
			syncErr = err
		}
	}
	return t, syncErr
}

// Delete removes the task and refreshes the progress of its goal.
func (svc *Service) Delete(ctx context.Context, t Task) error {
	if err := svc.repo.DeleteTask(ctx, t.StudentID, t.ID); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if goalID := t.Goal(); goalID != "" {
		return svc.sync.Sync(ctx, t.StudentID, goalID)
	}
	return nil
}
