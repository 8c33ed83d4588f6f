// Package actionplan expands action plans into one task per step and keeps
// step completion mirrored onto the generated tasks.
package actionplan

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/task"
)

var ErrNotFound = core.NewNotFoundError("action plan", "")

type (
	Repository interface {
		CreateActionPlan(ctx context.Context, p ActionPlan, exec ...core.DBExecutor) (ActionPlan, error)
		QueryActionPlans(ctx context.Context, studentID core.StudentID, filter QueryFilter, exec ...core.DBExecutor) ([]ActionPlan, error)
		GetActionPlan(ctx context.Context, studentID core.StudentID, id core.ActionPlanID, exec ...core.DBExecutor) (ActionPlan, error)
		UpdateActionPlan(ctx context.Context, p ActionPlan, exec ...core.DBExecutor) (ActionPlan, error)
		DeleteActionPlan(ctx context.Context, studentID core.StudentID, id core.ActionPlanID, exec ...core.DBExecutor) error
		// SetStepDone updates one step in place; it implements task.StepMirror.
		SetStepDone(ctx context.Context, planID core.ActionPlanID, stepIndex int, isDone bool, exec ...core.DBExecutor) error
	}

	Service struct {
		tx    core.Transactor
		repo  Repository
		tasks task.Repository
		goals progress.GoalLookup
		sync  *progress.Synchronizer
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	tasks task.Repository,
	goals progress.GoalLookup,
	sync *progress.Synchronizer,
) *Service {
	return &Service{tx: tx, repo: repo, tasks: tasks, goals: goals, sync: sync}
}

func (svc *Service) stepTask(p ActionPlan, idx int, now time.Time) task.Task {
	goalID, planID, stepIdx := p.GoalID, p.ID, idx
	return task.Task{
		ID:           core.TaskID(core.NewID()),
		StudentID:    p.StudentID,
		GoalID:       &goalID,
		ActionPlanID: &planID,
		StepIndex:    &stepIdx,
		Title:        p.Steps[idx].Title,
		IsCompleted:  p.Steps[idx].IsDone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// linkStepTask creates the task of step idx, unless one exists for (plan, idx), and links it.
func (svc *Service) linkStepTask(ctx context.Context, p *ActionPlan, idx int, now time.Time, exec core.DBExecutor) error {
	t, _, err := svc.tasks.CreateTaskIfAbsent(ctx, svc.stepTask(*p, idx, now), exec)
	if err != nil {
		return errors.Wrapf(err, "creating task for step %d", idx)
	}
	p.Steps[idx].TaskID = &t.ID
	return nil
}

// Create stores the plan and one task per step in a single transaction,
// then refreshes the progress of the goal.
func (svc *Service) Create(ctx context.Context, studentID core.StudentID, np NewActionPlan) (ActionPlan, error) {
	if err := np.check(studentID); err != nil {
		return ActionPlan{}, err
	}
	goalID := core.GoalID(core.CleanString(np.GoalID))
	exists, err := svc.goals.GoalExists(ctx, studentID, goalID)
	if err != nil {
		return ActionPlan{}, errors.Wrap(err, "checking goal")
	}
	if !exists {
		return ActionPlan{}, core.NewNotFoundError("goal", string(goalID))
	}

	now := time.Now().UTC()
	status := np.Status
	if status == "" {
		status = DefaultStatus
	}
	plan := ActionPlan{
		ID:        core.ActionPlanID(core.NewID()),
		StudentID: studentID,
		GoalID:    goalID,
		Title:     np.Title,
		Steps:     make([]Step, 0, len(np.Steps)),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, title := range np.Steps {
		plan.Steps = append(plan.Steps, Step{ID: core.StepID(core.NewID()), Title: core.CleanString(title)})
	}

	err = svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if plan, err = svc.repo.CreateActionPlan(ctx, plan, exec); err != nil {
			return errors.Wrap(err, "creating action plan")
		}
		for i := range plan.Steps {
			if err = svc.linkStepTask(ctx, &plan, i, now, exec); err != nil {
				return err
			}
		}
		if plan, err = svc.repo.UpdateActionPlan(ctx, plan, exec); err != nil {
			return errors.Wrap(err, "linking step tasks")
		}
		return nil
	})
	if err != nil {
		return ActionPlan{}, err
	}
	return plan, svc.sync.Sync(ctx, studentID, goalID)
}

func (svc *Service) Query(ctx context.Context, studentID core.StudentID, filter QueryFilter) ([]ActionPlan, error) {
	return svc.repo.QueryActionPlans(ctx, studentID, filter)
}

func (svc *Service) Get(ctx context.Context, studentID core.StudentID, id core.ActionPlanID) (ActionPlan, error) {
	return svc.repo.GetActionPlan(ctx, studentID, id)
}

// ToggleStep sets the step's done flag and the completion of its task in one transaction,
// then refreshes the progress of the task's goal.
func (svc *Service) ToggleStep(ctx context.Context, p ActionPlan, stepID core.StepID, isDone bool) (ActionPlan, error) {
	idx := p.StepIndex(stepID)
	if idx < 0 {
		return ActionPlan{}, core.NewNotFoundError("step", string(stepID))
	}

	goalID := p.GoalID
	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		p.Steps[idx].IsDone = isDone
		if taskID := p.Steps[idx].TaskID; taskID != nil {
			t, err := svc.tasks.GetTask(ctx, p.StudentID, *taskID, exec)
			switch {
			case err == nil:
				t.IsCompleted = isDone
				t.UpdatedAt = time.Now().UTC()
				if _, err = svc.tasks.UpdateTask(ctx, t, exec); err != nil {
					return errors.Wrap(err, "updating step task")
				}
				if t.GoalID != nil {
					goalID = *t.GoalID
				}
			case core.IsNotFound(err):
				// the task was deleted on its own; the step keeps its flag
			default:
				return errors.Wrap(err, "getting step task")
			}
		}
		p.UpdatedAt = time.Now().UTC()
		var err error
		if p, err = svc.repo.UpdateActionPlan(ctx, p, exec); err != nil {
			return errors.Wrap(err, "updating action plan")
		}
		return nil
	})
	if err != nil {
		return ActionPlan{}, err
	}
	return p, svc.sync.Sync(ctx, p.StudentID, goalID)
}

// AddStep appends a step and its task.
func (svc *Service) AddStep(ctx context.Context, p ActionPlan, ns NewStep) (ActionPlan, error) {
	if core.CleanString(ns.Title) == "" {
		return ActionPlan{}, core.NewValidationError(nil, core.FieldError{Field: "title", Error: "this field is required"})
	}

	now := time.Now().UTC()
	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		p.Steps = append(p.Steps, Step{ID: core.StepID(core.NewID()), Title: core.CleanString(ns.Title)})
		if err := svc.linkStepTask(ctx, &p, len(p.Steps)-1, now, exec); err != nil {
			return err
		}
		p.UpdatedAt = now
		var err error
		if p, err = svc.repo.UpdateActionPlan(ctx, p, exec); err != nil {
			return errors.Wrap(err, "updating action plan")
		}
		return nil
	})
	if err != nil {
		return ActionPlan{}, err
	}
	return p, svc.sync.Sync(ctx, p.StudentID, p.GoalID)
}

func (svc *Service) Update(ctx context.Context, p ActionPlan, up UpdateActionPlan) (ActionPlan, error) {
	if up.Title != "" {
		p.Title = up.Title
	}
	if up.Status != "" {
		p.Status = up.Status
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateActionPlan(ctx, p)
}

// Delete removes the plan and every task generated from it, then refreshes
// the progress of the plan's goal and of any goal its tasks were moved to.
func (svc *Service) Delete(ctx context.Context, p ActionPlan) error {
	goalIDs := []core.GoalID{p.GoalID}
	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		tasks, err := svc.tasks.QueryTasks(ctx, p.StudentID, task.QueryFilter{ActionPlanID: p.ID}, exec)
		if err != nil {
			return errors.Wrap(err, "querying action plan tasks")
		}
		for _, t := range tasks {
			if id := t.Goal(); id != "" && !containsGoal(goalIDs, id) {
				goalIDs = append(goalIDs, id)
			}
		}

		if _, err = svc.tasks.DeleteTasksByActionPlan(ctx, p.ID, exec); err != nil {
			return errors.Wrap(err, "deleting action plan tasks")
		}
		if err = svc.repo.DeleteActionPlan(ctx, p.StudentID, p.ID, exec); err != nil {
			return errors.Wrap(err, "deleting action plan")
		}
		return nil
	})
	if err != nil {
		return err
	}

	var syncErr error
	for _, id := range goalIDs {
		if err = svc.sync.Sync(ctx, p.StudentID, id); err != nil && syncErr == nil {
			syncErr = err
		}
	}
	return syncErr
}

func containsGoal(ids []core.GoalID, id core.GoalID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
