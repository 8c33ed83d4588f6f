package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/actionplan"
	"github.com/trezcool/studytrack/core/task"
)

type ActionPlanRepository struct {
	db *actionPlanTable
}

var (
	_ actionplan.Repository = (*ActionPlanRepository)(nil)
	_ task.StepMirror       = (*ActionPlanRepository)(nil)
)

func NewActionPlanRepository(db *DB) *ActionPlanRepository {
	return &ActionPlanRepository{db: db.actionPlan}
}

// copyPlan detaches the steps from the caller's slice; services edit them in place.
func copyPlan(p actionplan.ActionPlan) actionplan.ActionPlan {
	steps := make([]actionplan.Step, len(p.Steps))
	for i, s := range p.Steps {
		if s.TaskID != nil {
			id := *s.TaskID
			s.TaskID = &id
		}
		steps[i] = s
	}
	p.Steps = steps
	return p
}

func (repo *ActionPlanRepository) CreateActionPlan(_ context.Context, p actionplan.ActionPlan, _ ...core.DBExecutor) (actionplan.ActionPlan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if p.ID == "" {
		p.ID = core.ActionPlanID(core.NewID())
	}
	stored := copyPlan(p)
	repo.db.table[p.ID] = &stored
	return copyPlan(stored), nil
}

func (repo *ActionPlanRepository) QueryActionPlans(_ context.Context, studentID core.StudentID, filter actionplan.QueryFilter, _ ...core.DBExecutor) ([]actionplan.ActionPlan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	plans := make([]actionplan.ActionPlan, 0)
	for _, p := range repo.db.table {
		if p.StudentID != studentID || (filter.GoalID != "" && p.GoalID != filter.GoalID) {
			continue
		}
		plans = append(plans, copyPlan(*p))
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].CreatedAt.Before(plans[j].CreatedAt) })
	return plans, nil
}

func (repo *ActionPlanRepository) GetActionPlan(_ context.Context, studentID core.StudentID, id core.ActionPlanID, _ ...core.DBExecutor) (actionplan.ActionPlan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok && p.StudentID == studentID {
		return copyPlan(*p), nil
	}
	return actionplan.ActionPlan{}, actionplan.ErrNotFound
}

func (repo *ActionPlanRepository) UpdateActionPlan(_ context.Context, p actionplan.ActionPlan, _ ...core.DBExecutor) (actionplan.ActionPlan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[p.ID]
	if !ok || orig.StudentID != p.StudentID {
		return actionplan.ActionPlan{}, actionplan.ErrNotFound
	}
	p.CreatedAt = orig.CreatedAt
	stored := copyPlan(p)
	repo.db.table[p.ID] = &stored
	return copyPlan(stored), nil
}

func (repo *ActionPlanRepository) DeleteActionPlan(_ context.Context, studentID core.StudentID, id core.ActionPlanID, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if p, ok := repo.db.table[id]; ok && p.StudentID == studentID {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *ActionPlanRepository) SetStepDone(_ context.Context, planID core.ActionPlanID, stepIndex int, isDone bool, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	p, ok := repo.db.table[planID]
	if !ok || stepIndex < 0 || stepIndex >= len(p.Steps) {
		return actionplan.ErrNotFound
	}
	p.Steps[stepIndex].IsDone = isDone
	return nil
}
