package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
)

type GoalRepository struct {
	db *goalTable
}

var (
	_ goal.Repository     = (*GoalRepository)(nil)
	_ progress.GoalLookup = (*GoalRepository)(nil)
)

func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db.goal}
}

func (repo *GoalRepository) query(studentID core.StudentID, filter goal.QueryFilter) []goal.Goal {
	goals := make([]goal.Goal, 0)
	for _, g := range repo.db.table {
		if g.StudentID != studentID || (filter.Type != "" && g.Type != filter.Type) {
			continue
		}
		goals = append(goals, *g)
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].CreatedAt.Before(goals[j].CreatedAt) })
	return goals
}

func (repo *GoalRepository) CreateGoal(_ context.Context, g goal.Goal, _ ...core.DBExecutor) (goal.Goal, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if g.ID == "" {
		g.ID = core.GoalID(core.NewID())
	}
	stored := g
	repo.db.table[g.ID] = &stored
	return g, nil
}

func (repo *GoalRepository) QueryGoals(_ context.Context, studentID core.StudentID, filter goal.QueryFilter, _ ...core.DBExecutor) ([]goal.Goal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(studentID, filter), nil
}

func (repo *GoalRepository) GetGoal(_ context.Context, studentID core.StudentID, id core.GoalID, _ ...core.DBExecutor) (goal.Goal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.table[id]; ok && g.StudentID == studentID {
		return *g, nil
	}
	return goal.Goal{}, goal.ErrNotFound
}

func (repo *GoalRepository) UpdateGoal(_ context.Context, g goal.Goal, _ ...core.DBExecutor) (goal.Goal, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[g.ID]
	if !ok || orig.StudentID != g.StudentID {
		return goal.Goal{}, goal.ErrNotFound
	}
	g.CreatedAt = orig.CreatedAt
	stored := g
	repo.db.table[g.ID] = &stored
	return g, nil
}

func (repo *GoalRepository) DeleteGoal(_ context.Context, studentID core.StudentID, id core.GoalID, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if g, ok := repo.db.table[id]; ok && g.StudentID == studentID {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *GoalRepository) GoalExists(_ context.Context, studentID core.StudentID, id core.GoalID, _ ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	g, ok := repo.db.table[id]
	return ok && g.StudentID == studentID, nil
}

func (repo *GoalRepository) QueryGoalIDs(_ context.Context, studentID core.StudentID, _ ...core.DBExecutor) ([]core.GoalID, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	goals := repo.query(studentID, goal.QueryFilter{})
	ids := make([]core.GoalID, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}
	return ids, nil
}
