package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/task"
)

type TaskRepository struct {
	db *taskTable
}

var (
	_ task.Repository      = (*TaskRepository)(nil)
	_ progress.TaskCounter = (*TaskRepository)(nil)
)

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db.task}
}

func copyTask(t task.Task) task.Task {
	if t.GoalID != nil {
		id := *t.GoalID
		t.GoalID = &id
	}
	if t.ActionPlanID != nil {
		id := *t.ActionPlanID
		t.ActionPlanID = &id
	}
	if t.StepIndex != nil {
		idx := *t.StepIndex
		t.StepIndex = &idx
	}
	if t.SubjectID != nil {
		id := *t.SubjectID
		t.SubjectID = &id
	}
	return t
}

// sameKey reports whether a and b share one of the generation keys.
func sameKey(a, b *task.Task) bool {
	if a.FromStep() && b.FromStep() && *a.ActionPlanID == *b.ActionPlanID && *a.StepIndex == *b.StepIndex {
		return true
	}
	return a.SubjectID != nil && b.SubjectID != nil && a.StudyDate != "" &&
		a.StudentID == b.StudentID && *a.SubjectID == *b.SubjectID && a.StudyDate == b.StudyDate
}

func (repo *TaskRepository) conflicting(t *task.Task) *task.Task {
	for _, stored := range repo.db.table {
		if stored.ID != t.ID && sameKey(stored, t) {
			return stored
		}
	}
	return nil
}

func (repo *TaskRepository) CreateTask(_ context.Context, t task.Task, _ ...core.DBExecutor) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if t.ID == "" {
		t.ID = core.TaskID(core.NewID())
	}
	if repo.conflicting(&t) != nil {
		return task.Task{}, core.NewConflictError("task", "a task already exists for this key")
	}
	stored := copyTask(t)
	repo.db.table[t.ID] = &stored
	return copyTask(stored), nil
}

func (repo *TaskRepository) CreateTaskIfAbsent(_ context.Context, t task.Task, _ ...core.DBExecutor) (task.Task, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if t.ID == "" {
		t.ID = core.TaskID(core.NewID())
	}
	if existing := repo.conflicting(&t); existing != nil {
		return copyTask(*existing), false, nil
	}
	stored := copyTask(t)
	repo.db.table[t.ID] = &stored
	return copyTask(stored), true, nil
}

func (repo *TaskRepository) QueryTasks(_ context.Context, studentID core.StudentID, filter task.QueryFilter, _ ...core.DBExecutor) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.db.table {
		if t.StudentID == studentID && filter.Match(*t) {
			tasks = append(tasks, copyTask(*t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) && tasks[i].StepIndex != nil && tasks[j].StepIndex != nil {
			return *tasks[i].StepIndex < *tasks[j].StepIndex
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (repo *TaskRepository) GetTask(_ context.Context, studentID core.StudentID, id core.TaskID, _ ...core.DBExecutor) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok && t.StudentID == studentID {
		return copyTask(*t), nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *TaskRepository) UpdateTask(_ context.Context, t task.Task, _ ...core.DBExecutor) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok || orig.StudentID != t.StudentID {
		return task.Task{}, task.ErrNotFound
	}
	t.CreatedAt = orig.CreatedAt
	stored := copyTask(t)
	repo.db.table[t.ID] = &stored
	return copyTask(stored), nil
}

func (repo *TaskRepository) DeleteTask(_ context.Context, studentID core.StudentID, id core.TaskID, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if t, ok := repo.db.table[id]; ok && t.StudentID == studentID {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *TaskRepository) DeleteTasksByActionPlan(_ context.Context, planID core.ActionPlanID, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	deleted := 0
	for id, t := range repo.db.table {
		if t.ActionPlanID != nil && *t.ActionPlanID == planID {
			delete(repo.db.table, id)
			deleted++
		}
	}
	return deleted, nil
}

func (repo *TaskRepository) CountTasksByGoal(_ context.Context, goalID core.GoalID, _ ...core.DBExecutor) (total, completed int, err error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.table {
		if t.Goal() == goalID {
			total++
			if t.IsCompleted {
				completed++
			}
		}
	}
	return total, completed, nil
}

func (repo *TaskRepository) CountTasksByStudent(_ context.Context, studentID core.StudentID, _ ...core.DBExecutor) (total, completed int, err error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.table {
		if t.StudentID == studentID {
			total++
			if t.IsCompleted {
				completed++
			}
		}
	}
	return total, completed, nil
}
