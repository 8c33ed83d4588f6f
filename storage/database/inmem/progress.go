package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/progress"
)

type ProgressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*ProgressRepository)(nil)

func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db.progress}
}

func (repo *ProgressRepository) UpsertProgress(_ context.Context, p progress.Progress, _ ...core.DBExecutor) (progress.Progress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := p
	repo.db.table[progressKey{studentID: p.StudentID, goalID: p.GoalID}] = &stored
	return p, nil
}

func (repo *ProgressRepository) GetProgress(_ context.Context, studentID core.StudentID, goalID core.GoalID, _ ...core.DBExecutor) (progress.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[progressKey{studentID: studentID, goalID: goalID}]; ok {
		return *p, nil
	}
	return progress.Progress{}, progress.ErrNotFound
}

func (repo *ProgressRepository) QueryProgress(_ context.Context, studentID core.StudentID, _ ...core.DBExecutor) ([]progress.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]progress.Progress, 0)
	for key, p := range repo.db.table {
		if key.studentID == studentID {
			records = append(records, *p)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].GoalID < records[j].GoalID })
	return records, nil
}

func (repo *ProgressRepository) DeleteProgress(_ context.Context, studentID core.StudentID, goalID core.GoalID, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, progressKey{studentID: studentID, goalID: goalID})
	return nil
}
