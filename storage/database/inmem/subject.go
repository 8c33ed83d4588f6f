package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/subject"
)

type SubjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*SubjectRepository)(nil)

func NewSubjectRepository(db *DB) *SubjectRepository {
	return &SubjectRepository{db: db.subject}
}

func (repo *SubjectRepository) CreateSubject(_ context.Context, sub subject.Subject, _ ...core.DBExecutor) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if sub.ID == "" {
		sub.ID = core.SubjectID(core.NewID())
	}
	stored := sub
	repo.db.table[sub.ID] = &stored
	return sub, nil
}

func (repo *SubjectRepository) QuerySubjects(_ context.Context, studentID core.StudentID, filter subject.QueryFilter, _ ...core.DBExecutor) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]subject.Subject, 0)
	for _, sub := range repo.db.table {
		if sub.StudentID != studentID || (filter.Day != "" && sub.Day != filter.Day) {
			continue
		}
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].CreatedAt.Before(subjects[j].CreatedAt) })
	return subjects, nil
}

func (repo *SubjectRepository) GetSubjectsByIDs(_ context.Context, studentID core.StudentID, ids []core.SubjectID, _ ...core.DBExecutor) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]subject.Subject, 0, len(ids))
	for _, id := range ids {
		if sub, ok := repo.db.table[id]; ok && sub.StudentID == studentID {
			subjects = append(subjects, *sub)
		}
	}
	return subjects, nil
}

func (repo *SubjectRepository) GetSubject(_ context.Context, studentID core.StudentID, id core.SubjectID, _ ...core.DBExecutor) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok && sub.StudentID == studentID {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *SubjectRepository) UpdateSubject(_ context.Context, sub subject.Subject, _ ...core.DBExecutor) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[sub.ID]
	if !ok || orig.StudentID != sub.StudentID {
		return subject.Subject{}, subject.ErrNotFound
	}
	sub.CreatedAt = orig.CreatedAt
	stored := sub
	repo.db.table[sub.ID] = &stored
	return sub, nil
}

func (repo *SubjectRepository) DeleteSubject(_ context.Context, studentID core.StudentID, id core.SubjectID, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if sub, ok := repo.db.table[id]; ok && sub.StudentID == studentID {
		delete(repo.db.table, id)
	}
	return nil
}
