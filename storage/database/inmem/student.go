package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/student"
)

type StudentRepository struct {
	db *studentTable
}

var _ student.Repository = (*StudentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db.student}
}

func copyStudent(st student.Student) student.Student {
	st.PasswordHash = append([]byte(nil), st.PasswordHash...)
	st.Profile.TechnicalSkills = append([]string(nil), st.Profile.TechnicalSkills...)
	st.Profile.SoftSkills = append([]string(nil), st.Profile.SoftSkills...)
	return st
}

func (repo *StudentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		students = append(students, copyStudent(*st))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	return students
}

func (repo *StudentRepository) CheckEmailUniqueness(_ context.Context, email string, excluded core.StudentID, _ ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.db.table {
		if st.Email == email && st.ID != excluded {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *StudentRepository) CreateStudent(_ context.Context, st student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.table {
		if s.Email == st.Email {
			return student.Student{}, student.ErrEmailExists
		}
	}
	if st.ID == "" {
		st.ID = core.StudentID(core.NewID())
	}
	stored := copyStudent(st)
	repo.db.table[st.ID] = &stored
	return copyStudent(stored), nil
}

func (repo *StudentRepository) QueryStudents(_ context.Context, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *StudentRepository) GetStudent(_ context.Context, filter student.GetFilter, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if st, ok := repo.db.table[filter.ID]; ok {
			return copyStudent(*st), nil
		}
		return student.Student{}, student.ErrNotFound
	}
	if filter.Email != "" {
		for _, st := range repo.db.table {
			if st.Email == filter.Email {
				return copyStudent(*st), nil
			}
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *StudentRepository) UpdateStudent(_ context.Context, st student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	for _, s := range repo.db.table {
		if s.Email == st.Email && s.ID != st.ID {
			return student.Student{}, student.ErrEmailExists
		}
	}
	st.CreatedAt = orig.CreatedAt
	stored := copyStudent(st)
	repo.db.table[st.ID] = &stored
	return copyStudent(stored), nil
}

func (repo *StudentRepository) DeleteStudent(_ context.Context, id core.StudentID, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
