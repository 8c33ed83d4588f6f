package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/student"
)

const studentColumns = "id, name, email, password_hash, profile, metrics, created_at, updated_at"

type studentRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Profile      string    `db:"profile"`
	Metrics      string    `db:"metrics"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type StudentRepository struct {
	baseRepository
}

var _ student.Repository = (*StudentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *StudentRepository {
	return &StudentRepository{baseRepository{exec: exec}}
}

func (repo StudentRepository) boil(st student.Student) (studentRow, error) {
	profile, err := marshalJSON(st.Profile)
	if err != nil {
		return studentRow{}, err
	}
	metrics, err := marshalJSON(st.Metrics)
	if err != nil {
		return studentRow{}, err
	}
	return studentRow{
		ID:           string(st.ID),
		Name:         st.Name,
		Email:        st.Email,
		PasswordHash: string(st.PasswordHash),
		Profile:      profile,
		Metrics:      metrics,
		CreatedAt:    st.CreatedAt.UTC(),
		UpdatedAt:    st.UpdatedAt.UTC(),
	}, nil
}

func (repo StudentRepository) unboil(row studentRow) (student.Student, error) {
	st := student.Student{
		ID:           core.StudentID(row.ID),
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: []byte(row.PasswordHash),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if err := unmarshalJSON(row.Profile, &st.Profile); err != nil {
		return student.Student{}, err
	}
	if err := unmarshalJSON(row.Metrics, &st.Metrics); err != nil {
		return student.Student{}, err
	}
	return st, nil
}

func (repo StudentRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded core.StudentID, exec ...core.DBExecutor) error {
	var count int
	err := repo.get(ctx, exec, &count, "SELECT COUNT(*) FROM students WHERE email = ? AND id <> ?", email, string(excluded))
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return student.ErrEmailExists
	}
	return nil
}

func (repo StudentRepository) CreateStudent(ctx context.Context, st student.Student, exec ...core.DBExecutor) (student.Student, error) {
	if st.ID == "" {
		st.ID = core.StudentID(core.NewID())
	}
	row, err := repo.boil(st)
	if err != nil {
		return student.Student{}, err
	}
	_, err = repo.execute(ctx, exec,
		"INSERT INTO students ("+studentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		row.ID, row.Name, row.Email, row.PasswordHash, row.Profile, row.Metrics, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return repo.unboil(row)
}

func (repo StudentRepository) QueryStudents(ctx context.Context, exec ...core.DBExecutor) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.selectRows(ctx, exec, &rows, "SELECT "+studentColumns+" FROM students"+byCreation); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		st, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, nil
}

func (repo StudentRepository) GetStudent(ctx context.Context, filter student.GetFilter, exec ...core.DBExecutor) (student.Student, error) {
	var (
		row   studentRow
		query = "SELECT " + studentColumns + " FROM students WHERE "
		arg   string
	)
	switch {
	case filter.ID != "":
		query, arg = query+"id = ?", string(filter.ID)
	case filter.Email != "":
		query, arg = query+"email = ?", filter.Email
	default:
		return student.Student{}, student.ErrNotFound
	}

	if err := repo.get(ctx, exec, &row, query, arg); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "selecting student")
	}
	return repo.unboil(row)
}

func (repo StudentRepository) UpdateStudent(ctx context.Context, st student.Student, exec ...core.DBExecutor) (student.Student, error) {
	row, err := repo.boil(st)
	if err != nil {
		return student.Student{}, err
	}
	res, err := repo.execute(ctx, exec,
		"UPDATE students SET name = ?, email = ?, password_hash = ?, profile = ?, metrics = ?, updated_at = ? WHERE id = ?",
		row.Name, row.Email, row.PasswordHash, row.Profile, row.Metrics, row.UpdatedAt, row.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, student.GetFilter{ID: st.ID}, exec...)
}

func (repo StudentRepository) DeleteStudent(ctx context.Context, id core.StudentID, exec ...core.DBExecutor) error {
	_, err := repo.execute(ctx, exec, "DELETE FROM students WHERE id = ?", string(id))
	return errors.Wrap(err, "deleting student")
}
