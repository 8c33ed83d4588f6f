package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/subject"
)

const subjectColumns = "id, student_id, name, semester, day, attendance, exam_date, status, created_at, updated_at"

type subjectRow struct {
	ID         string      `db:"id"`
	StudentID  string      `db:"student_id"`
	Name       string      `db:"name"`
	Semester   null.Int    `db:"semester"`
	Day        null.String `db:"day"`
	Attendance int         `db:"attendance"`
	ExamDate   null.String `db:"exam_date"`
	Status     string      `db:"status"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

type SubjectRepository struct {
	baseRepository
}

var _ subject.Repository = (*SubjectRepository)(nil)

func NewSubjectRepository(exec core.DBExecutor) *SubjectRepository {
	return &SubjectRepository{baseRepository{exec: exec}}
}

func (repo SubjectRepository) boil(sub subject.Subject) subjectRow {
	return subjectRow{
		ID:         string(sub.ID),
		StudentID:  string(sub.StudentID),
		Name:       sub.Name,
		Semester:   null.IntFromPtr(sub.Semester),
		Day:        null.NewString(sub.Day, sub.Day != ""),
		Attendance: sub.Attendance,
		ExamDate:   null.NewString(sub.ExamDate, sub.ExamDate != ""),
		Status:     sub.Status,
		CreatedAt:  sub.CreatedAt.UTC(),
		UpdatedAt:  sub.UpdatedAt.UTC(),
	}
}

func (repo SubjectRepository) unboil(row subjectRow) subject.Subject {
	return subject.Subject{
		ID:         core.SubjectID(row.ID),
		StudentID:  core.StudentID(row.StudentID),
		Name:       row.Name,
		Semester:   row.Semester.Ptr(),
		Day:        row.Day.String,
		Attendance: row.Attendance,
		ExamDate:   row.ExamDate.String,
		Status:     row.Status,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func (repo SubjectRepository) unboilSlice(rows []subjectRow) []subject.Subject {
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, repo.unboil(row))
	}
	return subjects
}

func (repo SubjectRepository) CreateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	if sub.ID == "" {
		sub.ID = core.SubjectID(core.NewID())
	}
	row := repo.boil(sub)
	_, err := repo.execute(ctx, exec,
		"INSERT INTO subjects ("+subjectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		row.ID, row.StudentID, row.Name, row.Semester, row.Day, row.Attendance, row.ExamDate, row.Status, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return repo.unboil(row), nil
}

func (repo SubjectRepository) QuerySubjects(ctx context.Context, studentID core.StudentID, filter subject.QueryFilter, exec ...core.DBExecutor) ([]subject.Subject, error) {
	query := "SELECT " + subjectColumns + " FROM subjects WHERE student_id = ?"
	args := []interface{}{string(studentID)}
	if filter.Day != "" {
		query += " AND day = ?"
		args = append(args, filter.Day)
	}

	var rows []subjectRow
	if err := repo.selectRows(ctx, exec, &rows, query+byCreation, args...); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return repo.unboilSlice(rows), nil
}

func (repo SubjectRepository) GetSubjectsByIDs(ctx context.Context, studentID core.StudentID, ids []core.SubjectID, exec ...core.DBExecutor) ([]subject.Subject, error) {
	if len(ids) == 0 {
		return []subject.Subject{}, nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, string(studentID))
	for _, id := range ids {
		args = append(args, string(id))
	}
	query := "SELECT " + subjectColumns + " FROM subjects WHERE student_id = ? AND id IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"

	var rows []subjectRow
	if err := repo.selectRows(ctx, exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}

	// keep the order of ids
	byID := make(map[core.SubjectID]subject.Subject, len(rows))
	for _, row := range rows {
		byID[core.SubjectID(row.ID)] = repo.unboil(row)
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, id := range ids {
		if sub, ok := byID[id]; ok {
			subjects = append(subjects, sub)
			delete(byID, id)
		}
	}
	return subjects, nil
}

func (repo SubjectRepository) GetSubject(ctx context.Context, studentID core.StudentID, id core.SubjectID, exec ...core.DBExecutor) (subject.Subject, error) {
	var row subjectRow
	err := repo.get(ctx, exec, &row, "SELECT "+subjectColumns+" FROM subjects WHERE id = ? AND student_id = ?", string(id), string(studentID))
	if err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "selecting subject")
	}
	return repo.unboil(row), nil
}

func (repo SubjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	row := repo.boil(sub)
	res, err := repo.execute(ctx, exec,
		"UPDATE subjects SET name = ?, semester = ?, day = ?, attendance = ?, exam_date = ?, status = ?, updated_at = ? WHERE id = ? AND student_id = ?",
		row.Name, row.Semester, row.Day, row.Attendance, row.ExamDate, row.Status, row.UpdatedAt, row.ID, row.StudentID)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	return repo.GetSubject(ctx, sub.StudentID, sub.ID, exec...)
}

func (repo SubjectRepository) DeleteSubject(ctx context.Context, studentID core.StudentID, id core.SubjectID, exec ...core.DBExecutor) error {
	_, err := repo.execute(ctx, exec, "DELETE FROM subjects WHERE id = ? AND student_id = ?", string(id), string(studentID))
	return errors.Wrap(err, "deleting subject")
}
