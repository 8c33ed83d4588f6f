package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/timetable"
)

const timetableColumns = "id, student_id, day, subject_ids, created_at, updated_at"

type timetableRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	Day        string    `db:"day"`
	SubjectIDs string    `db:"subject_ids"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type TimetableRepository struct {
	baseRepository
}

var _ timetable.Repository = (*TimetableRepository)(nil)

func NewTimetableRepository(exec core.DBExecutor) *TimetableRepository {
	return &TimetableRepository{baseRepository{exec: exec}}
}

func (repo TimetableRepository) boil(tt timetable.Timetable) (timetableRow, error) {
	ids := tt.SubjectIDs
	if ids == nil {
		ids = []core.SubjectID{}
	}
	data, err := marshalJSON(ids)
	if err != nil {
		return timetableRow{}, err
	}
	return timetableRow{
		ID:         string(tt.ID),
		StudentID:  string(tt.StudentID),
		Day:        tt.Day,
		SubjectIDs: data,
		CreatedAt:  tt.CreatedAt.UTC(),
		UpdatedAt:  tt.UpdatedAt.UTC(),
	}, nil
}

func (repo TimetableRepository) unboil(row timetableRow) (timetable.Timetable, error) {
	tt := timetable.Timetable{
		ID:         core.TimetableID(row.ID),
		StudentID:  core.StudentID(row.StudentID),
		Day:        row.Day,
		SubjectIDs: []core.SubjectID{},
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
	if err := unmarshalJSON(row.SubjectIDs, &tt.SubjectIDs); err != nil {
		return timetable.Timetable{}, err
	}
	return tt, nil
}

func (repo TimetableRepository) CreateTimetable(ctx context.Context, tt timetable.Timetable, exec ...core.DBExecutor) (timetable.Timetable, error) {
	if tt.ID == "" {
		tt.ID = core.TimetableID(core.NewID())
	}
	row, err := repo.boil(tt)
	if err != nil {
		return timetable.Timetable{}, err
	}
	_, err = repo.execute(ctx, exec,
		"INSERT INTO timetables ("+timetableColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		row.ID, row.StudentID, row.Day, row.SubjectIDs, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return timetable.Timetable{}, timetable.ErrDayExists
		}
		return timetable.Timetable{}, errors.Wrap(err, "inserting timetable")
	}
	return repo.unboil(row)
}

func (repo TimetableRepository) unboilSlice(rows []timetableRow) ([]timetable.Timetable, error) {
	tts := make([]timetable.Timetable, 0, len(rows))
	for _, row := range rows {
		tt, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		tts = append(tts, tt)
	}
	return tts, nil
}

func (repo TimetableRepository) QueryTimetables(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) ([]timetable.Timetable, error) {
	var rows []timetableRow
	err := repo.selectRows(ctx, exec, &rows, "SELECT "+timetableColumns+" FROM timetables WHERE student_id = ?"+byCreation, string(studentID))
	if err != nil {
		return nil, errors.Wrap(err, "selecting timetables")
	}
	return repo.unboilSlice(rows)
}

func (repo TimetableRepository) GetTimetable(ctx context.Context, studentID core.StudentID, id core.TimetableID, exec ...core.DBExecutor) (timetable.Timetable, error) {
	var row timetableRow
	err := repo.get(ctx, exec, &row, "SELECT "+timetableColumns+" FROM timetables WHERE id = ? AND student_id = ?", string(id), string(studentID))
	if err != nil {
		return timetable.Timetable{}, trapNoRowsErr(err, timetable.ErrNotFound, "selecting timetable")
	}
	return repo.unboil(row)
}

func (repo TimetableRepository) GetTimetableByDay(ctx context.Context, studentID core.StudentID, day string, exec ...core.DBExecutor) (timetable.Timetable, error) {
	var row timetableRow
	err := repo.get(ctx, exec, &row, "SELECT "+timetableColumns+" FROM timetables WHERE student_id = ? AND day = ?", string(studentID), day)
	if err != nil {
		return timetable.Timetable{}, trapNoRowsErr(err, timetable.ErrNotFound, "selecting timetable")
	}
	return repo.unboil(row)
}

// UpdateTimetable replaces the subjects; the day of a timetable never changes.
func (repo TimetableRepository) UpdateTimetable(ctx context.Context, tt timetable.Timetable, exec ...core.DBExecutor) (timetable.Timetable, error) {
	row, err := repo.boil(tt)
	if err != nil {
		return timetable.Timetable{}, err
	}
	res, err := repo.execute(ctx, exec,
		"UPDATE timetables SET subject_ids = ?, updated_at = ? WHERE id = ? AND student_id = ?",
		row.SubjectIDs, row.UpdatedAt, row.ID, row.StudentID)
	if err != nil {
		return timetable.Timetable{}, errors.Wrap(err, "updating timetable")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return timetable.Timetable{}, timetable.ErrNotFound
	}
	return repo.GetTimetable(ctx, tt.StudentID, tt.ID, exec...)
}

func (repo TimetableRepository) DeleteTimetable(ctx context.Context, studentID core.StudentID, id core.TimetableID, exec ...core.DBExecutor) error {
	_, err := repo.execute(ctx, exec, "DELETE FROM timetables WHERE id = ? AND student_id = ?", string(id), string(studentID))
	return errors.Wrap(err, "deleting timetable")
}
