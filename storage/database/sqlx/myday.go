package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/myday"
)

const myDayColumns = "id, student_id, date, categories, total_hours, productivity_score, mood, created_at, updated_at"

type myDayRow struct {
	ID                string    `db:"id"`
	StudentID         string    `db:"student_id"`
	Date              string    `db:"date"`
	Categories        string    `db:"categories"`
	TotalHours        float64   `db:"total_hours"`
	ProductivityScore int       `db:"productivity_score"`
	Mood              string    `db:"mood"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type MyDayRepository struct {
	baseRepository
}

var _ myday.Repository = (*MyDayRepository)(nil)

func NewMyDayRepository(exec core.DBExecutor) *MyDayRepository {
	return &MyDayRepository{baseRepository{exec: exec}}
}

func (repo MyDayRepository) unboil(row myDayRow) (myday.MyDay, error) {
	d := myday.MyDay{
		ID:                core.MyDayID(row.ID),
		StudentID:         core.StudentID(row.StudentID),
		Date:              row.Date,
		Categories:        []myday.Category{},
		TotalHours:        row.TotalHours,
		ProductivityScore: row.ProductivityScore,
		Mood:              row.Mood,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
	if err := unmarshalJSON(row.Categories, &d.Categories); err != nil {
		return myday.MyDay{}, err
	}
	return d, nil
}

// UpsertMyDay keeps the ID and creation time of a replaced record.
func (repo MyDayRepository) UpsertMyDay(ctx context.Context, d myday.MyDay, exec ...core.DBExecutor) (myday.MyDay, error) {
	if d.ID == "" {
		d.ID = core.MyDayID(core.NewID())
	}
	categories := d.Categories
	if categories == nil {
		categories = []myday.Category{}
	}
	data, err := marshalJSON(categories)
	if err != nil {
		return myday.MyDay{}, err
	}

	_, err = repo.execute(ctx, exec,
		"INSERT INTO mydays ("+myDayColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT (student_id, date) DO UPDATE SET "+
			"categories = excluded.categories, total_hours = excluded.total_hours, "+
			"productivity_score = excluded.productivity_score, mood = excluded.mood, updated_at = excluded.updated_at",
		string(d.ID), string(d.StudentID), d.Date, data, d.TotalHours, d.ProductivityScore, d.Mood,
		d.CreatedAt.UTC(), d.UpdatedAt.UTC())
	if err != nil {
		return myday.MyDay{}, errors.Wrap(err, "upserting my day")
	}
	return repo.GetMyDay(ctx, d.StudentID, d.Date, exec...)
}

func (repo MyDayRepository) GetMyDay(ctx context.Context, studentID core.StudentID, date string, exec ...core.DBExecutor) (myday.MyDay, error) {
	var row myDayRow
	err := repo.get(ctx, exec, &row, "SELECT "+myDayColumns+" FROM mydays WHERE student_id = ? AND date = ?", string(studentID), date)
	if err != nil {
		return myday.MyDay{}, trapNoRowsErr(err, myday.ErrNotFound, "selecting my day")
	}
	return repo.unboil(row)
}

func (repo MyDayRepository) QueryMyDays(ctx context.Context, studentID core.StudentID, from, to string, exec ...core.DBExecutor) ([]myday.MyDay, error) {
	var rows []myDayRow
	err := repo.selectRows(ctx, exec, &rows,
		"SELECT "+myDayColumns+" FROM mydays WHERE student_id = ? AND date >= ? AND date <= ?"+
			orderBy(core.DBOrdering{Field: "date", Ascending: true}),
		string(studentID), from, to)
	if err != nil {
		return nil, errors.Wrap(err, "selecting my days")
	}
	days := make([]myday.MyDay, 0, len(rows))
	for _, row := range rows {
		d, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}
