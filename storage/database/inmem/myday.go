package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/myday"
)

type MyDayRepository struct {
	db *myDayTable
}

var _ myday.Repository = (*MyDayRepository)(nil)

func NewMyDayRepository(db *DB) *MyDayRepository {
	return &MyDayRepository{db: db.myDay}
}

func copyMyDay(d myday.MyDay) myday.MyDay {
	d.Categories = append([]myday.Category{}, d.Categories...)
	return d
}

// UpsertMyDay keeps the ID and creation time of a replaced record.
func (repo *MyDayRepository) UpsertMyDay(_ context.Context, d myday.MyDay, _ ...core.DBExecutor) (myday.MyDay, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := myDayKey{studentID: d.StudentID, date: d.Date}
	if orig, ok := repo.db.table[key]; ok {
		d.ID = orig.ID
		d.CreatedAt = orig.CreatedAt
	} else if d.ID == "" {
		d.ID = core.MyDayID(core.NewID())
	}
	stored := copyMyDay(d)
	repo.db.table[key] = &stored
	return copyMyDay(stored), nil
}

func (repo *MyDayRepository) GetMyDay(_ context.Context, studentID core.StudentID, date string, _ ...core.DBExecutor) (myday.MyDay, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if d, ok := repo.db.table[myDayKey{studentID: studentID, date: date}]; ok {
		return copyMyDay(*d), nil
	}
	return myday.MyDay{}, myday.ErrNotFound
}

func (repo *MyDayRepository) QueryMyDays(_ context.Context, studentID core.StudentID, from, to string, _ ...core.DBExecutor) ([]myday.MyDay, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	days := make([]myday.MyDay, 0)
	for key, d := range repo.db.table {
		// YYYY-MM-DD compares chronologically as a string
		if key.studentID == studentID && key.date >= from && key.date <= to {
			days = append(days, copyMyDay(*d))
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}
