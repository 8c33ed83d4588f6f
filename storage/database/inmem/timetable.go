package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/timetable"
)

type TimetableRepository struct {
	db *timetableTable
}

var _ timetable.Repository = (*TimetableRepository)(nil)

func NewTimetableRepository(db *DB) *TimetableRepository {
	return &TimetableRepository{db: db.timetable}
}

func copyTimetable(tt timetable.Timetable) timetable.Timetable {
	tt.SubjectIDs = append([]core.SubjectID{}, tt.SubjectIDs...)
	return tt
}

func (repo *TimetableRepository) CreateTimetable(_ context.Context, tt timetable.Timetable, _ ...core.DBExecutor) (timetable.Timetable, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, stored := range repo.db.table {
		if stored.StudentID == tt.StudentID && stored.Day == tt.Day {
			return timetable.Timetable{}, timetable.ErrDayExists
		}
	}
	if tt.ID == "" {
		tt.ID = core.TimetableID(core.NewID())
	}
	stored := copyTimetable(tt)
	repo.db.table[tt.ID] = &stored
	return copyTimetable(stored), nil
}

func (repo *TimetableRepository) QueryTimetables(_ context.Context, studentID core.StudentID, _ ...core.DBExecutor) ([]timetable.Timetable, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tts := make([]timetable.Timetable, 0)
	for _, tt := range repo.db.table {
		if tt.StudentID == studentID {
			tts = append(tts, copyTimetable(*tt))
		}
	}
	sort.Slice(tts, func(i, j int) bool { return tts[i].CreatedAt.Before(tts[j].CreatedAt) })
	return tts, nil
}

func (repo *TimetableRepository) GetTimetable(_ context.Context, studentID core.StudentID, id core.TimetableID, _ ...core.DBExecutor) (timetable.Timetable, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tt, ok := repo.db.table[id]; ok && tt.StudentID == studentID {
		return copyTimetable(*tt), nil
	}
	return timetable.Timetable{}, timetable.ErrNotFound
}

func (repo *TimetableRepository) GetTimetableByDay(_ context.Context, studentID core.StudentID, day string, _ ...core.DBExecutor) (timetable.Timetable, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, tt := range repo.db.table {
		if tt.StudentID == studentID && tt.Day == day {
			return copyTimetable(*tt), nil
		}
	}
	return timetable.Timetable{}, timetable.ErrNotFound
}

func (repo *TimetableRepository) UpdateTimetable(_ context.Context, tt timetable.Timetable, _ ...core.DBExecutor) (timetable.Timetable, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[tt.ID]
	if !ok || orig.StudentID != tt.StudentID {
		return timetable.Timetable{}, timetable.ErrNotFound
	}
	tt.Day = orig.Day
	tt.CreatedAt = orig.CreatedAt
	stored := copyTimetable(tt)
	repo.db.table[tt.ID] = &stored
	return copyTimetable(stored), nil
}

func (repo *TimetableRepository) DeleteTimetable(_ context.Context, studentID core.StudentID, id core.TimetableID, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if tt, ok := repo.db.table[id]; ok && tt.StudentID == studentID {
		delete(repo.db.table, id)
	}
	return nil
}
