package timetable_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/subject"
	"github.com/trezcool/studytrack/core/task"
	"github.com/trezcool/studytrack/core/timetable"
	inmemdb "github.com/trezcool/studytrack/storage/database/inmem"
)

// 2024-01-03 is a wednesday
var wednesday = time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *timetable.Service
	subjects  *subject.Service
	repos     *inmemdb.Repositories
	cal       *core.Calendar
	studentID core.StudentID
}

func setup(t *testing.T) fixture {
	t.Helper()

	repos := inmemdb.NewRepositories(inmemdb.Open())
	cal, err := core.NewCalendar("Z")
	require.NoError(t, err)
	cal.SetClock(func() time.Time { return wednesday })
	syncer := progress.NewSynchronizer(repos.Progress, repos.Tasks, repos.Goals)
	return fixture{
		svc:       timetable.NewService(repos.Timetables, repos.Subjects, repos.Goals, repos.Tasks, syncer, cal),
		subjects:  subject.NewService(repos.Subjects),
		repos:     repos,
		cal:       cal,
		studentID: core.StudentID(core.NewID()),
	}
}

func (f fixture) subject(t *testing.T, name string) subject.Subject {
	t.Helper()

	sub, err := f.subjects.Create(context.Background(), f.studentID, subject.NewSubject{Name: name})
	require.NoError(t, err)
	return sub
}

func TestService_SyncToday_noGoal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	maths := f.subject(t, "Maths")

	_, err := f.svc.Create(ctx, f.studentID, timetable.NewTimetable{Day: "wednesday", SubjectIDs: []string{string(maths.ID)}})
	require.NoError(t, err)

	created, err := f.svc.SyncToday(ctx, f.studentID)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].GoalID)
	assert.Equal(t, "2024-01-03", created[0].StudyDate)
	assert.Equal(t, "Maths Daily Study", created[0].Title)

	// the next day has no timetable
	f.cal.SetClock(func() time.Time { return wednesday.AddDate(0, 0, 1) })
	created, err = f.svc.SyncToday(ctx, f.studentID)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestService_SyncToday_deletedSubjects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	maths := f.subject(t, "Maths")

	_, err := f.svc.Create(ctx, f.studentID, timetable.NewTimetable{Day: "wednesday", SubjectIDs: []string{string(maths.ID)}})
	require.NoError(t, err)
	require.NoError(t, f.subjects.Delete(ctx, f.studentID, maths.ID))

	created, err := f.svc.SyncToday(ctx, f.studentID)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestService_SyncToday_concurrent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ids := make([]string, 0, 3)
	for _, name := range []string{"Maths", "Physics", "Chemistry"} {
		ids = append(ids, string(f.subject(t, name).ID))
	}
	_, err := f.svc.Create(ctx, f.studentID, timetable.NewTimetable{Day: "wednesday", SubjectIDs: ids})
	require.NoError(t, err)

	now := time.Now().UTC()
	sem, err := f.repos.Goals.CreateGoal(ctx, goal.Goal{
		ID: core.GoalID(core.NewID()), StudentID: f.studentID, Title: "Semester", Type: goal.TypeAcademic, CreatedAt: now,
	})
	require.NoError(t, err)

	const callers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := f.svc.SyncToday(ctx, f.studentID)
			assert.NoError(t, err)
			mu.Lock()
			total += len(created)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, total, "each study task is created exactly once")
	tasks, err := f.repos.Tasks.QueryTasks(ctx, f.studentID, task.QueryFilter{StudyDate: "2024-01-03"})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for _, tsk := range tasks {
		assert.Equal(t, sem.ID, tsk.Goal())
	}
}
