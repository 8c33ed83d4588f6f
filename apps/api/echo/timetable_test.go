package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/subject"
	"github.com/trezcool/studytrack/core/task"
	"github.com/trezcool/studytrack/core/timetable"
	"github.com/trezcool/studytrack/tests"
)

func Test_timetableApi_create(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	king := testutil.CreateStudent(t, app.Students, "King", "king@test.cd")
	token := getToken(t, app, hero)

	maths := testutil.CreateSubject(t, app.SubjectSvc, hero.ID, "Maths")
	physics := testutil.CreateSubject(t, app.SubjectSvc, hero.ID, "Physics")
	kings := testutil.CreateSubject(t, app.SubjectSvc, king.ID, "Etiquette")

	newTimetable := func(day string, subjects ...subject.Subject) timetable.NewTimetable {
		ids := make([]string, 0, len(subjects))
		for _, sub := range subjects {
			ids = append(ids, string(sub.ID))
		}
		return timetable.NewTimetable{Day: day, SubjectIDs: ids}
	}

	runTests(t, app, []httpTest{
		{
			name: "day required", method: http.MethodPost, path: "/v1/timetable", token: token,
			body:     marchallObj(t, newTimetable("", maths)),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"day": "this field is required"}),
		},
		{
			name: "not a weekday", method: http.MethodPost, path: "/v1/timetable", token: token,
			body:     marchallObj(t, newTimetable("funday", maths)),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"day": "must be a day of the week (monday ... sunday)"}),
		},
		{
			name: "other student's subject", method: http.MethodPost, path: "/v1/timetable", token: token,
			body:     marchallObj(t, newTimetable("monday", maths, kings)),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subject_ids": "unknown subject"}),
		},
		{
			name: "created", method: http.MethodPost, path: "/v1/timetable", token: token,
			body:     marchallObj(t, newTimetable("Monday", physics, maths, physics)),
			wantCode: http.StatusCreated,
		},
		{
			name: "day taken", method: http.MethodPost, path: "/v1/timetable", token: token,
			body:     marchallObj(t, newTimetable("monday", maths)),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, map[string]string{"day": "a timetable already exists for this day"}),
		},
		{
			name: "same day for another student", method: http.MethodPost, path: "/v1/timetable", token: getToken(t, app, king),
			body:     marchallObj(t, newTimetable("monday", kings)),
			wantCode: http.StatusCreated,
		},
		{
			name: "invalid day", path: "/v1/timetable/day/someday", token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"day": "must be a day of the week"}),
		},
		{
			name: "no timetable for the day", path: "/v1/timetable/day/friday", token: token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "timetable not found"}),
		},
	})

	var monday timetable.Populated
	unmarshall(t, do(t, app, http.MethodGet, "/v1/timetable/day/MONDAY", token, nil, http.StatusOK), &monday)
	assert.Equal(t, "monday", monday.Day)
	require.Len(t, monday.Subjects, 2)
	assert.Equal(t, "Physics", monday.Subjects[0].Name)
	assert.Equal(t, "Maths", monday.Subjects[1].Name)
}

func Test_timetableApi_query(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	token := getToken(t, app, hero)
	maths := testutil.CreateSubject(t, app.SubjectSvc, hero.ID, "Maths")
	ids := []string{string(maths.ID)}

	// created out of weekday order
	for _, day := range []string{"friday", "monday", "wednesday"} {
		do(t, app, http.MethodPost, "/v1/timetable", token, timetable.NewTimetable{Day: day, SubjectIDs: ids}, http.StatusCreated)
	}

	var tts []timetable.Populated
	unmarshall(t, do(t, app, http.MethodGet, "/v1/timetable", token, nil, http.StatusOK), &tts)
	require.Len(t, tts, 3)
	assert.Equal(t, "monday", tts[0].Day)
	assert.Equal(t, "wednesday", tts[1].Day)
	assert.Equal(t, "friday", tts[2].Day)

	// a deleted subject disappears from the populated view only
	do(t, app, http.MethodDelete, "/v1/subjects/"+string(maths.ID), token, nil, http.StatusNoContent)
	unmarshall(t, do(t, app, http.MethodGet, "/v1/timetable", token, nil, http.StatusOK), &tts)
	require.Len(t, tts, 3)
	assert.Empty(t, tts[0].Subjects)
	assert.Equal(t, maths.ID, tts[0].SubjectIDs[0])

	// update and delete
	physics := testutil.CreateSubject(t, app.SubjectSvc, hero.ID, "Physics")
	var updated timetable.Populated
	unmarshall(t, do(t, app, http.MethodPut, "/v1/timetable/"+string(tts[0].ID), token,
		timetable.UpdateTimetable{SubjectIDs: []string{string(physics.ID)}}, http.StatusOK,
	), &updated)
	assert.Equal(t, "monday", updated.Day)
	require.Len(t, updated.Subjects, 1)
	assert.Equal(t, physics.ID, updated.Subjects[0].ID)

	do(t, app, http.MethodDelete, "/v1/timetable/"+string(tts[0].ID), token, nil, http.StatusNoContent)
	do(t, app, http.MethodGet, "/v1/timetable/day/monday", token, nil, http.StatusNotFound)
}

func Test_timetableApi_sync(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	token := getToken(t, app, hero)
	maths := testutil.CreateSubject(t, app.SubjectSvc, hero.ID, "Maths")
	physics := testutil.CreateSubject(t, app.SubjectSvc, hero.ID, "Physics")
	chemistry := testutil.CreateSubject(t, app.SubjectSvc, hero.ID, "Chemistry")

	// nothing scheduled yet
	runTests(t, app, []httpTest{
		{name: "no timetable", method: http.MethodPost, path: "/v1/timetable/sync", token: token, wantData: marchallList(t)},
	})

	do(t, app, http.MethodPost, "/v1/timetable", token,
		timetable.NewTimetable{Day: "monday", SubjectIDs: []string{string(maths.ID), string(physics.ID)}}, http.StatusCreated)
	do(t, app, http.MethodPost, "/v1/timetable", token,
		timetable.NewTimetable{Day: "tuesday", SubjectIDs: []string{string(chemistry.ID)}}, http.StatusCreated)
	sem := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "Semester 5", goal.TypeAcademic)
	testutil.CreateGoal(t, app.GoalSvc, hero.ID, "Semester 6", goal.TypeAcademic)

	var created []task.Task
	unmarshall(t, do(t, app, http.MethodPost, "/v1/timetable/sync", token, nil, http.StatusOK), &created)
	require.Len(t, created, 2)
	assert.Equal(t, "Maths Daily Study", created[0].Title)
	assert.Equal(t, "Physics Daily Study", created[1].Title)
	for _, tsk := range created {
		assert.Equal(t, "2024-01-01", tsk.StudyDate)
		assert.Equal(t, "2024-01-01", tsk.DueDate)
		assert.Equal(t, sem.ID, tsk.Goal(), "linked to the first academic goal")
		assert.False(t, tsk.IsCompleted)
	}

	// second call is a no-op
	runTests(t, app, []httpTest{
		{name: "idempotent", method: http.MethodPost, path: "/v1/timetable/sync", token: token, wantData: marchallList(t)},
	})

	var today []task.Task
	unmarshall(t, do(t, app, http.MethodGet, "/v1/tasks?study_date=2024-01-01", token, nil, http.StatusOK), &today)
	assert.Len(t, today, 2)

	var p progress.Progress
	unmarshall(t, do(t, app, http.MethodGet, "/v1/goals/"+string(sem.ID)+"/progress", token, nil, http.StatusOK), &p)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 0, p.Percentage)
}
