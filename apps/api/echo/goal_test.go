package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/task"
	"github.com/trezcool/studytrack/tests"
)

func Test_goalApi_create(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	token := getToken(t, app, hero)

	runTests(t, app, []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/v1/goals",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/goals", token: token,
			body:     marchallObj(t, goal.NewGoal{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required", "type": "this field is required"}),
		},
		{
			name: "unknown type", method: http.MethodPost, path: "/v1/goals", token: token,
			body:     marchallObj(t, goal.NewGoal{Title: "Pass", Type: "weekly"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"type": "must be one of: skill, exam, academic, longterm, midterm, shortterm"}),
		},
		{
			name: "bad date", method: http.MethodPost, path: "/v1/goals", token: token,
			body:     marchallObj(t, goal.NewGoal{Title: "Pass", Type: "exam", EndDate: "01/02/2024"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"end_date": "must be a date formatted as YYYY-MM-DD"}),
		},
		{
			name: "created", method: http.MethodPost, path: "/v1/goals", token: token,
			body:     marchallObj(t, goal.NewGoal{Title: " Semester 5 ", Type: "Academic"}),
			wantCode: http.StatusCreated,
		},
	})

	goals, err := app.GoalSvc.Query(context.Background(), hero.ID, goal.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Semester 5", goals[0].Title)
	assert.Equal(t, goal.TypeAcademic, goals[0].Type)
	assert.Equal(t, goal.DefaultStatus, goals[0].Status)
}

func Test_goalApi_query(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	king := testutil.CreateStudent(t, app.Students, "King", "king@test.cd")
	token := getToken(t, app, hero)

	dsa := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "DSA", goal.TypeSkill)
	sem := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "Semester", goal.TypeAcademic)
	testutil.CreateGoal(t, app.GoalSvc, king.ID, "Not mine", goal.TypeSkill)

	runTests(t, app, []httpTest{
		{name: "all mine", path: "/v1/goals", token: token, wantData: marchallList(t, dsa, sem)},
		{name: "by type", path: "/v1/goals?type=academic", token: token, wantData: marchallList(t, sem)},
		{name: "no match", path: "/v1/goals?type=exam", token: token, wantData: marchallList(t)},
	})
}

func Test_goalApi_detail(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	king := testutil.CreateStudent(t, app.Students, "King", "king@test.cd")
	token := getToken(t, app, hero)

	dsa := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "DSA", goal.TypeSkill)
	kings := testutil.CreateGoal(t, app.GoalSvc, king.ID, "Not mine", goal.TypeSkill)
	notFound := marchallObj(t, httpErr{Error: "goal not found"})

	runTests(t, app, []httpTest{
		{name: "retrieve", path: "/v1/goals/" + string(dsa.ID), token: token, wantData: marchallObj(t, dsa)},
		{name: "unknown", path: "/v1/goals/lol", token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "other student's", path: "/v1/goals/" + string(kings.ID), token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "update other student's", method: http.MethodPut, path: "/v1/goals/" + string(kings.ID), token: token,
			body: marchallObj(t, goal.UpdateGoal{Title: "Mine now"}), wantCode: http.StatusNotFound, wantData: notFound,
		},
		{
			name: "update", method: http.MethodPut, path: "/v1/goals/" + string(dsa.ID), token: token,
			body: marchallObj(t, goal.UpdateGoal{Status: "completed"}),
		},
	})

	g, err := app.GoalSvc.Get(context.Background(), hero.ID, dsa.ID)
	require.NoError(t, err)
	assert.Equal(t, "DSA", g.Title)
	assert.Equal(t, "completed", g.Status)

	k, err := app.GoalSvc.Get(context.Background(), king.ID, kings.ID)
	require.NoError(t, err)
	assert.Equal(t, "Not mine", k.Title)
}

func Test_goalApi_progressFlow(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	token := getToken(t, app, hero)
	dsa := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "DSA", goal.TypeSkill)
	progressPath := "/v1/goals/" + string(dsa.ID) + "/progress"

	getProgress := func(t *testing.T) progress.Progress {
		var p progress.Progress
		unmarshall(t, do(t, app, http.MethodGet, progressPath, token, nil, http.StatusOK), &p)
		return p
	}

	// never synchronized
	p := getProgress(t)
	assert.Equal(t, 0, p.Percentage)
	assert.Equal(t, 0, p.Total)

	var first task.Task
	rec := do(t, app, http.MethodPost, "/v1/tasks", token, task.NewTask{Title: "Arrays", GoalID: string(dsa.ID), IsCompleted: true}, http.StatusCreated)
	unmarshall(t, rec, &first)
	assert.Empty(t, rec.Header().Get("X-Progress-Sync-Error"))
	do(t, app, http.MethodPost, "/v1/tasks", token, task.NewTask{Title: "Trees", GoalID: string(dsa.ID)}, http.StatusCreated)

	var last task.Task
	unmarshall(t, do(t, app, http.MethodPost, "/v1/tasks", token, task.NewTask{Title: "Graphs", GoalID: string(dsa.ID)}, http.StatusCreated), &last)

	p = getProgress(t)
	assert.Equal(t, 33, p.Percentage)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 1, p.Completed)

	done := true
	do(t, app, http.MethodPut, "/v1/tasks/"+string(last.ID), token, task.UpdateTask{IsCompleted: &done}, http.StatusOK)
	assert.Equal(t, 67, getProgress(t).Percentage)

	do(t, app, http.MethodDelete, "/v1/tasks/"+string(last.ID), token, nil, http.StatusNoContent)
	p = getProgress(t)
	assert.Equal(t, 50, p.Percentage)
	assert.Equal(t, 2, p.Total)

	// moving a task away refreshes both goals
	sem := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "Semester", goal.TypeAcademic)
	semID := string(sem.ID)
	do(t, app, http.MethodPut, "/v1/tasks/"+string(first.ID), token, task.UpdateTask{GoalID: &semID}, http.StatusOK)
	assert.Equal(t, 0, getProgress(t).Percentage)

	var recomputed []progress.Progress
	unmarshall(t, do(t, app, http.MethodPost, "/v1/progress/recompute", token, nil, http.StatusOK), &recomputed)
	require.Len(t, recomputed, 2)
	assert.Equal(t, dsa.ID, recomputed[0].GoalID)
	assert.Equal(t, 0, recomputed[0].Percentage)
	assert.Equal(t, sem.ID, recomputed[1].GoalID)
	assert.Equal(t, 100, recomputed[1].Percentage)

	var all []progress.Progress
	unmarshall(t, do(t, app, http.MethodGet, "/v1/progress", token, nil, http.StatusOK), &all)
	assert.Len(t, all, 2)

	// deleting the goal drops its progress but keeps its tasks
	do(t, app, http.MethodDelete, "/v1/goals/"+string(sem.ID), token, nil, http.StatusNoContent)
	unmarshall(t, do(t, app, http.MethodGet, "/v1/progress", token, nil, http.StatusOK), &all)
	require.Len(t, all, 1)
	assert.Equal(t, dsa.ID, all[0].GoalID)

	var moved task.Task
	unmarshall(t, do(t, app, http.MethodGet, "/v1/tasks/"+string(first.ID), token, nil, http.StatusOK), &moved)
	assert.Equal(t, sem.ID, moved.Goal())
}

func Test_taskApi(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	king := testutil.CreateStudent(t, app.Students, "King", "king@test.cd")
	token := getToken(t, app, hero)

	dsa := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "DSA", goal.TypeSkill)
	kings := testutil.CreateGoal(t, app.GoalSvc, king.ID, "Not mine", goal.TypeSkill)

	arrays := testutil.CreateTask(t, app.TaskSvc, hero.ID, "Arrays", dsa.ID, true)
	laundry := testutil.CreateTask(t, app.TaskSvc, hero.ID, "Laundry", "", false)
	kingsTask := testutil.CreateTask(t, app.TaskSvc, king.ID, "Crown", kings.ID, false)

	t.Run("create", func(t *testing.T) {
		runTests(t, app, []httpTest{
			{
				name: "blank title", method: http.MethodPost, path: "/v1/tasks", token: token,
				body:     marchallObj(t, task.NewTask{Title: "   "}),
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
			},
			{
				name: "unknown goal", method: http.MethodPost, path: "/v1/tasks", token: token,
				body:     marchallObj(t, task.NewTask{Title: "Heaps", GoalID: "lol"}),
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"goal_id": "goal not found"}),
			},
			{
				name: "other student's goal", method: http.MethodPost, path: "/v1/tasks", token: token,
				body:     marchallObj(t, task.NewTask{Title: "Heaps", GoalID: string(kings.ID)}),
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, map[string]string{"goal_id": "goal not found"}),
			},
		})
	})

	t.Run("query", func(t *testing.T) {
		runTests(t, app, []httpTest{
			{name: "all mine", path: "/v1/tasks", token: token, wantData: marchallList(t, arrays, laundry)},
			{name: "by goal", path: "/v1/tasks?goal_id=" + string(dsa.ID), token: token, wantData: marchallList(t, arrays)},
			{name: "pending", path: "/v1/tasks?is_completed=false", token: token, wantData: marchallList(t, laundry)},
			{name: "unparsable filter", path: "/v1/tasks?is_completed=lol", token: token, wantData: marchallList(t)},
		})
	})

	t.Run("detail", func(t *testing.T) {
		notFound := marchallObj(t, httpErr{Error: "task not found"})
		runTests(t, app, []httpTest{
			{name: "retrieve", path: "/v1/tasks/" + string(laundry.ID), token: token, wantData: marchallObj(t, laundry)},
			{name: "other student's", path: "/v1/tasks/" + string(kingsTask.ID), token: token, wantCode: http.StatusNotFound, wantData: notFound},
			{
				name: "delete other student's", method: http.MethodDelete, path: "/v1/tasks/" + string(kingsTask.ID), token: token,
				wantCode: http.StatusNotFound, wantData: notFound,
			},
			{name: "delete", method: http.MethodDelete, path: "/v1/tasks/" + string(laundry.ID), token: token, wantCode: http.StatusNoContent},
			{name: "deleted", path: "/v1/tasks/" + string(laundry.ID), token: token, wantCode: http.StatusNotFound, wantData: notFound},
		})
	})
}
