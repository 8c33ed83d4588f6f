package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studytrack/core/actionplan"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/task"
	"github.com/trezcool/studytrack/tests"
)

func Test_actionPlanApi_create(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	king := testutil.CreateStudent(t, app.Students, "King", "king@test.cd")
	token := getToken(t, app, hero)
	dsa := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "DSA", goal.TypeSkill)
	kings := testutil.CreateGoal(t, app.GoalSvc, king.ID, "Not mine", goal.TypeSkill)

	runTests(t, app, []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/action-plans", token: token,
			body:     marchallObj(t, actionplan.NewActionPlan{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"goal_id": "this field is required", "steps": "this field is required"}),
		},
		{
			name: "blank step", method: http.MethodPost, path: "/v1/action-plans", token: token,
			body:     marchallObj(t, actionplan.NewActionPlan{GoalID: string(dsa.ID), Steps: []string{"Arrays", "  "}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"steps[1]": "this field cannot be blank"}),
		},
		{
			name: "unknown goal", method: http.MethodPost, path: "/v1/action-plans", token: token,
			body:     marchallObj(t, actionplan.NewActionPlan{GoalID: "lol", Steps: []string{"Arrays"}}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: `goal "lol" not found`}),
		},
		{
			name: "other student's goal", method: http.MethodPost, path: "/v1/action-plans", token: token,
			body:     marchallObj(t, actionplan.NewActionPlan{GoalID: string(kings.ID), Steps: []string{"Arrays"}}),
			wantCode: http.StatusNotFound,
		},
	})

	var tasks []task.Task
	unmarshall(t, do(t, app, http.MethodGet, "/v1/tasks", token, nil, http.StatusOK), &tasks)
	assert.Empty(t, tasks, "rejected plans must not generate tasks")

	var plan actionplan.ActionPlan
	rec := do(t, app, http.MethodPost, "/v1/action-plans", token,
		actionplan.NewActionPlan{GoalID: string(dsa.ID), Title: "Crack DSA", Steps: []string{" Arrays ", "Trees", "Graphs"}},
		http.StatusCreated,
	)
	unmarshall(t, rec, &plan)
	assert.Equal(t, actionplan.DefaultStatus, plan.Status)
	require.Len(t, plan.Steps, 3)
	assert.Equal(t, "Arrays", plan.Steps[0].Title)

	unmarshall(t, do(t, app, http.MethodGet, "/v1/tasks?action_plan_id="+string(plan.ID), token, nil, http.StatusOK), &tasks)
	require.Len(t, tasks, 3)
	for i, tsk := range tasks {
		require.NotNil(t, plan.Steps[i].TaskID)
		assert.Equal(t, *plan.Steps[i].TaskID, tsk.ID)
		assert.Equal(t, plan.Steps[i].Title, tsk.Title)
		assert.Equal(t, dsa.ID, tsk.Goal())
		require.NotNil(t, tsk.StepIndex)
		assert.Equal(t, i, *tsk.StepIndex)
		assert.False(t, tsk.IsCompleted)
	}

	var p progress.Progress
	unmarshall(t, do(t, app, http.MethodGet, "/v1/goals/"+string(dsa.ID)+"/progress", token, nil, http.StatusOK), &p)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 0, p.Percentage)

	runTests(t, app, []httpTest{
		{name: "query by goal", path: "/v1/action-plans?goal_id=" + string(dsa.ID), token: token, wantData: marchallList(t, plan)},
		{name: "query other goal", path: "/v1/action-plans?goal_id=" + string(kings.ID), token: token, wantData: marchallList(t)},
		{name: "retrieve", path: "/v1/action-plans/" + string(plan.ID), token: token, wantData: marchallObj(t, plan)},
	})
}

func Test_actionPlanApi_toggleStep(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	token := getToken(t, app, hero)
	dsa := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "DSA", goal.TypeSkill)
	progressPath := "/v1/goals/" + string(dsa.ID) + "/progress"

	percentage := func(t *testing.T) int {
		var p progress.Progress
		unmarshall(t, do(t, app, http.MethodGet, progressPath, token, nil, http.StatusOK), &p)
		return p.Percentage
	}

	var plan actionplan.ActionPlan
	unmarshall(t, do(t, app, http.MethodPost, "/v1/action-plans", token,
		actionplan.NewActionPlan{GoalID: string(dsa.ID), Steps: []string{"Arrays", "Trees"}},
		http.StatusCreated,
	), &plan)
	stepPath := func(idx int) string {
		return "/v1/action-plans/" + string(plan.ID) + "/steps/" + string(plan.Steps[idx].ID)
	}
	done, undone := true, false

	runTests(t, app, []httpTest{
		{
			name: "is_done required", method: http.MethodPut, path: stepPath(0), token: token,
			body:     marchallObj(t, actionplan.ToggleStep{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"is_done": "this field is required"}),
		},
		{
			name: "unknown step", method: http.MethodPut, path: "/v1/action-plans/" + string(plan.ID) + "/steps/lol", token: token,
			body:     marchallObj(t, actionplan.ToggleStep{IsDone: &done}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: `step "lol" not found`}),
		},
	})

	var toggled actionplan.ActionPlan
	unmarshall(t, do(t, app, http.MethodPut, stepPath(0), token, actionplan.ToggleStep{IsDone: &done}, http.StatusOK), &toggled)
	assert.True(t, toggled.Steps[0].IsDone)
	assert.False(t, toggled.Steps[1].IsDone)
	assert.Equal(t, 50, percentage(t))

	do(t, app, http.MethodPut, stepPath(1), token, actionplan.ToggleStep{IsDone: &done}, http.StatusOK)
	assert.Equal(t, 100, percentage(t))

	var stepTask task.Task
	unmarshall(t, do(t, app, http.MethodGet, "/v1/tasks/"+string(*plan.Steps[1].TaskID), token, nil, http.StatusOK), &stepTask)
	assert.True(t, stepTask.IsCompleted)

	// completing through the task is mirrored onto the step
	do(t, app, http.MethodPut, "/v1/tasks/"+string(stepTask.ID), token, task.UpdateTask{IsCompleted: &undone}, http.StatusOK)
	assert.Equal(t, 50, percentage(t))

	unmarshall(t, do(t, app, http.MethodGet, "/v1/action-plans/"+string(plan.ID), token, nil, http.StatusOK), &toggled)
	assert.True(t, toggled.Steps[0].IsDone)
	assert.False(t, toggled.Steps[1].IsDone)

	// a new step adds a pending task
	var grown actionplan.ActionPlan
	unmarshall(t, do(t, app, http.MethodPost, "/v1/action-plans/"+string(plan.ID)+"/steps", token,
		actionplan.NewStep{Title: "Graphs"}, http.StatusCreated,
	), &grown)
	require.Len(t, grown.Steps, 3)
	require.NotNil(t, grown.Steps[2].TaskID)
	assert.Equal(t, 33, percentage(t))
}

func Test_actionPlanApi_destroy(t *testing.T) {
	app := setup(t)
	hero := testutil.CreateStudent(t, app.Students, "Hero", "hero@test.cd")
	king := testutil.CreateStudent(t, app.Students, "King", "king@test.cd")
	token := getToken(t, app, hero)
	dsa := testutil.CreateGoal(t, app.GoalSvc, hero.ID, "DSA", goal.TypeSkill)

	var plan actionplan.ActionPlan
	unmarshall(t, do(t, app, http.MethodPost, "/v1/action-plans", token,
		actionplan.NewActionPlan{GoalID: string(dsa.ID), Steps: []string{"Arrays", "Trees"}},
		http.StatusCreated,
	), &plan)
	done := true
	do(t, app, http.MethodPut, "/v1/action-plans/"+string(plan.ID)+"/steps/"+string(plan.Steps[0].ID), token,
		actionplan.ToggleStep{IsDone: &done}, http.StatusOK)

	planPath := "/v1/action-plans/" + string(plan.ID)
	runTests(t, app, []httpTest{
		{
			name: "other student's", method: http.MethodDelete, path: planPath, token: getToken(t, app, king),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "action plan not found"}),
		},
		{name: "deleted", method: http.MethodDelete, path: planPath, token: token, wantCode: http.StatusNoContent},
		{name: "gone", path: planPath, token: token, wantCode: http.StatusNotFound},
	})

	var tasks []task.Task
	unmarshall(t, do(t, app, http.MethodGet, "/v1/tasks?goal_id="+string(dsa.ID), token, nil, http.StatusOK), &tasks)
	assert.Empty(t, tasks)

	var p progress.Progress
	unmarshall(t, do(t, app, http.MethodGet, "/v1/goals/"+string(dsa.ID)+"/progress", token, nil, http.StatusOK), &p)
	assert.Equal(t, 0, p.Percentage)
	assert.Equal(t, 0, p.Total)
}
