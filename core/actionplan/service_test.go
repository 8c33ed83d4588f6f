package actionplan_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/actionplan"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/task"
	inmemdb "github.com/trezcool/studytrack/storage/database/inmem"
)

func setup(t *testing.T) (*actionplan.Service, *inmemdb.Repositories, core.StudentID, goal.Goal) {
	t.Helper()

	db := inmemdb.Open()
	repos := inmemdb.NewRepositories(db)
	sync := progress.NewSynchronizer(repos.Progress, repos.Tasks, repos.Goals)
	svc := actionplan.NewService(db, repos.ActionPlans, repos.Tasks, repos.Goals, sync)

	studentID := core.StudentID(core.NewID())
	g, err := repos.Goals.CreateGoal(context.Background(), goal.Goal{
		ID: core.GoalID(core.NewID()), StudentID: studentID, Title: "DSA", Type: goal.TypeSkill, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return svc, repos, studentID, g
}

func TestService_Create_rejected(t *testing.T) {
	svc, repos, studentID, g := setup(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		studentID core.StudentID
		np        actionplan.NewActionPlan
		wantErr   string
	}{
		{name: "no student", np: actionplan.NewActionPlan{GoalID: string(g.ID), Steps: []string{"a"}}, wantErr: "student_id: this field is required"},
		{name: "no goal", studentID: studentID, np: actionplan.NewActionPlan{Steps: []string{"a"}}, wantErr: "goal_id: this field is required"},
		{name: "no steps", studentID: studentID, np: actionplan.NewActionPlan{GoalID: string(g.ID)}, wantErr: "steps: at least one step is required"},
		{name: "blank step", studentID: studentID, np: actionplan.NewActionPlan{GoalID: string(g.ID), Steps: []string{"a", "  "}}, wantErr: "steps: step titles cannot be blank"},
		{name: "unknown goal", studentID: studentID, np: actionplan.NewActionPlan{GoalID: "lol", Steps: []string{"a"}}, wantErr: `goal "lol" not found`},
		{name: "other student's goal", studentID: core.StudentID(core.NewID()), np: actionplan.NewActionPlan{GoalID: string(g.ID), Steps: []string{"a"}}, wantErr: `goal "` + string(g.ID) + `" not found`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.studentID, tt.np)
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	// nothing was written
	tasks, err := repos.Tasks.QueryTasks(ctx, studentID, task.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	plans, err := repos.ActionPlans.QueryActionPlans(ctx, studentID, actionplan.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestService_lifecycle(t *testing.T) {
	svc, repos, studentID, g := setup(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, studentID, actionplan.NewActionPlan{GoalID: " " + string(g.ID) + " ", Steps: []string{" Arrays ", "Trees"}})
	require.NoError(t, err)
	assert.Equal(t, actionplan.DefaultStatus, plan.Status)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "Arrays", plan.Steps[0].Title)
	for i, step := range plan.Steps {
		require.NotNil(t, step.TaskID)
		tsk, err := repos.Tasks.GetTask(ctx, studentID, *step.TaskID)
		require.NoError(t, err)
		assert.Equal(t, step.Title, tsk.Title)
		assert.Equal(t, g.ID, tsk.Goal())
		require.NotNil(t, tsk.StepIndex)
		assert.Equal(t, i, *tsk.StepIndex)
	}

	_, err = svc.ToggleStep(ctx, plan, "lol", true)
	assert.True(t, core.IsNotFound(err))

	plan, err = svc.ToggleStep(ctx, plan, plan.Steps[1].ID, true)
	require.NoError(t, err)
	assert.True(t, plan.Steps[1].IsDone)
	tsk, err := repos.Tasks.GetTask(ctx, studentID, *plan.Steps[1].TaskID)
	require.NoError(t, err)
	assert.True(t, tsk.IsCompleted)
	p, err := repos.Progress.GetProgress(ctx, studentID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Percentage)

	// a step whose task was deleted on its own still toggles
	require.NoError(t, repos.Tasks.DeleteTask(ctx, studentID, *plan.Steps[0].TaskID))
	plan, err = svc.ToggleStep(ctx, plan, plan.Steps[0].ID, true)
	require.NoError(t, err)
	assert.True(t, plan.Steps[0].IsDone)

	_, err = svc.AddStep(ctx, plan, actionplan.NewStep{Title: " "})
	var verr *core.ValidationError
	assert.True(t, errors.As(err, &verr))

	plan, err = svc.AddStep(ctx, plan, actionplan.NewStep{Title: "Graphs"})
	require.NoError(t, err)
	require.Len(t, plan.Steps, 3)
	p, err = repos.Progress.GetProgress(ctx, studentID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 50, p.Percentage)

	plan, err = svc.Update(ctx, plan, actionplan.UpdateActionPlan{Title: "Interview prep", Status: "paused"})
	require.NoError(t, err)
	assert.Equal(t, "Interview prep", plan.Title)
	assert.Equal(t, "paused", plan.Status)
	assert.Len(t, plan.Steps, 3)

	require.NoError(t, svc.Delete(ctx, plan))
	_, err = svc.Get(ctx, studentID, plan.ID)
	assert.Equal(t, actionplan.ErrNotFound, err)
	tasks, err := repos.Tasks.QueryTasks(ctx, studentID, task.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	p, err = repos.Progress.GetProgress(ctx, studentID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Total)
}

func TestService_Delete_movedTask(t *testing.T) {
	svc, repos, studentID, g := setup(t)
	ctx := context.Background()
	sync := progress.NewSynchronizer(repos.Progress, repos.Tasks, repos.Goals)

	other, err := repos.Goals.CreateGoal(ctx, goal.Goal{
		ID: core.GoalID(core.NewID()), StudentID: studentID, Title: "GATE", Type: goal.TypeExam, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	plan, err := svc.Create(ctx, studentID, actionplan.NewActionPlan{GoalID: string(g.ID), Steps: []string{"Arrays", "Trees"}})
	require.NoError(t, err)

	// the second step's task now counts towards the other goal
	moved, err := repos.Tasks.GetTask(ctx, studentID, *plan.Steps[1].TaskID)
	require.NoError(t, err)
	moved.GoalID = &other.ID
	moved.IsCompleted = true
	_, err = repos.Tasks.UpdateTask(ctx, moved)
	require.NoError(t, err)
	require.NoError(t, sync.Sync(ctx, studentID, other.ID))
	p, err := repos.Progress.GetProgress(ctx, studentID, other.ID)
	require.NoError(t, err)
	require.Equal(t, 100, p.Percentage)

	require.NoError(t, svc.Delete(ctx, plan))

	for _, goalID := range []core.GoalID{g.ID, other.ID} {
		p, err = repos.Progress.GetProgress(ctx, studentID, goalID)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Total, "goal %s", goalID)
		assert.Equal(t, 0, p.Completed, "goal %s", goalID)
		assert.Equal(t, 0, p.Percentage, "goal %s", goalID)
	}
}
