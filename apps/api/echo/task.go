package echoapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/task"
)

type taskApi struct {
	*Server
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := taskApi{s}

	tg := g.Group("/tasks", jwt)
	tg.POST("", api.create)
	tg.GET("", api.query)

	// detail endpoints
	dg := tg.Group("/:id", ownerMiddleware(api.load))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *taskApi) load(ctx context.Context, studentID core.StudentID, id string) (interface{}, error) {
	return api.deps.TaskSvc.Get(ctx, studentID, core.TaskID(id))
}

// bindTaskFilter reads the query params; an unparsable is_completed matches nothing.
func bindTaskFilter(ctx echo.Context) (task.QueryFilter, bool) {
	filter := task.QueryFilter{
		GoalID:       core.GoalID(core.CleanString(ctx.QueryParam("goal_id"))),
		ActionPlanID: core.ActionPlanID(core.CleanString(ctx.QueryParam("action_plan_id"))),
		SubjectID:    core.SubjectID(core.CleanString(ctx.QueryParam("subject_id"))),
		StudyDate:    core.CleanString(ctx.QueryParam("study_date")),
	}
	if v := core.CleanString(ctx.QueryParam("is_completed")); v != "" {
		done, err := strconv.ParseBool(v)
		if err != nil {
			return filter, false
		}
		filter.IsCompleted = &done
	}
	return filter, true
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	var data task.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	t, err := api.deps.TaskSvc.Create(ctx.Request().Context(), studentID, data)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "creating task")
	}
	return api.respond(ctx, http.StatusCreated, t, err)
}

func (api *taskApi) query(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	filter, ok := bindTaskFilter(ctx)
	if !ok {
		return ctx.JSON(http.StatusOK, []task.Task{})
	}

	tasks, err := api.deps.TaskSvc.Query(ctx.Request().Context(), studentID, filter)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	t, ok := ctx.Get(contextObjectKey).(task.Task)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) update(ctx echo.Context) error {
	t, ok := ctx.Get(contextObjectKey).(task.Task)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	t, err := api.deps.TaskSvc.Update(ctx.Request().Context(), t, data)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "updating task")
	}
	return api.respond(ctx, http.StatusOK, t, err)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	t, ok := ctx.Get(contextObjectKey).(task.Task)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	err := api.deps.TaskSvc.Delete(ctx.Request().Context(), t)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "deleting task")
	}
	return api.respond(ctx, http.StatusNoContent, nil, err)
}
