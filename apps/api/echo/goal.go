package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/goal"
)

type goalApi struct {
	*Server
}

func registerGoalAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := goalApi{s}

	gg := g.Group("/goals", jwt)
	gg.POST("", api.create)
	gg.GET("", api.query)

	// detail endpoints
	dg := gg.Group("/:id", ownerMiddleware(api.load))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/progress", api.progress)
	dg.POST("/progress/recompute", api.recompute)
}

func (api *goalApi) load(ctx context.Context, studentID core.StudentID, id string) (interface{}, error) {
	return api.deps.GoalSvc.Get(ctx, studentID, core.GoalID(id))
}

// Handlers

func (api *goalApi) create(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	var data goal.NewGoal
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGoal")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	g, err := api.deps.GoalSvc.Create(ctx.Request().Context(), studentID, data)
	if err != nil {
		return errors.Wrap(err, "creating goal")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *goalApi) query(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	filter := new(goal.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []goal.Goal{})
	}
	filter.Clean()

	goals, err := api.deps.GoalSvc.Query(ctx.Request().Context(), studentID, *filter)
	if err != nil {
		return errors.Wrap(err, "querying goals")
	}
	if goals == nil {
		goals = []goal.Goal{}
	}
	return ctx.JSON(http.StatusOK, goals)
}

func (api *goalApi) retrieve(ctx echo.Context) error {
	g, ok := ctx.Get(contextObjectKey).(goal.Goal)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *goalApi) update(ctx echo.Context) error {
	g, ok := ctx.Get(contextObjectKey).(goal.Goal)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	var data goal.UpdateGoal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGoal")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	g, err := api.deps.GoalSvc.Update(ctx.Request().Context(), g, data)
	if err != nil {
		return errors.Wrap(err, "updating goal")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *goalApi) destroy(ctx echo.Context) error {
	g, ok := ctx.Get(contextObjectKey).(goal.Goal)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	if err := api.deps.GoalSvc.Delete(ctx.Request().Context(), g.StudentID, g.ID); err != nil {
		return errors.Wrap(err, "deleting goal")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *goalApi) progress(ctx echo.Context) error {
	g, ok := ctx.Get(contextObjectKey).(goal.Goal)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	p, err := api.deps.ProgressSync.Get(ctx.Request().Context(), g.StudentID, g.ID)
	if err != nil {
		return errors.Wrap(err, "getting progress")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *goalApi) recompute(ctx echo.Context) error {
	g, ok := ctx.Get(contextObjectKey).(goal.Goal)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	p, err := api.deps.ProgressSync.Recompute(ctx.Request().Context(), g.StudentID, g.ID)
	if err != nil {
		return errors.Wrap(err, "recomputing progress")
	}
	return ctx.JSON(http.StatusOK, p)
}
