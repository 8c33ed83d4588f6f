package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/actionplan"
)

type actionPlanApi struct {
	*Server
}

func registerActionPlanAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := actionPlanApi{s}

	pg := g.Group("/action-plans", jwt)
	pg.POST("", api.create)
	pg.GET("", api.query)

	// detail endpoints
	dg := pg.Group("/:id", ownerMiddleware(api.load))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/steps", api.addStep)
	dg.PUT("/steps/:stepId", api.toggleStep)
}

func (api *actionPlanApi) load(ctx context.Context, studentID core.StudentID, id string) (interface{}, error) {
	return api.deps.ActionPlanSvc.Get(ctx, studentID, core.ActionPlanID(id))
}

// Handlers

func (api *actionPlanApi) create(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	var data actionplan.NewActionPlan
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActionPlan")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	p, err := api.deps.ActionPlanSvc.Create(ctx.Request().Context(), studentID, data)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "creating action plan")
	}
	return api.respond(ctx, http.StatusCreated, p, err)
}

func (api *actionPlanApi) query(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	filter := actionplan.QueryFilter{GoalID: core.GoalID(core.CleanString(ctx.QueryParam("goal_id")))}
	plans, err := api.deps.ActionPlanSvc.Query(ctx.Request().Context(), studentID, filter)
	if err != nil {
		return errors.Wrap(err, "querying action plans")
	}
	if plans == nil {
		plans = []actionplan.ActionPlan{}
	}
	return ctx.JSON(http.StatusOK, plans)
}

func (api *actionPlanApi) retrieve(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(actionplan.ActionPlan)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *actionPlanApi) update(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(actionplan.ActionPlan)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	var data actionplan.UpdateActionPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActionPlan")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	p, err := api.deps.ActionPlanSvc.Update(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating action plan")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *actionPlanApi) destroy(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(actionplan.ActionPlan)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	err := api.deps.ActionPlanSvc.Delete(ctx.Request().Context(), p)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "deleting action plan")
	}
	return api.respond(ctx, http.StatusNoContent, nil, err)
}

func (api *actionPlanApi) addStep(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(actionplan.ActionPlan)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	var data actionplan.NewStep
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStep")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	p, err := api.deps.ActionPlanSvc.AddStep(ctx.Request().Context(), p, data)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "adding step")
	}
	return api.respond(ctx, http.StatusCreated, p, err)
}

func (api *actionPlanApi) toggleStep(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(actionplan.ActionPlan)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	var data actionplan.ToggleStep
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleStep")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	p, err := api.deps.ActionPlanSvc.ToggleStep(ctx.Request().Context(), p, core.StepID(ctx.Param("stepId")), *data.IsDone)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "toggling step")
	}
	return api.respond(ctx, http.StatusOK, p, err)
}
