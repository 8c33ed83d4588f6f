package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/task"
	"github.com/trezcool/studytrack/core/timetable"
)

type timetableApi struct {
	*Server
}

func registerTimetableAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := timetableApi{s}

	tg := g.Group("/timetable", jwt)
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.GET("/day/:day", api.retrieveDay)
	tg.POST("/sync", api.sync)

	// detail endpoints
	dg := tg.Group("/:id", ownerMiddleware(api.load))
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *timetableApi) load(ctx context.Context, studentID core.StudentID, id string) (interface{}, error) {
	return api.deps.TimetableSvc.Get(ctx, studentID, core.TimetableID(id))
}

// Handlers

func (api *timetableApi) create(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	var data timetable.NewTimetable
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTimetable")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	tt, err := api.deps.TimetableSvc.Create(ctx.Request().Context(), studentID, data)
	if err != nil {
		return errors.Wrap(err, "creating timetable")
	}
	return ctx.JSON(http.StatusCreated, tt)
}

func (api *timetableApi) query(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	tts, err := api.deps.TimetableSvc.Query(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying timetables")
	}
	return ctx.JSON(http.StatusOK, tts)
}

func (api *timetableApi) retrieveDay(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	day := core.CleanString(ctx.Param("day"), true /* lower */)
	if !core.IsWeekday(day) {
		return core.NewValidationError(nil, core.FieldError{Field: "day", Error: "must be a day of the week"})
	}

	tt, err := api.deps.TimetableSvc.GetByDay(ctx.Request().Context(), studentID, day)
	if err != nil {
		return errors.Wrap(err, "getting timetable")
	}
	return ctx.JSON(http.StatusOK, tt)
}

func (api *timetableApi) update(ctx echo.Context) error {
	tt, ok := ctx.Get(contextObjectKey).(timetable.Timetable)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	var data timetable.UpdateTimetable
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTimetable")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	populated, err := api.deps.TimetableSvc.Update(ctx.Request().Context(), tt, data)
	if err != nil {
		return errors.Wrap(err, "updating timetable")
	}
	return ctx.JSON(http.StatusOK, populated)
}

func (api *timetableApi) destroy(ctx echo.Context) error {
	tt, ok := ctx.Get(contextObjectKey).(timetable.Timetable)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	if err := api.deps.TimetableSvc.Delete(ctx.Request().Context(), tt.StudentID, tt.ID); err != nil {
		return errors.Wrap(err, "deleting timetable")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *timetableApi) sync(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	created, err := api.deps.TimetableSvc.SyncToday(ctx.Request().Context(), studentID)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "syncing study tasks")
	}
	if created == nil {
		created = []task.Task{}
	}
	return api.respond(ctx, http.StatusOK, created, err)
}
