package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/subject"
)

type subjectApi struct {
	*Server
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := subjectApi{s}

	sg := g.Group("/subjects", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)

	// detail endpoints
	dg := sg.Group("/:id", ownerMiddleware(api.load))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func (api *subjectApi) load(ctx context.Context, studentID core.StudentID, id string) (interface{}, error) {
	return api.deps.SubjectSvc.Get(ctx, studentID, core.SubjectID(id))
}

// Handlers

func (api *subjectApi) create(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	var data subject.NewSubject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	sub, err := api.deps.SubjectSvc.Create(ctx.Request().Context(), studentID, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subjectApi) query(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	filter := new(subject.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []subject.Subject{})
	}
	filter.Clean()

	subjects, err := api.deps.SubjectSvc.Query(ctx.Request().Context(), studentID, *filter)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	sub, ok := ctx.Get(contextObjectKey).(subject.Subject)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) update(ctx echo.Context) error {
	sub, ok := ctx.Get(contextObjectKey).(subject.Subject)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}

	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	sub, err := api.deps.SubjectSvc.Update(ctx.Request().Context(), sub, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	sub, ok := ctx.Get(contextObjectKey).(subject.Subject)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving object from context")
	}
	if err := api.deps.SubjectSvc.Delete(ctx.Request().Context(), sub.StudentID, sub.ID); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
