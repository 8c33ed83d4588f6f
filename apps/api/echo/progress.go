package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core/progress"
)

type progressApi struct {
	*Server
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := progressApi{s}

	pg := g.Group("/progress", jwt)
	pg.GET("", api.query)
	pg.POST("/recompute", api.recompute)
}

// Handlers

func (api *progressApi) query(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	records, err := api.deps.ProgressSync.QueryByStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	if records == nil {
		records = []progress.Progress{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *progressApi) recompute(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	records, err := api.deps.ProgressSync.RecomputeStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "recomputing progress")
	}
	return ctx.JSON(http.StatusOK, records)
}
