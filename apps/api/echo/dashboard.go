package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

type dashboardApi struct {
	*Server
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := dashboardApi{s}
	g.GET("/dashboard", api.summary, jwt)
}

// Handlers

func (api *dashboardApi) summary(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	sum, err := api.deps.DashboardSvc.Summary(ctx.Request().Context(), studentID)
	if _, ok := core.AsSyncError(err); err != nil && !ok {
		return errors.Wrap(err, "computing dashboard")
	}
	return api.respond(ctx, http.StatusOK, sum, err)
}
