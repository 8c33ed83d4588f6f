package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core/myday"
)

type myDayApi struct {
	*Server
}

func registerMyDayAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := myDayApi{s}

	mg := g.Group("/myday", jwt)
	mg.POST("", api.log)
	mg.GET("", api.today)
	mg.GET("/week", api.week)
	mg.GET("/:date", api.retrieve)
}

// Handlers

func (api *myDayApi) log(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	var data myday.NewMyDay
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMyDay")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	d, err := api.deps.MyDaySvc.Log(ctx.Request().Context(), studentID, data)
	if err != nil {
		return errors.Wrap(err, "logging my day")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *myDayApi) today(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	d, err := api.deps.MyDaySvc.Today(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "getting today's my day")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *myDayApi) week(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	days, err := api.deps.MyDaySvc.Week(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "getting week")
	}
	if days == nil {
		days = []myday.MyDay{}
	}
	return ctx.JSON(http.StatusOK, days)
}

func (api *myDayApi) retrieve(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	d, err := api.deps.MyDaySvc.GetByDate(ctx.Request().Context(), studentID, ctx.Param("date"))
	if err != nil {
		return errors.Wrap(err, "getting my day")
	}
	return ctx.JSON(http.StatusOK, d)
}
