package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

type objectLoader func(ctx context.Context, studentID core.StudentID, id string) (interface{}, error)

// ownerMiddleware loads the ":id" object of the authenticated student into the context.
// Loaders are scoped by student, so objects of other students are reported as not found.
func ownerMiddleware(load objectLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			studentID, err := contextStudentID(ctx)
			if err != nil {
				return err
			}
			obj, err := load(ctx.Request().Context(), studentID, ctx.Param("id"))
			if err != nil {
				if core.IsNotFound(err) {
					return err
				}
				return errors.Wrap(err, "loading object")
			}
			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}
