package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

// SyncErrorHeader is set on successful responses whose progress refresh failed.
const SyncErrorHeader = "X-Progress-Sync-Error"

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "student not authenticated")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errObjNotInCtx    = errors.New("object not found in echo.Context")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		case *core.ConflictError:
			code = http.StatusConflict
			message = map[string]string{origErr.Field: origErr.Message}
		case *core.StoreError:
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			logServerError(logger, ctx, err, map[string]interface{}{"store_op": origErr.Op})

			if ctx.Echo().Debug {
				message = err.Error()
			}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			logServerError(logger, ctx, err, nil)

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func logServerError(logger core.Logger, ctx echo.Context, err error, extras map[string]interface{}) {
	msg := http.StatusText(http.StatusInternalServerError)
	if extras == nil {
		extras = make(map[string]interface{}, 1)
	}
	extras["request_id"] = requestID(ctx)

	args := []interface{}{errors.Wrap(err, msg), extras}
	if claims, cErr := getContextClaims(ctx); cErr == nil {
		args = append(args, core.Person{ID: claims.Subject, Email: claims.Email})
	}
	logger.Error(msg, args...)
}

func requestID(ctx echo.Context) string {
	return ctx.Response().Header().Get(echo.HeaderXRequestID)
}

// respond writes the mutated entity; a progress sync failure is logged and
// reported through SyncErrorHeader without failing the request.
func (s *Server) respond(ctx echo.Context, code int, data interface{}, err error) error {
	if err != nil {
		serr, ok := core.AsSyncError(err)
		if !ok {
			return err
		}
		s.deps.Logger.Error("progress sync failed", serr, map[string]interface{}{
			"goal_id":    string(serr.GoalID),
			"request_id": requestID(ctx),
		}, core.Person{ID: string(serr.StudentID)})
		ctx.Response().Header().Set(SyncErrorHeader, serr.Error())
	}
	if data == nil {
		return ctx.NoContent(code)
	}
	return ctx.JSON(code, data)
}
