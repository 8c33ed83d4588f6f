package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/student"
)

const (
	contextTokenKey   = "studentToken"
	contextStudentKey = "student"
	contextObjectKey  = "object"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GetStudentClaims returns the claims of a fresh token for st.
// origIat keeps the original issue time across refreshes.
func GetStudentClaims(conf *core.Config, st student.Student, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   string(st.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         st.Name,
		Email:        st.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the student Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextStudent loads the authenticated student once per request.
// A token whose student was deleted is treated as unauthenticated.
func (s *Server) getContextStudent(ctx echo.Context) (student.Student, error) {
	if st, ok := ctx.Get(contextStudentKey).(student.Student); ok {
		return st, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, err
	}
	st, err := s.deps.StudentSvc.GetByID(ctx.Request().Context(), core.StudentID(claims.Subject))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errUnauthorized
		}
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	ctx.Set(contextStudentKey, st)
	return st, nil
}

// contextStudentID returns the subject of the token without hitting the store.
func contextStudentID(ctx echo.Context) (core.StudentID, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	return core.StudentID(claims.Subject), nil
}

func (s *Server) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	st, err := s.getContextStudent(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context student")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(s.deps.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := GenerateToken(s.deps.Conf, GetStudentClaims(s.deps.Conf, st, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
