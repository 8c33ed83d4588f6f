package student

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

var (
	tokenSalt = []byte("studytrack.core.student.token")
	nowFunc   = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// tokenGenerator makes password reset tokens: "<base32 day number>-<signature>".
// A token is invalidated as soon as the password changes.
type tokenGenerator struct {
	secret  string
	timeout time.Duration
}

func newTokenGenerator(conf *core.Config) tokenGenerator {
	return tokenGenerator{secret: conf.SecretKey, timeout: conf.PasswordResetTimeoutDelta}
}

// EncodeUID base64 encodes the student's ID.
func EncodeUID(id core.StudentID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeUID(uid string) (core.StudentID, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return core.StudentID(idBytes), nil
}

func (g tokenGenerator) makeToken(st Student) string {
	return g.makeTokenWithTimestamp(st, numDaysSince2001(nowFunc()))
}

func (g tokenGenerator) verifyToken(st Student, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	if subtle.ConstantTimeCompare([]byte(g.makeTokenWithTimestamp(st, ts)), []byte(token)) == 0 {
		return errInvalidToken
	}

	if numDaysSince2001(nowFunc())-ts > int(g.timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (g tokenGenerator) makeTokenWithTimestamp(st Student, ts int) string {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, g.sign(hashValue(st, ts)))
}

func (g tokenGenerator) sign(val []byte) string {
	key := sha256.Sum256(append(append([]byte{}, tokenSalt...), g.secret...))
	h := hmac.New(sha256.New, key[:])
	h.Write(val) // never fails
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func hashValue(st Student, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(string(st.ID))
	val.Write(st.PasswordHash)
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
