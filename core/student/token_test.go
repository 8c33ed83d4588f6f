package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studytrack/core"
)

func TestTokenGenerator(t *testing.T) {
	conf := core.NewTestConfig()
	conf.SecretKey = "secret"
	conf.PasswordResetTimeoutDelta = 3 * 24 * time.Hour
	gen := newTokenGenerator(conf)

	now := time.Now()
	st := Student{ID: "st-1", Name: "T", Email: "t@test.cd", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.SetPassword("Str0ng&Secret"))

	validToken := gen.makeToken(st)

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := gen.makeToken(st)
	nowFunc = time.Now // reset

	changed := st
	require.NoError(t, changed.SetPassword("N3w&Secret"))

	otherGen := newTokenGenerator(&core.Config{SecretKey: "other", PasswordResetTimeoutDelta: conf.PasswordResetTimeoutDelta})

	tests := []struct {
		name    string
		gen     tokenGenerator
		st      Student
		token   string
		wantErr error
	}{
		{name: "no token", gen: gen, st: st, wantErr: errInvalidToken},
		{name: "invalid parts len", gen: gen, st: st, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", gen: gen, st: st, token: "hahaha-sigsig", wantErr: errInvalidToken},
		{name: "invalid timestamp", gen: gen, st: st, token: "NRXWY-sigsig", wantErr: errInvalidToken},
		{name: "invalid signature", gen: gen, st: st, token: "HE4TS-sigsig", wantErr: errInvalidToken},
		{name: "expired token", gen: gen, st: st, token: expiredToken, wantErr: errTokenExpired},
		{name: "password changed", gen: gen, st: changed, token: validToken, wantErr: errInvalidToken},
		{name: "other secret", gen: otherGen, st: st, token: validToken, wantErr: errInvalidToken},
		{name: "valid token", gen: gen, st: st, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.gen.verifyToken(tt.st, tt.token))
		})
	}
}

func TestEncodeUID(t *testing.T) {
	uid := EncodeUID("0b7e-42")
	id, err := decodeUID(uid)
	require.NoError(t, err)
	assert.Equal(t, core.StudentID("0b7e-42"), id)

	_, err = decodeUID("!!")
	assert.Error(t, err)
}
