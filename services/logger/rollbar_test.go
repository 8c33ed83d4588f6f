package logsvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trezcool/studytrack/core"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := RollbarLogger{sugar: zap.NewNop().Sugar()}
	errBoom := errors.New("boom")

	tests := []struct {
		name       string
		args       []interface{}
		wantArgs   []interface{}
		wantPerson map[string]string
	}{
		{name: "message only", wantArgs: []interface{}{"msg"}},
		{
			name:     "error and extras",
			args:     []interface{}{errBoom, map[string]interface{}{"goal_id": "g"}},
			wantArgs: []interface{}{"msg", errBoom, map[string]interface{}{"goal_id": "g"}},
		},
		{
			name: "first person wins",
			args: []interface{}{
				core.Person{ID: "s1", Name: "Hero", Email: "hero@test.cd"},
				map[string]interface{}{"request_id": "r"},
				core.Person{ID: "s2"},
			},
			wantPerson: map[string]string{"id": "s1", "username": "Hero", "email": "hero@test.cd"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rbArgs, _ := l.prepare("msg", tt.args)
			if tt.wantPerson == nil {
				assert.Equal(t, tt.wantArgs, rbArgs)
				return
			}
			require.Len(t, rbArgs, 2)
			extras, ok := rbArgs[1].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tt.wantPerson, extras["person"])
			assert.Equal(t, "r", extras["request_id"])
		})
	}
}
