package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/student"
	"github.com/trezcool/studytrack/core/task"
	emailsvc "github.com/trezcool/studytrack/services/email"
	logsvc "github.com/trezcool/studytrack/services/logger"
	inmemdb "github.com/trezcool/studytrack/storage/database/inmem"
)

var errDiskFull = errors.New("disk full")

// brokenProgressRepo stores nothing.
type brokenProgressRepo struct {
	progress.Repository
}

func (brokenProgressRepo) UpsertProgress(context.Context, progress.Progress, ...core.DBExecutor) (progress.Progress, error) {
	return progress.Progress{}, errDiskFull
}

func (brokenProgressRepo) QueryProgress(context.Context, core.StudentID, ...core.DBExecutor) ([]progress.Progress, error) {
	return nil, core.NewStoreError("select", errDiskFull)
}

// corruptProgressRepo fails in a way the server cannot recover from.
type corruptProgressRepo struct {
	progress.Repository
}

func (corruptProgressRepo) QueryProgress(context.Context, core.StudentID, ...core.DBExecutor) ([]progress.Progress, error) {
	return nil, core.NewShutdownError("progress table corrupted")
}

func newBrokenProgressServer(t *testing.T, wrap ...func(progress.Repository) progress.Repository) (*Server, *inmemdb.Repositories) {
	t.Helper()

	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(zap.NewNop().Sugar(), conf)
	logger.Enable(false)

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)

	db := inmemdb.Open()
	repos := inmemdb.NewRepositories(db)
	var progressRepo progress.Repository = brokenProgressRepo{repos.Progress}
	if len(wrap) > 0 {
		progressRepo = wrap[0](repos.Progress)
	}
	sync := progress.NewSynchronizer(progressRepo, repos.Tasks, repos.Goals)

	s := NewServer(Options{DisableReqLogs: true}, Deps{
		Conf:         conf,
		Logger:       logger,
		Validate:     validate,
		Translator:   translator,
		StudentSvc:   student.NewService(conf, repos.Students, emailsvc.NewServiceMock(conf, logger)),
		GoalSvc:      goal.NewService(db, repos.Goals, repos.Progress),
		TaskSvc:      task.NewService(db, repos.Tasks, repos.Goals, repos.ActionPlans, sync),
		ProgressSync: sync,
	})
	return s, repos
}

func TestSyncFailureKeepsMutation(t *testing.T) {
	s, repos := newBrokenProgressServer(t)
	ctx := context.Background()

	st, err := repos.Students.CreateStudent(ctx, student.Student{ID: core.StudentID(core.NewID()), Name: "Hero", Email: "hero@test.cd"})
	require.NoError(t, err)
	g, err := repos.Goals.CreateGoal(ctx, goal.Goal{ID: core.GoalID(core.NewID()), StudentID: st.ID, Title: "DSA", Type: goal.TypeSkill})
	require.NoError(t, err)
	token, err := GenerateToken(s.deps.Conf, GetStudentClaims(s.deps.Conf, st))
	require.NoError(t, err)

	body, err := json.Marshal(task.NewTask{Title: "Arrays", GoalID: string(g.ID)})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get(SyncErrorHeader), "disk full")

	var created task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Arrays", created.Title)

	stored, err := repos.Tasks.GetTask(ctx, st.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, stored.Goal())

	// failures outside of a sync are server errors
	req = httptest.NewRequest(http.MethodGet, "/v1/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Internal Server Error"}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get(SyncErrorHeader))
}

func TestServerErrorShutsDown(t *testing.T) {
	s, repos := newBrokenProgressServer(t, func(repo progress.Repository) progress.Repository {
		return corruptProgressRepo{repo}
	})

	st, err := repos.Students.CreateStudent(context.Background(), student.Student{ID: core.StudentID(core.NewID()), Name: "Hero", Email: "hero@test.cd"})
	require.NoError(t, err)
	token, err := GenerateToken(s.deps.Conf, GetStudentClaims(s.deps.Conf, st))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	select {
	case sig := <-s.ShutdownSignal():
		assert.Equal(t, syscall.SIGTERM, sig)
	case <-time.After(time.Second):
		t.Error("shutdown was not signalled")
	}
}
