// Package sqlxrepos implements every repository on top of sqlx.
// Queries are written with ? placeholders and rebound for the driver in use (postgres or sqlite3).
package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
)

// Transactor runs units of work inside database transactions.
type Transactor struct {
	db *sqlx.DB
}

var _ core.Transactor = (*Transactor)(nil)

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(exec core.DBExecutor) error) (err error) {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewStoreError("beginning transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			// the store may hold a partial unit of work
			return core.NewShutdownError(fmt.Sprintf("rolling back after %v: %v", err, rbErr))
		}
		return err
	}
	return core.NewStoreError("committing transaction", tx.Commit())
}

// Repositories bundles every repository backed by db.
type Repositories struct {
	Students    *StudentRepository
	Subjects    *SubjectRepository
	Goals       *GoalRepository
	ActionPlans *ActionPlanRepository
	Tasks       *TaskRepository
	Progress    *ProgressRepository
	Timetables  *TimetableRepository
	MyDays      *MyDayRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Students:    NewStudentRepository(db),
		Subjects:    NewSubjectRepository(db),
		Goals:       NewGoalRepository(db),
		ActionPlans: NewActionPlanRepository(db),
		Tasks:       NewTaskRepository(db),
		Progress:    NewProgressRepository(db),
		Timetables:  NewTimetableRepository(db),
		MyDays:      NewMyDayRepository(db),
	}
}

type baseRepository struct {
	exec core.DBExecutor
}

func (repo baseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// get returns sql.ErrNoRows as is; any other failure is a *core.StoreError.
func (repo baseRepository) get(ctx context.Context, exec []core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	e := repo.getExec(exec)
	err := e.GetContext(ctx, dest, e.Rebind(query), args...)
	if err == sql.ErrNoRows {
		return err
	}
	return core.NewStoreError(statement(query), err)
}

func (repo baseRepository) selectRows(ctx context.Context, exec []core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	e := repo.getExec(exec)
	return core.NewStoreError(statement(query), e.SelectContext(ctx, dest, e.Rebind(query), args...))
}

func (repo baseRepository) execute(ctx context.Context, exec []core.DBExecutor, query string, args ...interface{}) (sql.Result, error) {
	e := repo.getExec(exec)
	res, err := e.ExecContext(ctx, e.Rebind(query), args...)
	return res, core.NewStoreError(statement(query), err)
}

// statement returns the lower-cased leading keyword of query ("select", "insert", ...).
func statement(query string) string {
	if fields := strings.Fields(query); len(fields) > 0 {
		return strings.ToLower(fields[0])
	}
	return "query"
}

// trapNoRowsErr maps "no rows" errors to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func orderBy(orderings ...core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		clauses = append(clauses, ord.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

var byCreation = orderBy(core.DBOrdering{Field: "created_at", Ascending: true}, core.DBOrdering{Field: "id", Ascending: true})

// JSON columns are stored as TEXT so the schema runs unchanged on both engines.
func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encoding json column")
	}
	return string(b), nil
}

func unmarshalJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	return errors.Wrap(json.Unmarshal([]byte(data), v), "decoding json column")
}
