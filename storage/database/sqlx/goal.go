package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/goal"
	"github.com/trezcool/studytrack/core/progress"
)

const goalColumns = "id, student_id, title, type, start_date, end_date, status, created_at, updated_at"

type goalRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	Title     string      `db:"title"`
	Type      string      `db:"type"`
	StartDate null.String `db:"start_date"`
	EndDate   null.String `db:"end_date"`
	Status    string      `db:"status"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type GoalRepository struct {
	baseRepository
}

var (
	_ goal.Repository     = (*GoalRepository)(nil)
	_ progress.GoalLookup = (*GoalRepository)(nil)
)

func NewGoalRepository(exec core.DBExecutor) *GoalRepository {
	return &GoalRepository{baseRepository{exec: exec}}
}

func (repo GoalRepository) boil(g goal.Goal) goalRow {
	return goalRow{
		ID:        string(g.ID),
		StudentID: string(g.StudentID),
		Title:     g.Title,
		Type:      string(g.Type),
		StartDate: null.NewString(g.StartDate, g.StartDate != ""),
		EndDate:   null.NewString(g.EndDate, g.EndDate != ""),
		Status:    g.Status,
		CreatedAt: g.CreatedAt.UTC(),
		UpdatedAt: g.UpdatedAt.UTC(),
	}
}

func (repo GoalRepository) unboil(row goalRow) goal.Goal {
	return goal.Goal{
		ID:        core.GoalID(row.ID),
		StudentID: core.StudentID(row.StudentID),
		Title:     row.Title,
		Type:      goal.Type(row.Type),
		StartDate: row.StartDate.String,
		EndDate:   row.EndDate.String,
		Status:    row.Status,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func (repo GoalRepository) CreateGoal(ctx context.Context, g goal.Goal, exec ...core.DBExecutor) (goal.Goal, error) {
	if g.ID == "" {
		g.ID = core.GoalID(core.NewID())
	}
	row := repo.boil(g)
	_, err := repo.execute(ctx, exec,
		"INSERT INTO goals ("+goalColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		row.ID, row.StudentID, row.Title, row.Type, row.StartDate, row.EndDate, row.Status, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return goal.Goal{}, errors.Wrap(err, "inserting goal")
	}
	return repo.unboil(row), nil
}

func (repo GoalRepository) QueryGoals(ctx context.Context, studentID core.StudentID, filter goal.QueryFilter, exec ...core.DBExecutor) ([]goal.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE student_id = ?"
	args := []interface{}{string(studentID)}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}

	var rows []goalRow
	if err := repo.selectRows(ctx, exec, &rows, query+byCreation, args...); err != nil {
		return nil, errors.Wrap(err, "selecting goals")
	}
	goals := make([]goal.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, repo.unboil(row))
	}
	return goals, nil
}

func (repo GoalRepository) GetGoal(ctx context.Context, studentID core.StudentID, id core.GoalID, exec ...core.DBExecutor) (goal.Goal, error) {
	var row goalRow
	err := repo.get(ctx, exec, &row, "SELECT "+goalColumns+" FROM goals WHERE id = ? AND student_id = ?", string(id), string(studentID))
	if err != nil {
		return goal.Goal{}, trapNoRowsErr(err, goal.ErrNotFound, "selecting goal")
	}
	return repo.unboil(row), nil
}

func (repo GoalRepository) UpdateGoal(ctx context.Context, g goal.Goal, exec ...core.DBExecutor) (goal.Goal, error) {
	row := repo.boil(g)
	res, err := repo.execute(ctx, exec,
		"UPDATE goals SET title = ?, type = ?, start_date = ?, end_date = ?, status = ?, updated_at = ? WHERE id = ? AND student_id = ?",
		row.Title, row.Type, row.StartDate, row.EndDate, row.Status, row.UpdatedAt, row.ID, row.StudentID)
	if err != nil {
		return goal.Goal{}, errors.Wrap(err, "updating goal")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goal.Goal{}, goal.ErrNotFound
	}
	return repo.GetGoal(ctx, g.StudentID, g.ID, exec...)
}

func (repo GoalRepository) DeleteGoal(ctx context.Context, studentID core.StudentID, id core.GoalID, exec ...core.DBExecutor) error {
	_, err := repo.execute(ctx, exec, "DELETE FROM goals WHERE id = ? AND student_id = ?", string(id), string(studentID))
	return errors.Wrap(err, "deleting goal")
}

func (repo GoalRepository) GoalExists(ctx context.Context, studentID core.StudentID, id core.GoalID, exec ...core.DBExecutor) (bool, error) {
	var count int
	err := repo.get(ctx, exec, &count, "SELECT COUNT(*) FROM goals WHERE id = ? AND student_id = ?", string(id), string(studentID))
	if err != nil {
		return false, errors.Wrap(err, "checking goal")
	}
	return count > 0, nil
}

func (repo GoalRepository) QueryGoalIDs(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) ([]core.GoalID, error) {
	var ids []string
	if err := repo.selectRows(ctx, exec, &ids, "SELECT id FROM goals WHERE student_id = ?"+byCreation, string(studentID)); err != nil {
		return nil, errors.Wrap(err, "selecting goal ids")
	}
	goalIDs := make([]core.GoalID, 0, len(ids))
	for _, id := range ids {
		goalIDs = append(goalIDs, core.GoalID(id))
	}
	return goalIDs, nil
}
