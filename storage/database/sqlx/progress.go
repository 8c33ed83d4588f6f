package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/progress"
)

const progressColumns = "student_id, goal_id, percentage, total_tasks, completed_tasks, updated_at"

type progressRow struct {
	StudentID      string    `db:"student_id"`
	GoalID         string    `db:"goal_id"`
	Percentage     int       `db:"percentage"`
	TotalTasks     int       `db:"total_tasks"`
	CompletedTasks int       `db:"completed_tasks"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type ProgressRepository struct {
	baseRepository
}

var _ progress.Repository = (*ProgressRepository)(nil)

func NewProgressRepository(exec core.DBExecutor) *ProgressRepository {
	return &ProgressRepository{baseRepository{exec: exec}}
}

func (repo ProgressRepository) unboil(row progressRow) progress.Progress {
	return progress.Progress{
		StudentID:  core.StudentID(row.StudentID),
		GoalID:     core.GoalID(row.GoalID),
		Percentage: row.Percentage,
		Total:      row.TotalTasks,
		Completed:  row.CompletedTasks,
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func (repo ProgressRepository) UpsertProgress(ctx context.Context, p progress.Progress, exec ...core.DBExecutor) (progress.Progress, error) {
	p.UpdatedAt = p.UpdatedAt.UTC()
	_, err := repo.execute(ctx, exec,
		"INSERT INTO progress ("+progressColumns+") VALUES (?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT (student_id, goal_id) DO UPDATE SET "+
			"percentage = excluded.percentage, total_tasks = excluded.total_tasks, "+
			"completed_tasks = excluded.completed_tasks, updated_at = excluded.updated_at",
		string(p.StudentID), string(p.GoalID), p.Percentage, p.Total, p.Completed, p.UpdatedAt)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return p, nil
}

func (repo ProgressRepository) GetProgress(ctx context.Context, studentID core.StudentID, goalID core.GoalID, exec ...core.DBExecutor) (progress.Progress, error) {
	var row progressRow
	err := repo.get(ctx, exec, &row,
		"SELECT "+progressColumns+" FROM progress WHERE student_id = ? AND goal_id = ?", string(studentID), string(goalID))
	if err != nil {
		return progress.Progress{}, trapNoRowsErr(err, progress.ErrNotFound, "selecting progress")
	}
	return repo.unboil(row), nil
}

func (repo ProgressRepository) QueryProgress(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) ([]progress.Progress, error) {
	var rows []progressRow
	err := repo.selectRows(ctx, exec, &rows,
		"SELECT "+progressColumns+" FROM progress WHERE student_id = ?"+orderBy(core.DBOrdering{Field: "goal_id", Ascending: true}),
		string(studentID))
	if err != nil {
		return nil, errors.Wrap(err, "selecting progress")
	}
	records := make([]progress.Progress, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.unboil(row))
	}
	return records, nil
}

func (repo ProgressRepository) DeleteProgress(ctx context.Context, studentID core.StudentID, goalID core.GoalID, exec ...core.DBExecutor) error {
	_, err := repo.execute(ctx, exec, "DELETE FROM progress WHERE student_id = ? AND goal_id = ?", string(studentID), string(goalID))
	return errors.Wrap(err, "deleting progress")
}
