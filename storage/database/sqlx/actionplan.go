package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/actionplan"
	"github.com/trezcool/studytrack/core/task"
)

const actionPlanColumns = "id, student_id, goal_id, title, steps, status, created_at, updated_at"

type actionPlanRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	GoalID    string    `db:"goal_id"`
	Title     string    `db:"title"`
	Steps     string    `db:"steps"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ActionPlanRepository struct {
	baseRepository
}

var (
	_ actionplan.Repository = (*ActionPlanRepository)(nil)
	_ task.StepMirror       = (*ActionPlanRepository)(nil)
)

func NewActionPlanRepository(exec core.DBExecutor) *ActionPlanRepository {
	return &ActionPlanRepository{baseRepository{exec: exec}}
}

func (repo ActionPlanRepository) boil(p actionplan.ActionPlan) (actionPlanRow, error) {
	steps := p.Steps
	if steps == nil {
		steps = []actionplan.Step{}
	}
	data, err := marshalJSON(steps)
	if err != nil {
		return actionPlanRow{}, err
	}
	return actionPlanRow{
		ID:        string(p.ID),
		StudentID: string(p.StudentID),
		GoalID:    string(p.GoalID),
		Title:     p.Title,
		Steps:     data,
		Status:    p.Status,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}, nil
}

func (repo ActionPlanRepository) unboil(row actionPlanRow) (actionplan.ActionPlan, error) {
	p := actionplan.ActionPlan{
		ID:        core.ActionPlanID(row.ID),
		StudentID: core.StudentID(row.StudentID),
		GoalID:    core.GoalID(row.GoalID),
		Title:     row.Title,
		Steps:     []actionplan.Step{},
		Status:    row.Status,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := unmarshalJSON(row.Steps, &p.Steps); err != nil {
		return actionplan.ActionPlan{}, err
	}
	return p, nil
}

func (repo ActionPlanRepository) CreateActionPlan(ctx context.Context, p actionplan.ActionPlan, exec ...core.DBExecutor) (actionplan.ActionPlan, error) {
	if p.ID == "" {
		p.ID = core.ActionPlanID(core.NewID())
	}
	row, err := repo.boil(p)
	if err != nil {
		return actionplan.ActionPlan{}, err
	}
	_, err = repo.execute(ctx, exec,
		"INSERT INTO action_plans ("+actionPlanColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		row.ID, row.StudentID, row.GoalID, row.Title, row.Steps, row.Status, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return actionplan.ActionPlan{}, errors.Wrap(err, "inserting action plan")
	}
	return repo.unboil(row)
}

func (repo ActionPlanRepository) QueryActionPlans(ctx context.Context, studentID core.StudentID, filter actionplan.QueryFilter, exec ...core.DBExecutor) ([]actionplan.ActionPlan, error) {
	query := "SELECT " + actionPlanColumns + " FROM action_plans WHERE student_id = ?"
	args := []interface{}{string(studentID)}
	if filter.GoalID != "" {
		query += " AND goal_id = ?"
		args = append(args, string(filter.GoalID))
	}

	var rows []actionPlanRow
	if err := repo.selectRows(ctx, exec, &rows, query+byCreation, args...); err != nil {
		return nil, errors.Wrap(err, "selecting action plans")
	}
	plans := make([]actionplan.ActionPlan, 0, len(rows))
	for _, row := range rows {
		p, err := repo.unboil(row)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (repo ActionPlanRepository) GetActionPlan(ctx context.Context, studentID core.StudentID, id core.ActionPlanID, exec ...core.DBExecutor) (actionplan.ActionPlan, error) {
	var row actionPlanRow
	err := repo.get(ctx, exec, &row, "SELECT "+actionPlanColumns+" FROM action_plans WHERE id = ? AND student_id = ?", string(id), string(studentID))
	if err != nil {
		return actionplan.ActionPlan{}, trapNoRowsErr(err, actionplan.ErrNotFound, "selecting action plan")
	}
	return repo.unboil(row)
}

func (repo ActionPlanRepository) UpdateActionPlan(ctx context.Context, p actionplan.ActionPlan, exec ...core.DBExecutor) (actionplan.ActionPlan, error) {
	row, err := repo.boil(p)
	if err != nil {
		return actionplan.ActionPlan{}, err
	}
	res, err := repo.execute(ctx, exec,
		"UPDATE action_plans SET title = ?, steps = ?, status = ?, updated_at = ? WHERE id = ? AND student_id = ?",
		row.Title, row.Steps, row.Status, row.UpdatedAt, row.ID, row.StudentID)
	if err != nil {
		return actionplan.ActionPlan{}, errors.Wrap(err, "updating action plan")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return actionplan.ActionPlan{}, actionplan.ErrNotFound
	}
	return repo.GetActionPlan(ctx, p.StudentID, p.ID, exec...)
}

func (repo ActionPlanRepository) DeleteActionPlan(ctx context.Context, studentID core.StudentID, id core.ActionPlanID, exec ...core.DBExecutor) error {
	_, err := repo.execute(ctx, exec, "DELETE FROM action_plans WHERE id = ? AND student_id = ?", string(id), string(studentID))
	return errors.Wrap(err, "deleting action plan")
}

// SetStepDone rewrites the steps column; callers run it inside the transaction that updated the task.
func (repo ActionPlanRepository) SetStepDone(ctx context.Context, planID core.ActionPlanID, stepIndex int, isDone bool, exec ...core.DBExecutor) error {
	var row actionPlanRow
	err := repo.get(ctx, exec, &row, "SELECT "+actionPlanColumns+" FROM action_plans WHERE id = ?", string(planID))
	if err != nil {
		return trapNoRowsErr(err, actionplan.ErrNotFound, "selecting action plan")
	}
	p, err := repo.unboil(row)
	if err != nil {
		return err
	}
	if stepIndex < 0 || stepIndex >= len(p.Steps) {
		return actionplan.ErrNotFound
	}
	if p.Steps[stepIndex].IsDone == isDone {
		return nil
	}

	p.Steps[stepIndex].IsDone = isDone
	p.UpdatedAt = time.Now().UTC()
	_, err = repo.UpdateActionPlan(ctx, p, exec...)
	return err
}
