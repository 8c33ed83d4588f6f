package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studytrack/core"
	"github.com/trezcool/studytrack/core/progress"
	"github.com/trezcool/studytrack/core/task"
)

const taskColumns = "id, student_id, goal_id, action_plan_id, step_index, subject_id, study_date, title, due_date, is_completed, created_at, updated_at"

type taskRow struct {
	ID           string      `db:"id"`
	StudentID    string      `db:"student_id"`
	GoalID       null.String `db:"goal_id"`
	ActionPlanID null.String `db:"action_plan_id"`
	StepIndex    null.Int    `db:"step_index"`
	SubjectID    null.String `db:"subject_id"`
	StudyDate    null.String `db:"study_date"`
	Title        string      `db:"title"`
	DueDate      null.String `db:"due_date"`
	IsCompleted  bool        `db:"is_completed"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row taskRow) args() []interface{} {
	return []interface{}{
		row.ID, row.StudentID, row.GoalID, row.ActionPlanID, row.StepIndex, row.SubjectID,
		row.StudyDate, row.Title, row.DueDate, row.IsCompleted, row.CreatedAt, row.UpdatedAt,
	}
}

type TaskRepository struct {
	baseRepository
}

var (
	_ task.Repository      = (*TaskRepository)(nil)
	_ progress.TaskCounter = (*TaskRepository)(nil)
)

func NewTaskRepository(exec core.DBExecutor) *TaskRepository {
	return &TaskRepository{baseRepository{exec: exec}}
}

func nullID(id *string) null.String {
	if id == nil || *id == "" {
		return null.String{}
	}
	return null.StringFrom(*id)
}

func (repo TaskRepository) boil(t task.Task) taskRow {
	row := taskRow{
		ID:          string(t.ID),
		StudentID:   string(t.StudentID),
		StepIndex:   null.IntFromPtr(t.StepIndex),
		StudyDate:   null.NewString(t.StudyDate, t.StudyDate != ""),
		Title:       t.Title,
		DueDate:     null.NewString(t.DueDate, t.DueDate != ""),
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	if t.GoalID != nil {
		row.GoalID = nullID((*string)(t.GoalID))
	}
	if t.ActionPlanID != nil {
		row.ActionPlanID = nullID((*string)(t.ActionPlanID))
	}
	if t.SubjectID != nil {
		row.SubjectID = nullID((*string)(t.SubjectID))
	}
	return row
}

func (repo TaskRepository) unboil(row taskRow) task.Task {
	t := task.Task{
		ID:          core.TaskID(row.ID),
		StudentID:   core.StudentID(row.StudentID),
		StepIndex:   row.StepIndex.Ptr(),
		StudyDate:   row.StudyDate.String,
		Title:       row.Title,
		DueDate:     row.DueDate.String,
		IsCompleted: row.IsCompleted,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.GoalID.Valid {
		id := core.GoalID(row.GoalID.String)
		t.GoalID = &id
	}
	if row.ActionPlanID.Valid {
		id := core.ActionPlanID(row.ActionPlanID.String)
		t.ActionPlanID = &id
	}
	if row.SubjectID.Valid {
		id := core.SubjectID(row.SubjectID.String)
		t.SubjectID = &id
	}
	return t
}

func (repo TaskRepository) unboilSlice(rows []taskRow) []task.Task {
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, repo.unboil(row))
	}
	return tasks
}

func (repo TaskRepository) CreateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	if t.ID == "" {
		t.ID = core.TaskID(core.NewID())
	}
	row := repo.boil(t)
	_, err := repo.execute(ctx, exec, "INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", row.args()...)
	if err != nil {
		if isUniqueViolation(err) {
			return task.Task{}, core.NewConflictError("task", "a task already exists for this key")
		}
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return repo.unboil(row), nil
}

// CreateTaskIfAbsent relies on the unique indexes of the generation keys:
// the insert is a no-op on conflict and the existing row is returned instead.
func (repo TaskRepository) CreateTaskIfAbsent(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, bool, error) {
	if t.ID == "" {
		t.ID = core.TaskID(core.NewID())
	}
	row := repo.boil(t)
	res, err := repo.execute(ctx, exec,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING", row.args()...)
	if err != nil {
		return task.Task{}, false, errors.Wrap(err, "inserting task")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return repo.unboil(row), true, nil
	}

	var existing taskRow
	switch {
	case row.ActionPlanID.Valid && row.StepIndex.Valid:
		err = repo.get(ctx, exec, &existing,
			"SELECT "+taskColumns+" FROM tasks WHERE action_plan_id = ? AND step_index = ?", row.ActionPlanID, row.StepIndex)
	case row.SubjectID.Valid && row.StudyDate.Valid:
		err = repo.get(ctx, exec, &existing,
			"SELECT "+taskColumns+" FROM tasks WHERE student_id = ? AND subject_id = ? AND study_date = ?",
			row.StudentID, row.SubjectID, row.StudyDate)
	default:
		err = repo.get(ctx, exec, &existing, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", row.ID)
	}
	if err != nil {
		return task.Task{}, false, errors.Wrap(err, "selecting existing task")
	}
	return repo.unboil(existing), false, nil
}

func (repo TaskRepository) QueryTasks(ctx context.Context, studentID core.StudentID, filter task.QueryFilter, exec ...core.DBExecutor) ([]task.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE student_id = ?"
	args := []interface{}{string(studentID)}
	if filter.GoalID != "" {
		query += " AND goal_id = ?"
		args = append(args, string(filter.GoalID))
	}
	if filter.ActionPlanID != "" {
		query += " AND action_plan_id = ?"
		args = append(args, string(filter.ActionPlanID))
	}
	if filter.SubjectID != "" {
		query += " AND subject_id = ?"
		args = append(args, string(filter.SubjectID))
	}
	if filter.StudyDate != "" {
		query += " AND study_date = ?"
		args = append(args, filter.StudyDate)
	}
	if filter.IsCompleted != nil {
		query += " AND is_completed = ?"
		args = append(args, *filter.IsCompleted)
	}
	query += orderBy(
		core.DBOrdering{Field: "created_at", Ascending: true},
		core.DBOrdering{Field: "step_index", Ascending: true},
		core.DBOrdering{Field: "id", Ascending: true},
	)

	var rows []taskRow
	if err := repo.selectRows(ctx, exec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting tasks")
	}
	return repo.unboilSlice(rows), nil
}

func (repo TaskRepository) GetTask(ctx context.Context, studentID core.StudentID, id core.TaskID, exec ...core.DBExecutor) (task.Task, error) {
	var row taskRow
	err := repo.get(ctx, exec, &row, "SELECT "+taskColumns+" FROM tasks WHERE id = ? AND student_id = ?", string(id), string(studentID))
	if err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound, "selecting task")
	}
	return repo.unboil(row), nil
}

func (repo TaskRepository) UpdateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	row := repo.boil(t)
	res, err := repo.execute(ctx, exec,
		"UPDATE tasks SET goal_id = ?, title = ?, due_date = ?, is_completed = ?, updated_at = ? WHERE id = ? AND student_id = ?",
		row.GoalID, row.Title, row.DueDate, row.IsCompleted, row.UpdatedAt, row.ID, row.StudentID)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return repo.GetTask(ctx, t.StudentID, t.ID, exec...)
}

func (repo TaskRepository) DeleteTask(ctx context.Context, studentID core.StudentID, id core.TaskID, exec ...core.DBExecutor) error {
	_, err := repo.execute(ctx, exec, "DELETE FROM tasks WHERE id = ? AND student_id = ?", string(id), string(studentID))
	return errors.Wrap(err, "deleting task")
}

func (repo TaskRepository) DeleteTasksByActionPlan(ctx context.Context, planID core.ActionPlanID, exec ...core.DBExecutor) (int, error) {
	res, err := repo.execute(ctx, exec, "DELETE FROM tasks WHERE action_plan_id = ?", string(planID))
	if err != nil {
		return 0, errors.Wrap(err, "deleting action plan tasks")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting deleted tasks")
}

type taskCounts struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
}

const countTasks = "SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed FROM tasks"

func (repo TaskRepository) CountTasksByGoal(ctx context.Context, goalID core.GoalID, exec ...core.DBExecutor) (total, completed int, err error) {
	var counts taskCounts
	if err = repo.get(ctx, exec, &counts, countTasks+" WHERE goal_id = ?", string(goalID)); err != nil {
		return 0, 0, errors.Wrap(err, "counting tasks")
	}
	return counts.Total, counts.Completed, nil
}

func (repo TaskRepository) CountTasksByStudent(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) (total, completed int, err error) {
	var counts taskCounts
	if err = repo.get(ctx, exec, &counts, countTasks+" WHERE student_id = ?", string(studentID)); err != nil {
		return 0, 0, errors.Wrap(err, "counting tasks")
	}
	return counts.Total, counts.Completed, nil
}
