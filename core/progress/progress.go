// Package progress keeps the cached completion percentage of every (student, goal) pair
// consistent with the tasks linked to the goal.
package progress

import (
	"context"
	"time"

	"github.com/trezcool/studytrack/core"
)

// Progress is derived data: it can always be rebuilt from the task counts of its goal.
type Progress struct {
	StudentID  core.StudentID `json:"student_id"`
	GoalID     core.GoalID    `json:"goal_id"`
	Percentage int            `json:"percentage"` // 0 - 100
	Total      int            `json:"total_tasks"`
	Completed  int            `json:"completed_tasks"`
	UpdatedAt  time.Time      `json:"updated_at"` // UTC
}

type (
	Repository interface {
		// UpsertProgress creates or replaces the record keyed by (StudentID, GoalID).
		UpsertProgress(ctx context.Context, p Progress, exec ...core.DBExecutor) (Progress, error)
		GetProgress(ctx context.Context, studentID core.StudentID, goalID core.GoalID, exec ...core.DBExecutor) (Progress, error)
		QueryProgress(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) ([]Progress, error)
		DeleteProgress(ctx context.Context, studentID core.StudentID, goalID core.GoalID, exec ...core.DBExecutor) error
	}

	// TaskCounter counts the tasks referencing a goal.
	TaskCounter interface {
		CountTasksByGoal(ctx context.Context, goalID core.GoalID, exec ...core.DBExecutor) (total, completed int, err error)
	}

	// GoalLookup resolves goal references before they are dereferenced.
	GoalLookup interface {
		GoalExists(ctx context.Context, studentID core.StudentID, goalID core.GoalID, exec ...core.DBExecutor) (bool, error)
		QueryGoalIDs(ctx context.Context, studentID core.StudentID, exec ...core.DBExecutor) ([]core.GoalID, error)
	}
)

// ErrNotFound is returned by repositories when no progress was recorded yet.
var ErrNotFound = core.NewNotFoundError("progress", "")

// Percentage is round(100 * completed / total), half away from zero; 0 when there are no tasks.
func Percentage(completed, total int) int {
	return core.Percent(float64(completed), float64(total))
}
