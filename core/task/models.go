package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studytrack/core"
)

// Task is the atomic unit of work; its completion drives goal progress.
type Task struct {
	ID           core.TaskID        `json:"id"`
	StudentID    core.StudentID     `json:"student_id"`
	GoalID       *core.GoalID       `json:"goal_id"`
	ActionPlanID *core.ActionPlanID `json:"action_plan_id"`
	StepIndex    *int               `json:"step_index,omitempty"`
	SubjectID    *core.SubjectID    `json:"subject_id"`
	StudyDate    string             `json:"study_date,omitempty"` // YYYY-MM-DD, daily study tasks only
	Title        string             `json:"title"`
	DueDate      string             `json:"due_date,omitempty"` // YYYY-MM-DD
	IsCompleted  bool               `json:"is_completed"`
	CreatedAt    time.Time          `json:"created_at"` // UTC
	UpdatedAt    time.Time          `json:"updated_at"` // UTC
}

// Goal returns the referenced goal ID, or "" when the task is not linked to a goal.
func (t Task) Goal() core.GoalID {
	if t.GoalID == nil {
		return ""
	}
	return *t.GoalID
}

// FromStep reports whether the task was generated for an action plan step.
func (t Task) FromStep() bool {
	return t.ActionPlanID != nil && t.StepIndex != nil
}

type NewTask struct {
	Title       string `json:"title" validate:"required,notblank"`
	GoalID      string `json:"goal_id"`
	SubjectID   string `json:"subject_id"`
	DueDate     string `json:"due_date" validate:"date"`
	IsCompleted bool   `json:"is_completed"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.GoalID = core.CleanString(nt.GoalID)
	nt.SubjectID = core.CleanString(nt.SubjectID)
	nt.DueDate = core.CleanString(nt.DueDate)
	return validate.Struct(nt)
}

// UpdateTask holds a partial update.
// GoalID: nil keeps the current goal, "" unlinks it, anything else moves the task.
type UpdateTask struct {
	Title       string  `json:"title"`
	GoalID      *string `json:"goal_id"`
	DueDate     string  `json:"due_date" validate:"date"`
	IsCompleted *bool   `json:"is_completed"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	if ut.GoalID != nil {
		id := core.CleanString(*ut.GoalID)
		ut.GoalID = &id
	}
	ut.DueDate = core.CleanString(ut.DueDate)
	return validate.Struct(ut)
}

type QueryFilter struct {
	GoalID       core.GoalID       `query:"goal_id"`
	ActionPlanID core.ActionPlanID `query:"action_plan_id"`
	SubjectID    core.SubjectID    `query:"subject_id"`
	StudyDate    string            `query:"study_date"`
	IsCompleted  *bool             `query:"is_completed"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.GoalID == "" && qf.ActionPlanID == "" && qf.SubjectID == "" && qf.StudyDate == "" && qf.IsCompleted == nil
}

// Match reports whether t satisfies every set field of the filter.
func (qf *QueryFilter) Match(t Task) bool {
	if qf.GoalID != "" && t.Goal() != qf.GoalID {
		return false
	}
	if qf.ActionPlanID != "" && (t.ActionPlanID == nil || *t.ActionPlanID != qf.ActionPlanID) {
		return false
	}
	if qf.SubjectID != "" && (t.SubjectID == nil || *t.SubjectID != qf.SubjectID) {
		return false
	}
	if qf.StudyDate != "" && t.StudyDate != qf.StudyDate {
		return false
	}
	if qf.IsCompleted != nil && t.IsCompleted != *qf.IsCompleted {
		return false
	}
	return true
}
