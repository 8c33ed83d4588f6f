package actionplan

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studytrack/core"
)

const DefaultStatus = "active"

// Step is one checklist item; TaskID points at the task generated for it.
type Step struct {
	ID     core.StepID  `json:"id"`
	Title  string       `json:"title"`
	IsDone bool         `json:"is_done"`
	TaskID *core.TaskID `json:"task_id"`
}

type ActionPlan struct {
	ID        core.ActionPlanID `json:"id"`
	StudentID core.StudentID    `json:"student_id"`
	GoalID    core.GoalID       `json:"goal_id"`
	Title     string            `json:"title"`
	Steps     []Step            `json:"steps"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"` // UTC
	UpdatedAt time.Time         `json:"updated_at"` // UTC
}

// StepIndex returns the position of the step, or -1.
func (p ActionPlan) StepIndex(id core.StepID) int {
	for i, s := range p.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

type NewActionPlan struct {
	GoalID string   `json:"goal_id" validate:"required,notblank"`
	Title  string   `json:"title"`
	Steps  []string `json:"steps" validate:"required,min=1,dive,notblank"`
	Status string   `json:"status"`
}

func (np *NewActionPlan) Validate(validate *validator.Validate) error {
	np.GoalID = core.CleanString(np.GoalID)
	np.Title = core.CleanString(np.Title)
	np.Status = core.CleanString(np.Status)
	for i := range np.Steps {
		np.Steps[i] = core.CleanString(np.Steps[i])
	}
	return validate.Struct(np)
}

// check enforces the input rules without a validator, before anything is written.
func (np NewActionPlan) check(studentID core.StudentID) error {
	var flds []core.FieldError
	if studentID == "" {
		flds = append(flds, core.FieldError{Field: "student_id", Error: "this field is required"})
	}
	if core.CleanString(np.GoalID) == "" {
		flds = append(flds, core.FieldError{Field: "goal_id", Error: "this field is required"})
	}
	if len(np.Steps) == 0 {
		flds = append(flds, core.FieldError{Field: "steps", Error: "at least one step is required"})
	}
	for _, s := range np.Steps {
		if core.CleanString(s) == "" {
			flds = append(flds, core.FieldError{Field: "steps", Error: "step titles cannot be blank"})
			break
		}
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

type UpdateActionPlan struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

func (up *UpdateActionPlan) Validate(validate *validator.Validate) error {
	up.Title = core.CleanString(up.Title)
	up.Status = core.CleanString(up.Status)
	return validate.Struct(up)
}

type NewStep struct {
	Title string `json:"title" validate:"required,notblank"`
}

func (ns *NewStep) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	return validate.Struct(ns)
}

type ToggleStep struct {
	IsDone *bool `json:"is_done" validate:"required"`
}

func (ts *ToggleStep) Validate(validate *validator.Validate) error {
	return validate.Struct(ts)
}

type QueryFilter struct {
	GoalID core.GoalID `query:"goal_id"`
}
