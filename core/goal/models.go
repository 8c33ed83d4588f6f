package goal

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studytrack/core"
)

// Type is the closed set of goal kinds.
type Type string

const (
	TypeSkill     Type = "skill"
	TypeExam      Type = "exam"
	TypeAcademic  Type = "academic"
	TypeLongTerm  Type = "longterm"
	TypeMidTerm   Type = "midterm"
	TypeShortTerm Type = "shortterm"
)

var Types = []Type{TypeSkill, TypeExam, TypeAcademic, TypeLongTerm, TypeMidTerm, TypeShortTerm}

func (t Type) Valid() bool {
	for _, typ := range Types {
		if t == typ {
			return true
		}
	}
	return false
}

const DefaultStatus = "ongoing"

type Goal struct {
	ID        core.GoalID    `json:"id"`
	StudentID core.StudentID `json:"student_id"`
	Title     string         `json:"title"`
	Type      Type           `json:"type"`
	StartDate string         `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   string         `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"` // UTC
	UpdatedAt time.Time      `json:"updated_at"` // UTC
}

type NewGoal struct {
	Title     string `json:"title" validate:"required,notblank"`
	Type      string `json:"type" validate:"required,goaltype"`
	StartDate string `json:"start_date" validate:"date"`
	EndDate   string `json:"end_date" validate:"date"`
	Status    string `json:"status"`
}

func (ng *NewGoal) Validate(validate *validator.Validate) error {
	ng.Title = core.CleanString(ng.Title)
	ng.Type = core.CleanString(ng.Type, true /* lower */)
	ng.StartDate = core.CleanString(ng.StartDate)
	ng.EndDate = core.CleanString(ng.EndDate)
	ng.Status = core.CleanString(ng.Status)
	return validate.Struct(ng)
}

// UpdateGoal holds a partial update; empty strings keep the current data.
type UpdateGoal struct {
	Title     string `json:"title"`
	Type      string `json:"type" validate:"omitempty,goaltype"`
	StartDate string `json:"start_date" validate:"date"`
	EndDate   string `json:"end_date" validate:"date"`
	Status    string `json:"status"`
}

func (ug *UpdateGoal) Validate(validate *validator.Validate) error {
	ug.Title = core.CleanString(ug.Title)
	ug.Type = core.CleanString(ug.Type, true /* lower */)
	ug.StartDate = core.CleanString(ug.StartDate)
	ug.EndDate = core.CleanString(ug.EndDate)
	ug.Status = core.CleanString(ug.Status)
	return validate.Struct(ug)
}

type QueryFilter struct {
	Type Type `query:"type"`
}

func (qf *QueryFilter) Clean() {
	qf.Type = Type(core.CleanString(string(qf.Type), true /* lower */))
}

var (
	goalTypeTag  = "goaltype"
	goalTypeText = "must be one of: skill, exam, academic, longterm, midterm, shortterm"
)

// InitValidators registers the goal validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(goalTypeTag, goalTypeValidation)
	core.RegisterCustomTranslation(validate, translator, goalTypeTag, goalTypeText)
}

func goalTypeValidation(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).Valid()
}
