package core

import "github.com/google/uuid"

// Typed record identifiers. All are opaque UUID strings.
type (
	StudentID    string
	SubjectID    string
	GoalID       string
	ActionPlanID string
	StepID       string
	TaskID       string
	TimetableID  string
	MyDayID      string
)

// NewID returns a new random identifier.
func NewID() string {
	return uuid.New().String()
}

// ValidID reports whether id looks like an identifier issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
