package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a client error: bad or missing input, nothing was written.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError reports that a referenced record does not resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (err NotFoundError) Error() string {
	if err.ID == "" {
		return err.Entity + " not found"
	}
	return fmt.Sprintf("%s %q not found", err.Entity, err.ID)
}

// ConflictError reports the violation of a uniqueness rule.
type ConflictError struct {
	Field   string
	Message string
}

func NewConflictError(field, msg string) error {
	return &ConflictError{Field: field, Message: msg}
}

func (err ConflictError) Error() string { return err.Message }

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (err StoreError) Error() string { return err.Op + ": " + err.Err.Error() }

func (err StoreError) Unwrap() error { return err.Err }

// SyncError reports that a mutation was persisted but the derived progress
// of the goal could not be refreshed. Callers keep the mutated record.
type SyncError struct {
	StudentID StudentID
	GoalID    GoalID
	Err       error
}

func (err SyncError) Error() string {
	if err.GoalID == "" {
		return fmt.Sprintf("syncing progress: %v", err.Err)
	}
	return fmt.Sprintf("syncing progress of goal %q: %v", err.GoalID, err.Err)
}

func (err SyncError) Unwrap() error { return err.Err }

// AsSyncError reports whether the cause of err is a *SyncError.
func AsSyncError(err error) (*SyncError, bool) {
	serr, ok := errors.Cause(err).(*SyncError)
	return serr, ok
}

// IsNotFound reports whether the cause of err is a *NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
