// utils/errors.go - Workflow error taxonomy
package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a workflow failure so controllers can map it to
// an HTTP status without string matching.
type ErrorKind string

const (
	KindNotAuthenticated ErrorKind = "not_authenticated"
	KindNotFound         ErrorKind = "not_found"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindInvalidState     ErrorKind = "invalid_state"
	KindConflict         ErrorKind = "conflict"
	KindValidation       ErrorKind = "validation_error"
	KindDeadlinePassed   ErrorKind = "deadline_passed"
	KindStore            ErrorKind = "store_error"
)

// WorkflowError is the typed failure every workflow operation returns.
// It never escapes the controller boundary unwrapped.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// NewWorkflowError builds a typed failure with a human-readable message.
func NewWorkflowError(kind ErrorKind, message string) *WorkflowError {
	return &WorkflowError{Kind: kind, Message: message}
}

// WrapStoreError tags an underlying storage failure.
func WrapStoreError(err error) *WorkflowError {
	return &WorkflowError{Kind: KindStore, Message: "Storage operation failed", Err: err}
}

// Common failures shared across controllers.
var (
	ErrNotAuthenticated = NewWorkflowError(KindNotAuthenticated, "Not authenticated")
	ErrUnauthorized     = NewWorkflowError(KindUnauthorized, "Unauthorized")
)

// NotFoundError names the missing entity.
func NotFoundError(entity string) *WorkflowError {
	return NewWorkflowError(KindNotFound, fmt.Sprintf("%s not found", entity))
}

// ConflictError reports a lost write race or duplicate record.
func ConflictError(message string) *WorkflowError {
	return NewWorkflowError(KindConflict, message)
}

// InvalidStateError reports an illegal status transition.
func InvalidStateError(message string) *WorkflowError {
	return NewWorkflowError(KindInvalidState, message)
}

// ValidationError reports malformed input.
func ValidationError(message string) *WorkflowError {
	return NewWorkflowError(KindValidation, message)
}

// DeadlinePassedError reports a temporal precondition failure.
func DeadlinePassedError(message string) *WorkflowError {
	return NewWorkflowError(KindDeadlinePassed, message)
}

// AsWorkflowError extracts a WorkflowError from an error chain.
func AsWorkflowError(err error) (*WorkflowError, bool) {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr, true
	}
	return nil, false
}
