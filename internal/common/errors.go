// Package common provides shared error kinds and logging helpers used across the application.
package common

import (
	"errors"
	"fmt"
)

// Pipeline error kinds. Match with errors.Is.
var (
	// ErrLoad means the work-order export could not be read.
	ErrLoad = errors.New("load failed")
	// ErrFilter means a filter stage produced an unexpected table shape.
	ErrFilter = errors.New("filter failed")
	// ErrAggregation means no billable actions were found for the period.
	ErrAggregation = errors.New("aggregation failed")
	// ErrWrite means the report file could not be written.
	ErrWrite = errors.New("write failed")
	// ErrNotification means the report was written but could not be delivered.
	ErrNotification = errors.New("notification failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StageError is a pipeline failure tagged with the kind of stage that failed.
type StageError struct {
	Kind    error
	Err     error
	Message string
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewLoadError wraps an input loading failure.
func NewLoadError(message string, err error) error {
	return &StageError{Kind: ErrLoad, Message: message, Err: err}
}

// NewFilterError wraps a filter stage failure.
func NewFilterError(message string, err error) error {
	return &StageError{Kind: ErrFilter, Message: message, Err: err}
}

// NewAggregationError reports an empty or unusable aggregation.
func NewAggregationError(message string) error {
	return &StageError{Kind: ErrAggregation, Message: message}
}

// NewWriteError wraps an output file failure.
func NewWriteError(message string, err error) error {
	return &StageError{Kind: ErrWrite, Message: message, Err: err}
}

// NewNotificationError wraps a delivery failure.
func NewNotificationError(message string, err error) error {
	return &StageError{Kind: ErrNotification, Message: message, Err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Describe returns the operator-facing message for err: the innermost
// UserError message when present, else the error text.
func Describe(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
