package ux

import (
	"fmt"
	"strings"

	"github.com/runsheethq/runsheet/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError analyzes an error and adds contextual suggestions
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	// Coded errors already render their own suggestions
	if schedErr, ok := err.(*errors.ScheduleError); ok && len(schedErr.Suggestions) > 0 {
		return err
	}

	errMsg := err.Error()

	// File not found errors
	if strings.Contains(errMsg, "no such file or directory") || strings.Contains(errMsg, "not found at") {
		if strings.Contains(errMsg, "runsheet.yaml") {
			return NewErrorWithSuggestion(err,
				"Create a request file by running 'runsheet init'")
		}
		if strings.Contains(errMsg, "schedule.json") {
			return NewErrorWithSuggestion(err,
				"Build a schedule by running 'runsheet schedule'")
		}
		if strings.Contains(errMsg, "config.yaml") {
			return NewErrorWithSuggestion(err,
				"Create a config with 'runsheet config set defaults.format text'")
		}
	}

	// Empty or unusable request data
	if strings.Contains(errMsg, "no usable task data") || strings.Contains(errMsg, "all annotation sources") {
		return NewErrorWithSuggestion(err,
			"Add tasks to your request file, or run 'runsheet init' to start from a template")
	}

	// Working hours problems
	if strings.Contains(errMsg, "working hours") {
		return NewErrorWithSuggestion(err,
			"Working hours must be HH:MM with open before close, e.g. working_hours: {start: \"08:00\", end: \"22:00\"}")
	}

	// Circular dependencies
	if strings.Contains(errMsg, "circular") || strings.Contains(errMsg, "cycle") {
		return NewErrorWithSuggestion(err,
			"Run 'runsheet validate' to list the dependency cycles, then remove one edge from each")
	}

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check file permissions and ensure you have access to the required files/directories")
	}

	// Validation errors
	if strings.Contains(errMsg, "validation failed") || strings.Contains(errMsg, "invalid request") {
		return NewErrorWithSuggestion(err,
			"Fix the validation errors above, then run 'runsheet validate' to verify")
	}

	// Network errors (serve surface)
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "address already in use") {
		return NewErrorWithSuggestion(err,
			"Check that the port is free, or pick another with 'runsheet serve --port 9090'")
	}

	// Generic suggestion based on error type
	if strings.Contains(errMsg, "failed to") {
		return NewErrorWithSuggestion(err,
			fmt.Sprintf("Next steps: %s", SuggestNextSteps()))
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
