package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Request errors (REQUEST-001 to REQUEST-099)
	ErrCodeRequestNotFound  ErrorCode = "REQUEST-001"
	ErrCodeRequestUnmarshal ErrorCode = "REQUEST-002"
	ErrCodeRequestInvalid   ErrorCode = "REQUEST-003"

	// Consolidation errors (CONSOLIDATE-001 to CONSOLIDATE-099)
	ErrCodeConsolidateNoData            ErrorCode = "CONSOLIDATE-001"
	ErrCodeConsolidateInvalidAnnotation ErrorCode = "CONSOLIDATE-002"

	// Graph errors (GRAPH-001 to GRAPH-099)
	ErrCodeGraphInvalidInput  ErrorCode = "GRAPH-001"
	ErrCodeGraphCycleDetected ErrorCode = "GRAPH-002"

	// Allocation errors (ALLOC-001 to ALLOC-099)
	ErrCodeAllocInvalidOrder      ErrorCode = "ALLOC-001"
	ErrCodeAllocBadWorkingHours   ErrorCode = "ALLOC-002"
	ErrCodeAllocOrderingViolation ErrorCode = "ALLOC-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
)

// ScheduleError represents an enhanced error with code, suggestions, and documentation
type ScheduleError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *ScheduleError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	// Add documentation link
	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ScheduleError) Unwrap() error {
	return e.Cause
}

// New creates a new ScheduleError
func New(code ErrorCode, message string) *ScheduleError {
	return &ScheduleError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ScheduleError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ScheduleError {
	return &ScheduleError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ScheduleError) WithSuggestion(suggestion string) *ScheduleError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ScheduleError) WithSuggestions(suggestions ...string) *ScheduleError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *ScheduleError) WithDocs(url string) *ScheduleError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewRequestNotFoundError creates a request file not found error
func NewRequestNotFoundError(path string) *ScheduleError {
	return New(ErrCodeRequestNotFound, fmt.Sprintf("request file not found: %s", path)).
		WithSuggestion("Run 'runsheet init' to scaffold a new request file").
		WithSuggestion("Check if the file path is correct").
		WithDocs("https://github.com/runsheethq/runsheet#request-files")
}

// NewRequestUnmarshalError creates a request parse error
func NewRequestUnmarshalError(path string, format string, cause error) *ScheduleError {
	return Wrap(ErrCodeRequestUnmarshal, fmt.Sprintf("failed to parse %s request: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// NewRequestInvalidError creates a request validation error
func NewRequestInvalidError(details string) *ScheduleError {
	return New(ErrCodeRequestInvalid, fmt.Sprintf("invalid request: %s", details)).
		WithSuggestion("Run 'runsheet validate --in <file>' to see validation errors").
		WithDocs("https://github.com/runsheethq/runsheet#request-schema")
}

// NewNoTaskDataError creates an error for a request whose every source is empty
func NewNoTaskDataError() *ScheduleError {
	return New(ErrCodeConsolidateNoData, "no usable task data: all annotation sources are empty").
		WithSuggestion("Provide at least one of: priorities, decomposition, dependencies").
		WithSuggestion("Or supply pre-merged tasks directly in the request").
		WithDocs("https://github.com/runsheethq/runsheet#annotation-sources")
}

// NewInvalidAnnotationError creates an error for an annotation that fails validation
func NewInvalidAnnotationError(source string, details string) *ScheduleError {
	return New(ErrCodeConsolidateInvalidAnnotation, fmt.Sprintf("invalid %s annotation: %s", source, details)).
		WithSuggestion("Check the annotation against the request schema")
}

// NewInvalidOrderError creates an error for a scheduling order that does not
// cover the task set
func NewInvalidOrderError(details string) *ScheduleError {
	return New(ErrCodeAllocInvalidOrder, fmt.Sprintf("invalid scheduling order: %s", details))
}

// NewBadWorkingHoursError creates a working-hours configuration error
func NewBadWorkingHoursError(cause error) *ScheduleError {
	return Wrap(ErrCodeAllocBadWorkingHours, "invalid working hours window", cause).
		WithSuggestion("Use HH:MM bounds with end after start, e.g. 08:00-23:00")
}

// NewOrderingViolationError creates an error for a timeline that starts before
// a declared dependency ends
func NewOrderingViolationError(task string, dependency string) *ScheduleError {
	return New(ErrCodeAllocOrderingViolation,
		fmt.Sprintf("task %s scheduled before its dependency %s completed", task, dependency)).
		WithSuggestion("This is an allocator defect; please report it with the request file").
		WithDocs("https://github.com/runsheethq/runsheet/issues")
}

// NewFileReadError creates a file read error
func NewFileReadError(path string, cause error) *ScheduleError {
	return Wrap(ErrCodeFileReadFailed, fmt.Sprintf("failed to read file: %s", path), cause).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileWriteError creates a file write error
func NewFileWriteError(path string, cause error) *ScheduleError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write file: %s", path), cause).
		WithSuggestion("Verify you have write permissions for the target directory")
}
