package cmd

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with actionable recovery suggestions
type ErrorWithSuggestion struct {
	Message     string
	Suggestions []string
	err         error
}

func (e *ErrorWithSuggestion) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if e.err != nil {
		b.WriteString("\n\nDetails: ")
		b.WriteString(e.err.Error())
	}

	return b.String()
}

func (e *ErrorWithSuggestion) Unwrap() error {
	return e.err
}

// NewErrorWithSuggestions creates an error with recovery suggestions
func NewErrorWithSuggestions(msg string, err error, suggestions ...string) error {
	return &ErrorWithSuggestion{
		Message:     msg,
		Suggestions: suggestions,
		err:         err,
	}
}

// RequestLoadError creates a helpful error for request loading failures
func RequestLoadError(path string, err error) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("Failed to load request file %q", path),
		err,
		"Create a starter request: runsheet init",
		"Check the file parses: runsheet validate --in "+path,
		"Durations use Go syntax (\"90m\", \"2h\") and working hours are quoted HH:MM strings",
	)
}

// ResultLoadError creates a helpful error for schedule result loading failures
func ResultLoadError(path string, err error) error {
	return NewErrorWithSuggestions(
		fmt.Sprintf("Failed to load schedule result %q", path),
		err,
		"Build a schedule first: runsheet schedule --out "+path,
		"Check the path points at a saved result, not a request file",
	)
}
