package exitcode

import (
	"os"
	"strings"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConflictsFound indicates the schedule was produced but contains conflicts
	ConflictsFound = 3

	// ValidationError indicates a request failed validation
	ValidationError = 4

	// NoTaskData indicates every annotation source in the request was empty
	NoTaskData = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the run was cancelled by the user (SIGINT)
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	errMsg := strings.ToLower(err.Error())

	// Empty request sources
	if strings.Contains(errMsg, "no usable task data") {
		return NoTaskData
	}
	if strings.Contains(errMsg, "all annotation sources") {
		return NoTaskData
	}

	// Validation failures
	if strings.Contains(errMsg, "invalid request") || strings.Contains(errMsg, "validation failed") {
		return ValidationError
	}
	if strings.Contains(errMsg, "invalid working hours") {
		return ValidationError
	}

	// Network errors
	if strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection") {
		return NetworkError
	}
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConflictsFound:
		return "Schedule produced with conflicts"
	case ValidationError:
		return "Request validation failed"
	case NoTaskData:
		return "No usable task data in request"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted by user"
	default:
		return "Unknown error"
	}
}
