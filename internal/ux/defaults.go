package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathDefaults provides smart defaults for common file paths
type PathDefaults struct {
	RunsheetDir string
}

// NewPathDefaults creates a new PathDefaults with sensible defaults
func NewPathDefaults() *PathDefaults {
	return &PathDefaults{
		RunsheetDir: ".runsheet",
	}
}

// RequestFile returns the default path to runsheet.yaml, checking if it exists
func (pd *PathDefaults) RequestFile() string {
	path := "runsheet.yaml"
	if _, err := os.Stat(path); err == nil {
		return path
	}
	// Fallback to the .runsheet directory for repos that keep planning
	// files out of the project root
	nested := filepath.Join(pd.RunsheetDir, "runsheet.yaml")
	if _, err := os.Stat(nested); err == nil {
		return nested
	}
	return path // Return path anyway for creation
}

// ScheduleFile returns the default path to schedule.json
func (pd *PathDefaults) ScheduleFile() string {
	return "schedule.json"
}

// ResultsDir returns the default directory for saved schedule runs
func (pd *PathDefaults) ResultsDir() string {
	return filepath.Join(pd.RunsheetDir, "results")
}

// LogDir returns the default log directory
func (pd *PathDefaults) LogDir() string {
	return filepath.Join(pd.RunsheetDir, "logs")
}

// ValidateRunsheetSetup checks if the .runsheet directory is initialized
func (pd *PathDefaults) ValidateRunsheetSetup() error {
	if _, err := os.Stat(pd.RunsheetDir); os.IsNotExist(err) {
		return fmt.Errorf(".runsheet directory not found. Run 'runsheet init' to set up your project")
	}
	return nil
}

// ValidateRequiredFile checks if a required file exists and provides helpful error
func ValidateRequiredFile(path string, fileType string, creationCommand string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found at: %s\n\nRun '%s' to create it", fileType, path, creationCommand)
	} else if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	return nil
}

// SuggestNextSteps provides contextual next steps based on what exists
func SuggestNextSteps() string {
	defaults := NewPathDefaults()

	_, hasRequest := os.Stat(defaults.RequestFile())
	_, hasSchedule := os.Stat(defaults.ScheduleFile())

	if os.IsNotExist(hasRequest) {
		return "Create a request file with 'runsheet init'"
	}

	if os.IsNotExist(hasSchedule) {
		return "Build a schedule with 'runsheet schedule'"
	}

	return "Review your schedule with 'runsheet review'"
}
