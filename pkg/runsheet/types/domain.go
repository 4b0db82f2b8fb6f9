// Package types defines the data model shared by the runsheet scheduling
// engine and its callers: tasks, resources, timelines, conflicts, and the
// request/result pair that forms the engine's function boundary.
package types

import (
	"fmt"
	"regexp"
	"strings"
)

// TaskID represents a unique identifier for a task.
// This is a value object that enforces valid ID formats.
type TaskID string

var (
	// taskIDPattern validates that the ID contains only alphanumeric characters and hyphens
	// Must start with a letter, and can contain lowercase letters, numbers, and hyphens
	taskIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

	// maxTaskIDLength is the maximum allowed length for a task ID
	maxTaskIDLength = 100
)

// NewTaskID creates a new TaskID value object with validation
func NewTaskID(value string) (TaskID, error) {
	id := TaskID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the task ID is valid
func (t TaskID) Validate() error {
	s := string(t)

	if s == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	if len(s) > maxTaskIDLength {
		return fmt.Errorf("task ID %q exceeds maximum length of %d characters", s, maxTaskIDLength)
	}

	if !taskIDPattern.MatchString(s) {
		return fmt.Errorf("task ID %q must start with a letter and contain only lowercase letters, numbers, and hyphens", s)
	}

	if strings.Contains(s, "--") {
		return fmt.Errorf("task ID %q cannot contain consecutive hyphens", s)
	}

	if strings.HasSuffix(s, "-") {
		return fmt.Errorf("task ID %q cannot end with a hyphen", s)
	}

	return nil
}

// String returns the string representation
func (t TaskID) String() string {
	return string(t)
}

// Priority represents a task priority level.
// The same scale doubles as conflict severity.
type Priority string

// Valid priority levels
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// NewPriority creates a new Priority value object with validation
func NewPriority(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks if the priority is valid
func (p Priority) Validate() error {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	default:
		return fmt.Errorf("invalid priority %q: must be critical, high, medium, or low", string(p))
	}
}

// String returns the string representation
func (p Priority) String() string {
	return string(p)
}

// IsHigherThan checks if this priority outranks another
func (p Priority) IsHigherThan(other Priority) bool {
	return priorityRank(p) > priorityRank(other)
}

// MaxPriority returns the higher-ranked of two priorities
func MaxPriority(a, b Priority) Priority {
	if b.IsHigherThan(a) {
		return b
	}
	return a
}

// priorityRank returns the numeric rank of a priority (higher = more urgent)
func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ResourceType classifies what kind of resource a task requires.
type ResourceType string

// Valid resource types
const (
	ResourceVendor    ResourceType = "vendor"
	ResourceEquipment ResourceType = "equipment"
	ResourcePersonnel ResourceType = "personnel"
	ResourceVenue     ResourceType = "venue"
)

// Validate checks if the resource type is valid
func (r ResourceType) Validate() error {
	switch r {
	case ResourceVendor, ResourceEquipment, ResourcePersonnel, ResourceVenue:
		return nil
	default:
		return fmt.Errorf("invalid resource type %q: must be vendor, equipment, personnel, or venue", string(r))
	}
}

// String returns the string representation
func (r ResourceType) String() string {
	return string(r)
}

// GranularityLevel is the depth of task decomposition:
// 0 = top-level, 1 = sub-task, 2 = detailed sub-task.
type GranularityLevel int

// Granularity levels
const (
	GranularityTop    GranularityLevel = 0
	GranularitySub    GranularityLevel = 1
	GranularityDetail GranularityLevel = 2
)

// Validate checks if the granularity level is in range
func (g GranularityLevel) Validate() error {
	if g < GranularityTop || g > GranularityDetail {
		return fmt.Errorf("invalid granularity level %d: must be 0, 1, or 2", int(g))
	}
	return nil
}

// ConflictType classifies a detected scheduling conflict.
type ConflictType string

// Valid conflict types
const (
	ConflictTimeline   ConflictType = "timeline"
	ConflictResource   ConflictType = "resource"
	ConflictVenue      ConflictType = "venue"
	ConflictDependency ConflictType = "dependency_violation"
)

// String returns the string representation
func (c ConflictType) String() string {
	return string(c)
}
