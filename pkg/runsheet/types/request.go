package types

import (
	"fmt"
	"time"
)

// WorkingHours bounds the daily window tasks may occupy, expressed as "HH:MM"
// wall-clock times in the event's local time zone.
type WorkingHours struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// DefaultWorkingHours returns the engine default window, 08:00-23:00.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: "08:00", End: "23:00"}
}

// IsZero reports whether the window was left unset.
func (w WorkingHours) IsZero() bool {
	return w.Start == "" && w.End == ""
}

// Validate checks both bounds parse and the window is non-empty
func (w WorkingHours) Validate() error {
	start, err := parseClock(w.Start)
	if err != nil {
		return fmt.Errorf("invalid working hours start %q: %w", w.Start, err)
	}
	end, err := parseClock(w.End)
	if err != nil {
		return fmt.Errorf("invalid working hours end %q: %w", w.End, err)
	}
	if end <= start {
		return fmt.Errorf("working hours end %q must be after start %q", w.End, w.Start)
	}
	return nil
}

// Window returns the bounds as minutes from midnight.
func (w WorkingHours) Window() (startMin, endMin int, err error) {
	if startMin, err = parseClock(w.Start); err != nil {
		return 0, 0, fmt.Errorf("invalid working hours start %q: %w", w.Start, err)
	}
	if endMin, err = parseClock(w.End); err != nil {
		return 0, 0, fmt.Errorf("invalid working hours end %q: %w", w.End, err)
	}
	return startMin, endMin, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// PriorityAnnotation is the prioritization classifier's view of a task.
type PriorityAnnotation struct {
	TaskID   TaskID   `json:"task_id" yaml:"task_id"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Priority Priority `json:"priority" yaml:"priority"`
}

// DecompositionAnnotation is the decomposition classifier's view of a task:
// parent/child breakdown, duration estimate, and granularity.
type DecompositionAnnotation struct {
	TaskID            TaskID           `json:"task_id" yaml:"task_id"`
	ParentID          TaskID           `json:"parent_task_id,omitempty" yaml:"parent_task_id,omitempty"`
	Name              string           `json:"name,omitempty" yaml:"name,omitempty"`
	Description       string           `json:"description,omitempty" yaml:"description,omitempty"`
	EstimatedDuration Duration         `json:"estimated_duration,omitempty" yaml:"estimated_duration,omitempty"`
	Granularity       GranularityLevel `json:"granularity_level,omitempty" yaml:"granularity_level,omitempty"`
}

// DependencyAnnotation is the dependency/resource extractor's view of a task.
type DependencyAnnotation struct {
	TaskID    TaskID     `json:"task_id" yaml:"task_id"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	DependsOn []TaskID   `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Resources []Resource `json:"resources_required,omitempty" yaml:"resources_required,omitempty"`
	Exclusive bool       `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
}

// SourceSet carries the three independently produced annotation sets the
// consolidator merges. Any subset may be present; upstream classifiers fail
// or return partial data routinely.
type SourceSet struct {
	Priorities    []PriorityAnnotation      `json:"priorities,omitempty" yaml:"priorities,omitempty"`
	Decomposition []DecompositionAnnotation `json:"decomposition,omitempty" yaml:"decomposition,omitempty"`
	Dependencies  []DependencyAnnotation    `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Empty reports whether every source is empty.
func (s *SourceSet) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.Priorities) == 0 && len(s.Decomposition) == 0 && len(s.Dependencies) == 0
}

// Request is the engine's input. Callers supply either pre-merged Tasks or
// the raw Sources; when both are present, Tasks win and Sources are ignored.
type Request struct {
	EventName string `json:"event_name,omitempty" yaml:"event_name,omitempty"`

	Tasks   []Task     `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	Sources *SourceSet `json:"sources,omitempty" yaml:"sources,omitempty"`

	EventStart   time.Time    `json:"event_start" yaml:"event_start"`
	WorkingHours WorkingHours `json:"working_hours,omitempty" yaml:"working_hours,omitempty"`

	// ResourceCapacities overrides the default capacity of 1 per resource ID
	// (exclusive use). Capacity semantics are a policy knob, not a hard-coded
	// assumption.
	ResourceCapacities map[string]int `json:"resource_capacities,omitempty" yaml:"resource_capacities,omitempty"`
}

// Validate checks request-level rules. Task-level problems (dangling
// references, self-dependencies) are consolidation warnings, not request
// errors.
func (r *Request) Validate() error {
	// A present-but-empty SourceSet passes here so consolidation can report
	// the emptiness itself.
	if len(r.Tasks) == 0 && r.Sources == nil {
		return fmt.Errorf("request contains no tasks and no sources")
	}

	if r.EventStart.IsZero() {
		return fmt.Errorf("event start time is required")
	}

	if !r.WorkingHours.IsZero() {
		if err := r.WorkingHours.Validate(); err != nil {
			return err
		}
	}

	for id, capacity := range r.ResourceCapacities {
		if capacity < 1 {
			return fmt.Errorf("resource %s: capacity must be at least 1", id)
		}
	}

	return nil
}
