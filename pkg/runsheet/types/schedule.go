package types

import (
	"time"
)

// Timeline is the derived schedule entry for one task. A scheduling run
// produces a fresh set; entries are never mutated after creation.
type Timeline struct {
	TaskID TaskID    `json:"task_id" yaml:"task_id"`
	Start  time.Time `json:"start_time" yaml:"start_time"`
	End    time.Time `json:"end_time" yaml:"end_time"`

	Duration Duration `json:"duration" yaml:"duration"`

	// Buffer is the mandatory gap after this task before any dependent may
	// start. Sized by priority and granularity.
	Buffer Duration `json:"buffer_time" yaml:"buffer_time"`

	// Constraints are human-readable scheduling notes, e.g.
	// "depends on 2 tasks", "priority: critical", "circular dependency broken".
	Constraints []string `json:"scheduling_constraints,omitempty" yaml:"scheduling_constraints,omitempty"`
}

// Overlaps reports whether the two half-open intervals [Start, End) intersect.
func (t Timeline) Overlaps(other Timeline) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}

// Conflict is one detected scheduling problem. Conflicts are recomputed each
// run; the ID is a deterministic hash so unchanged schedules yield identical
// conflict sets across passes.
type Conflict struct {
	ID       string       `json:"conflict_id" yaml:"conflict_id"`
	Type     ConflictType `json:"conflict_type" yaml:"conflict_type"`
	Severity Priority     `json:"severity" yaml:"severity"`

	// TaskIDs lists the affected tasks, sorted, always at least two.
	TaskIDs []TaskID `json:"affected_task_ids" yaml:"affected_task_ids"`

	Description string `json:"description" yaml:"description"`

	// SuggestedResolution is advisory free text; the engine never applies it.
	SuggestedResolution string `json:"suggested_resolution,omitempty" yaml:"suggested_resolution,omitempty"`
}

// Involves reports whether the conflict affects the given task.
func (c Conflict) Involves(id TaskID) bool {
	for _, t := range c.TaskIDs {
		if t == id {
			return true
		}
	}
	return false
}
