package types

import (
	"time"
)

// Result is the engine's output: a timeline per scheduled task plus every
// conflict the detector found. A Result with conflicts is still a complete
// schedule; callers decide whether conflicts block downstream use.
type Result struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	EventName   string    `json:"event_name,omitempty" yaml:"event_name,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	EventStart  time.Time `json:"event_start" yaml:"event_start"`

	// Tasks holds the consolidated task set the timelines were built from,
	// in consolidated order, so renderers don't need the original request.
	Tasks []Task `json:"tasks,omitempty" yaml:"tasks,omitempty"`

	Timelines []Timeline `json:"timelines" yaml:"timelines"`
	Conflicts []Conflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`

	// BrokenCycles lists the task IDs whose incoming dependencies were
	// severed to recover a schedulable order, in the order they were broken.
	BrokenCycles []TaskID `json:"broken_cycles,omitempty" yaml:"broken_cycles,omitempty"`

	// Warnings records consolidation data gaps: tasks that appeared in only
	// some sources, dangling dependency references, defaulted fields.
	Warnings []string `json:"consolidation_warnings,omitempty" yaml:"consolidation_warnings,omitempty"`

	// Fingerprint is a stable hash of the scheduled timelines; two runs over
	// the same input produce the same fingerprint.
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`

	Stats Stats `json:"stats" yaml:"stats"`
}

// Stats summarizes a schedule for reporting without re-walking the result.
type Stats struct {
	TaskCount     int `json:"task_count" yaml:"task_count"`
	ConflictCount int `json:"conflict_count" yaml:"conflict_count"`

	TimelineConflicts   int `json:"timeline_conflicts,omitempty" yaml:"timeline_conflicts,omitempty"`
	ResourceConflicts   int `json:"resource_conflicts,omitempty" yaml:"resource_conflicts,omitempty"`
	VenueConflicts      int `json:"venue_conflicts,omitempty" yaml:"venue_conflicts,omitempty"`
	DependencyConflicts int `json:"dependency_conflicts,omitempty" yaml:"dependency_conflicts,omitempty"`

	CycleCount   int `json:"cycle_count,omitempty" yaml:"cycle_count,omitempty"`
	WarningCount int `json:"warning_count,omitempty" yaml:"warning_count,omitempty"`

	ScheduleEnd time.Time `json:"schedule_end,omitempty" yaml:"schedule_end,omitempty"`

	// Makespan is the span from event start to the last task's end, buffers
	// included.
	Makespan Duration `json:"makespan,omitempty" yaml:"makespan,omitempty"`

	// CriticalPathLength counts the tasks on the longest dependency chain.
	CriticalPathLength int `json:"critical_path_length,omitempty" yaml:"critical_path_length,omitempty"`
}

// TimelineFor returns the timeline for the given task, if present.
func (r *Result) TimelineFor(id TaskID) (Timeline, bool) {
	for _, tl := range r.Timelines {
		if tl.TaskID == id {
			return tl, true
		}
	}
	return Timeline{}, false
}

// TaskFor returns the consolidated task for the given id, if present.
func (r *Result) TaskFor(id TaskID) (Task, bool) {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// HasConflicts reports whether the detector flagged anything.
func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// ConflictsBySeverity returns conflicts at the given severity, preserving
// detector order.
func (r *Result) ConflictsBySeverity(severity Priority) []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.Severity == severity {
			out = append(out, c)
		}
	}
	return out
}

// Recount rebuilds Stats counters from the result's own slices. Derived time
// fields (ScheduleEnd, Makespan, CriticalPathLength) are the allocator's to
// fill and are left untouched.
func (r *Result) Recount() {
	s := &r.Stats
	s.TaskCount = len(r.Timelines)
	s.ConflictCount = len(r.Conflicts)
	s.CycleCount = len(r.BrokenCycles)
	s.WarningCount = len(r.Warnings)

	s.TimelineConflicts = 0
	s.ResourceConflicts = 0
	s.VenueConflicts = 0
	s.DependencyConflicts = 0
	for _, c := range r.Conflicts {
		switch c.Type {
		case ConflictTimeline:
			s.TimelineConflicts++
		case ConflictResource:
			s.ResourceConflicts++
		case ConflictVenue:
			s.VenueConflicts++
		case ConflictDependency:
			s.DependencyConflicts++
		}
	}
}
