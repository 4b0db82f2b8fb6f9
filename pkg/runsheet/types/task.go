package types

import (
	"fmt"
	"strings"
)

// Task is a single unit of event-planning work. Tasks are created once during
// consolidation and are immutable afterwards; timelines and conflicts derived
// from them live in separate records.
type Task struct {
	ID          TaskID `json:"task_id" yaml:"task_id"`
	ParentID    TaskID `json:"parent_task_id,omitempty" yaml:"parent_task_id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Priority          Priority         `json:"priority" yaml:"priority"`
	EstimatedDuration Duration         `json:"estimated_duration" yaml:"estimated_duration"`
	Granularity       GranularityLevel `json:"granularity_level,omitempty" yaml:"granularity_level,omitempty"`

	// DependsOn lists prerequisite task IDs in declaration order. Dangling
	// references are dropped with a warning during consolidation, never fatal.
	DependsOn []TaskID `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Resources are referenced, never owned: one resource instance may be
	// required by many tasks.
	Resources []Resource `json:"resources_required,omitempty" yaml:"resources_required,omitempty"`

	// Exclusive marks a task that does not permit parallel execution.
	// Overlap with any non-related task then becomes a timeline conflict.
	Exclusive bool `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
}

// Validate checks the task against domain rules
func (t *Task) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return fmt.Errorf("invalid task ID: %w", err)
	}

	if t.ParentID != "" {
		if err := t.ParentID.Validate(); err != nil {
			return fmt.Errorf("task %s: invalid parent task ID: %w", t.ID, err)
		}
	}

	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("task %s: name cannot be empty", t.ID)
	}

	if err := t.Priority.Validate(); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}

	if t.EstimatedDuration <= 0 {
		return fmt.Errorf("task %s: estimated duration must be positive", t.ID)
	}

	if err := t.Granularity.Validate(); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}

	for i, res := range t.Resources {
		if err := res.Validate(); err != nil {
			return fmt.Errorf("task %s: resource at index %d is invalid: %w", t.ID, i, err)
		}
	}

	return nil
}

// Resource identifies a concrete resource instance a task requires: a vendor,
// a piece of equipment, a staff member, or a venue.
type Resource struct {
	Type     ResourceType `json:"resource_type" yaml:"resource_type"`
	ID       string       `json:"resource_id" yaml:"resource_id"`
	Name     string       `json:"resource_name,omitempty" yaml:"resource_name,omitempty"`
	Quantity int          `json:"quantity_required,omitempty" yaml:"quantity_required,omitempty"`

	// Availability is an optional free-text constraint ("weekdays only",
	// "after 14:00"). The engine surfaces it in conflict descriptions but
	// does not parse it.
	Availability string `json:"availability,omitempty" yaml:"availability,omitempty"`
}

// Validate checks the resource reference
func (r *Resource) Validate() error {
	if err := r.Type.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("resource ID cannot be empty")
	}

	if r.Quantity < 0 {
		return fmt.Errorf("resource %s: quantity cannot be negative", r.ID)
	}

	return nil
}

// EffectiveQuantity returns the requested quantity, defaulting to 1 when the
// field was omitted.
func (r Resource) EffectiveQuantity() int {
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}
