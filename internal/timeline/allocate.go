// Package timeline assigns concrete start and end instants to every task in
// topological order, inserting priority-sized buffer gaps and keeping work
// inside the configured daily working window.
package timeline

import (
	"fmt"
	"time"

	"github.com/runsheethq/runsheet/internal/errors"
	"github.com/runsheethq/runsheet/internal/graph"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

const (
	bufferCritical = 30 * time.Minute
	bufferHigh     = 20 * time.Minute
	bufferMedium   = 15 * time.Minute
	bufferLow      = 10 * time.Minute

	// detailDiscount shrinks the buffer for detailed sub-tasks, which need
	// less handoff slack than top-level work.
	detailDiscount = 5 * time.Minute
)

// Options configure an allocation pass.
type Options struct {
	// EventStart anchors the schedule; no task starts before it.
	EventStart time.Time

	// Hours is the daily working window. The zero value selects the
	// 08:00-23:00 default.
	Hours types.WorkingHours
}

// BufferFor returns the mandatory gap after a task before any dependent may
// begin.
func BufferFor(t types.Task) time.Duration {
	var buf time.Duration
	switch t.Priority {
	case types.PriorityCritical:
		buf = bufferCritical
	case types.PriorityHigh:
		buf = bufferHigh
	case types.PriorityLow:
		buf = bufferLow
	default:
		buf = bufferMedium
	}
	if t.Granularity >= types.GranularityDetail {
		buf -= detailDiscount
		if buf < 0 {
			buf = 0
		}
	}
	return buf
}

// Allocate produces one Timeline per task, walking the scheduling order.
//
// A task with prerequisites starts at the latest of the event start and its
// prerequisite constraints: a parent edge constrains start-to-start, every
// other kind constrains to the prerequisite's end plus its buffer. A task
// with no prerequisites starts at the scheduling cursor, which begins at the
// event start and advances past each such task in turn. Prerequisites broken
// out of a cycle may be unallocated when their dependent is reached; those
// impose no constraint.
//
// Output order matches the input order. Callers wanting chronological order
// must sort by start time themselves.
func Allocate(g *graph.Graph, order graph.Order, opts Options) ([]types.Timeline, error) {
	hours := opts.Hours
	if hours.IsZero() {
		hours = types.DefaultWorkingHours()
	}
	if err := hours.Validate(); err != nil {
		return nil, errors.NewBadWorkingHoursError(err)
	}
	if len(order.Sequence) != len(g.Order) {
		return nil, errors.NewInvalidOrderError(
			fmt.Sprintf("order covers %d of %d tasks", len(order.Sequence), len(g.Order)))
	}

	timelines := make([]types.Timeline, 0, len(order.Sequence))
	byID := make(map[types.TaskID]types.Timeline, len(order.Sequence))
	cursor := opts.EventStart

	for _, id := range order.Sequence {
		task, ok := g.Tasks[id]
		if !ok {
			return nil, errors.NewInvalidOrderError(fmt.Sprintf("order names unknown task %q", id))
		}

		prereqs := g.PrereqsOf(id)
		start := opts.EventStart
		if len(prereqs) == 0 {
			start = cursor
		}
		for _, dep := range prereqs {
			dt, allocated := byID[dep]
			if !allocated {
				continue
			}
			constraint := dt.End.Add(dt.Buffer.Std())
			if kind, _ := g.EdgeKind(dep, id); kind == graph.EdgeParent {
				constraint = dt.Start
			}
			if constraint.After(start) {
				start = constraint
			}
		}

		dur := task.EstimatedDuration.Std()
		start, clampNotes, err := clampToWindow(start, dur, hours)
		if err != nil {
			return nil, errors.NewBadWorkingHoursError(err)
		}
		end := start.Add(dur)
		buffer := BufferFor(task)

		tl := types.Timeline{
			TaskID:      id,
			Start:       start,
			End:         end,
			Duration:    task.EstimatedDuration,
			Buffer:      types.Duration(buffer),
			Constraints: constraintNotes(task, len(prereqs), clampNotes, order.InCycle(id)),
		}
		timelines = append(timelines, tl)
		byID[id] = tl

		if len(prereqs) == 0 {
			cursor = end.Add(buffer)
		}
	}

	if err := checkInvariants(g, order, byID); err != nil {
		return nil, err
	}
	return timelines, nil
}

// clampToWindow shifts a start that falls outside the working window, or
// whose task would run past window close, to the next window open. Duration
// is never truncated: a task longer than the window itself is pinned to a
// window open and runs over, with a note.
func clampToWindow(start time.Time, dur time.Duration, hours types.WorkingHours) (time.Time, []string, error) {
	openMin, closeMin, err := hours.Window()
	if err != nil {
		return start, nil, err
	}
	open := time.Duration(openMin) * time.Minute
	windowClose := time.Duration(closeMin) * time.Minute
	window := windowClose - open

	shifted := false

	day, tod := splitDay(start)
	switch {
	case tod < open:
		start = day.Add(open)
		shifted = true
	case tod >= windowClose:
		start = day.AddDate(0, 0, 1).Add(open)
		shifted = true
	}

	day, tod = splitDay(start)
	if tod+dur > windowClose && tod != open {
		start = day.AddDate(0, 0, 1).Add(open)
		shifted = true
	}

	var notes []string
	if shifted {
		notes = append(notes, fmt.Sprintf("shifted to working window %s-%s", hours.Start, hours.End))
	}
	if dur > window {
		notes = append(notes, fmt.Sprintf("runs past working hours close %s", hours.End))
	}
	return start, notes, nil
}

func splitDay(t time.Time) (time.Time, time.Duration) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day, t.Sub(day)
}

func constraintNotes(task types.Task, depCount int, clampNotes []string, cycled bool) []string {
	var notes []string
	switch {
	case depCount == 1:
		notes = append(notes, "depends on 1 task")
	case depCount > 1:
		notes = append(notes, fmt.Sprintf("depends on %d tasks", depCount))
	}
	notes = append(notes, "priority: "+string(task.Priority))
	notes = append(notes, clampNotes...)
	if cycled {
		notes = append(notes, "circular dependency broken")
	}
	return notes
}

// checkInvariants re-verifies the finished allocation: every end equals start
// plus duration, and no task starts before a prerequisite constraint. Tasks
// from broken cycles are exempt from the ordering check. A failure here is an
// allocator bug and is raised, never returned as a best-effort schedule.
func checkInvariants(g *graph.Graph, order graph.Order, byID map[types.TaskID]types.Timeline) error {
	for _, id := range order.Sequence {
		tl := byID[id]
		if !tl.End.Equal(tl.Start.Add(tl.Duration.Std())) {
			return errors.New(errors.ErrCodeAllocOrderingViolation,
				fmt.Sprintf("task %s end time does not equal start plus duration", id))
		}
		if order.InCycle(id) {
			continue
		}
		for _, dep := range g.PrereqsOf(id) {
			dt := byID[dep]
			if kind, _ := g.EdgeKind(dep, id); kind == graph.EdgeParent {
				if tl.Start.Before(dt.Start) {
					return errors.NewOrderingViolationError(string(id), string(dep))
				}
				continue
			}
			if tl.Start.Before(dt.End.Add(dt.Buffer.Std())) {
				return errors.NewOrderingViolationError(string(id), string(dep))
			}
		}
	}
	return nil
}
