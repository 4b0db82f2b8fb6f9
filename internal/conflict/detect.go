// Package conflict scans an allocated schedule for timeline overlaps,
// resource double-bookings, venue contention, and dependency violations.
// Detection is a pure pass over its inputs: conflicts are recomputed each
// run and their IDs are stable for an unchanged schedule.
package conflict

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/runsheethq/runsheet/internal/graph"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// Detect returns every conflict in the allocated schedule, ordered by
// severity and then by conflict ID.
//
// Timeline conflicts need an overlapping pair with no ancestor relation in
// the dependency graph where at least one task is exclusive. Resource and
// venue conflicts arise when concurrent demand for one resource instance
// exceeds its capacity (default 1, overridable per resource ID). Dependency
// violations should be impossible after allocation ran its own invariant
// check; they are detected anyway so hand-built timelines fail loudly.
// Edges broken out of a cycle are exempt from the violation check.
func Detect(g *graph.Graph, order graph.Order, timelines []types.Timeline, capacities map[string]int) []types.Conflict {
	byID := make(map[types.TaskID]types.Timeline, len(timelines))
	for _, tl := range timelines {
		byID[tl.TaskID] = tl
	}

	sorted := make([]types.Timeline, len(timelines))
	copy(sorted, timelines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].TaskID < sorted[j].TaskID
	})

	reach := newReachability(g)
	var conflicts []types.Conflict

	// Interval sweep: every timeline is paired exactly once with the active
	// set at its arrival, so each unordered pair is examined exactly once.
	actives := make([]types.Timeline, 0, len(sorted))
	for _, cur := range sorted {
		live := actives[:0]
		for _, a := range actives {
			if a.End.After(cur.Start) {
				live = append(live, a)
			}
		}
		actives = live

		conflicts = append(conflicts, timelineConflicts(g, reach, actives, cur)...)
		conflicts = append(conflicts, resourceConflicts(g, actives, cur, capacities)...)

		actives = append(actives, cur)
	}

	conflicts = append(conflicts, dependencyViolations(g, order, byID)...)

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].Severity != conflicts[j].Severity {
			return conflicts[i].Severity.IsHigherThan(conflicts[j].Severity)
		}
		return conflicts[i].ID < conflicts[j].ID
	})
	return conflicts
}

func timelineConflicts(g *graph.Graph, reach *reachability, actives []types.Timeline, cur types.Timeline) []types.Conflict {
	curTask, ok := g.Tasks[cur.TaskID]
	if !ok {
		return nil
	}

	var out []types.Conflict
	for _, a := range actives {
		if !a.Overlaps(cur) {
			continue
		}
		other, ok := g.Tasks[a.TaskID]
		if !ok {
			continue
		}
		if !curTask.Exclusive && !other.Exclusive {
			continue
		}
		if reach.related(cur.TaskID, a.TaskID) {
			continue
		}

		ids := sortedIDs(a.TaskID, cur.TaskID)
		out = append(out, types.Conflict{
			ID:       conflictID(types.ConflictTimeline, ids, ""),
			Type:     types.ConflictTimeline,
			Severity: types.MaxPriority(curTask.Priority, other.Priority),
			TaskIDs:  ids,
			Description: fmt.Sprintf("tasks %s and %s overlap and at least one does not permit parallel execution",
				ids[0], ids[1]),
			SuggestedResolution: fmt.Sprintf("reschedule %s after %s's buffer window", cur.TaskID, a.TaskID),
		})
	}
	return out
}

// resourceConflicts reports overload at the moment demand first exceeds
// capacity: the arriving task plus every active holder of the resource form
// one conflict record.
func resourceConflicts(g *graph.Graph, actives []types.Timeline, cur types.Timeline, capacities map[string]int) []types.Conflict {
	curTask, ok := g.Tasks[cur.TaskID]
	if !ok {
		return nil
	}

	var out []types.Conflict
	for _, res := range curTask.Resources {
		demand := res.EffectiveQuantity()
		var holders []types.TaskID
		for _, a := range actives {
			if !a.Overlaps(cur) {
				continue
			}
			other, ok := g.Tasks[a.TaskID]
			if !ok {
				continue
			}
			for _, or := range other.Resources {
				if or.ID == res.ID {
					holders = append(holders, a.TaskID)
					demand += or.EffectiveQuantity()
					break
				}
			}
		}
		if len(holders) == 0 || demand <= capacityFor(capacities, res.ID) {
			continue
		}

		ids := sortedIDs(append(holders, cur.TaskID)...)
		severity := types.PriorityLow
		for _, id := range ids {
			severity = types.MaxPriority(severity, g.Tasks[id].Priority)
		}

		ctype := types.ConflictResource
		noun := "resource"
		resolution := fmt.Sprintf("request additional units of %s or stagger the tasks", displayName(res))
		if res.Type == types.ResourceVenue {
			ctype = types.ConflictVenue
			noun = "venue"
			resolution = fmt.Sprintf("relocate one task or re-book %s for a different window", displayName(res))
		}

		out = append(out, types.Conflict{
			ID:       conflictID(ctype, ids, res.ID),
			Type:     ctype,
			Severity: severity,
			TaskIDs:  ids,
			Description: fmt.Sprintf("%s %s is over capacity: tasks %s need %d concurrently but only %d available",
				noun, displayName(res), joinIDs(ids), demand, capacityFor(capacities, res.ID)),
			SuggestedResolution: resolution,
		})
	}
	return out
}

func dependencyViolations(g *graph.Graph, order graph.Order, byID map[types.TaskID]types.Timeline) []types.Conflict {
	var out []types.Conflict
	for _, id := range g.Order {
		if order.InCycle(id) {
			continue
		}
		tl, ok := byID[id]
		if !ok {
			continue
		}
		for _, dep := range g.PrereqsOf(id) {
			dt, ok := byID[dep]
			if !ok {
				continue
			}

			violated := false
			if kind, _ := g.EdgeKind(dep, id); kind == graph.EdgeParent {
				violated = tl.Start.Before(dt.Start)
			} else {
				violated = tl.Start.Before(dt.End.Add(dt.Buffer.Std()))
			}
			if !violated {
				continue
			}

			ids := sortedIDs(dep, id)
			out = append(out, types.Conflict{
				ID:       conflictID(types.ConflictDependency, ids, ""),
				Type:     types.ConflictDependency,
				Severity: types.MaxPriority(g.Tasks[id].Priority, g.Tasks[dep].Priority),
				TaskIDs:  ids,
				Description: fmt.Sprintf("task %s starts before its prerequisite %s is cleared; the allocation is inconsistent",
					id, dep),
				SuggestedResolution: "re-run scheduling; if the violation persists, report it as an allocator defect",
			})
		}
	}
	return out
}

// reachability answers ancestor/descendant queries over the dependency
// graph, memoizing one DFS per queried source.
type reachability struct {
	g    *graph.Graph
	memo map[types.TaskID]map[types.TaskID]bool
}

func newReachability(g *graph.Graph) *reachability {
	return &reachability{g: g, memo: make(map[types.TaskID]map[types.TaskID]bool)}
}

func (r *reachability) related(a, b types.TaskID) bool {
	return r.reaches(a, b) || r.reaches(b, a)
}

func (r *reachability) reaches(from, to types.TaskID) bool {
	seen, ok := r.memo[from]
	if !ok {
		seen = make(map[types.TaskID]bool)
		stack := []types.TaskID{from}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range r.g.DependentsOf(id) {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
		r.memo[from] = seen
	}
	return seen[to]
}

func capacityFor(capacities map[string]int, resourceID string) int {
	if c, ok := capacities[resourceID]; ok && c > 0 {
		return c
	}
	return 1
}

func displayName(r types.Resource) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

func sortedIDs(ids ...types.TaskID) []types.TaskID {
	out := make([]types.TaskID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func joinIDs(ids []types.TaskID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

// conflictID derives a stable identifier from the conflict type, the sorted
// affected task IDs, and the resource instance when one is involved.
// Repeated detection passes over an unchanged schedule produce identical IDs.
func conflictID(ctype types.ConflictType, ids []types.TaskID, resourceID string) string {
	parts := make([]string, 0, len(ids)+2)
	parts = append(parts, string(ctype))
	for _, id := range ids {
		parts = append(parts, string(id))
	}
	if resourceID != "" {
		parts = append(parts, resourceID)
	}
	sum := blake3.Sum256([]byte(strings.Join(parts, "|")))
	return "cfl-" + hex.EncodeToString(sum[:])[:16]
}
