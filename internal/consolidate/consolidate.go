// Package consolidate merges the three upstream annotation sources into one
// unified task set. Upstream classifiers fail or return partial data
// routinely, so the merge never discards a task for missing fields; gaps are
// filled with defaults and surfaced as warnings.
package consolidate

import (
	"fmt"
	"time"

	"github.com/runsheethq/runsheet/internal/errors"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// Defaults applied when no source supplies a value.
const (
	DefaultPriority    = types.PriorityMedium
	DefaultDuration    = types.Duration(time.Hour)
	DefaultGranularity = types.GranularityTop
)

// Consolidated is the merge output: the unified task list in first-seen
// order plus every data-gap warning collected along the way.
type Consolidated struct {
	Tasks    []types.Task
	Warnings []string
}

// Merge combines the annotation sources into a unified task set.
//
// Tasks are keyed by id; the union of ids across all sources survives. On
// field disagreement the dependency source wins depends_on, resources and
// exclusive; the decomposition source wins duration, parent and granularity;
// the priority source wins priority. A task absent from a source keeps
// defaults for that source's fields and gains a warning.
//
// The only fatal condition is every source being empty.
func Merge(sources *types.SourceSet) (*Consolidated, error) {
	if sources.Empty() {
		return nil, errors.NewNoTaskDataError()
	}

	m := newMerger()

	if len(sources.Priorities) == 0 {
		m.warnf("priority source is empty; all tasks default to %s priority", DefaultPriority)
	}
	for _, ann := range sources.Priorities {
		if err := m.addPriority(ann); err != nil {
			return nil, err
		}
	}

	if len(sources.Decomposition) == 0 {
		m.warnf("decomposition source is empty; all tasks default to %s duration", DefaultDuration)
	}
	for _, ann := range sources.Decomposition {
		if err := m.addDecomposition(ann); err != nil {
			return nil, err
		}
	}

	if len(sources.Dependencies) == 0 {
		m.warnf("dependency source is empty; tasks carry no dependencies or resources")
	}
	for _, ann := range sources.Dependencies {
		if err := m.addDependency(ann); err != nil {
			return nil, err
		}
	}

	return m.finish()
}

// Normalize runs pre-merged tasks through the same validation pass Merge
// applies: defaults for missing fields, dangling and self references dropped
// with warnings, duplicate ids resolved first-wins. Callers that skip the
// three-source merge still get a consistent task set.
func Normalize(tasks []types.Task) (*Consolidated, error) {
	if len(tasks) == 0 {
		return nil, errors.NewNoTaskDataError()
	}

	m := newMerger()
	for _, t := range tasks {
		if err := m.addTask(t); err != nil {
			return nil, err
		}
	}

	return m.finish()
}

// merger accumulates per-task records across sources while preserving
// first-seen order.
type merger struct {
	order    []types.TaskID
	seen     map[types.TaskID]*record
	warnings []string
}

// record tracks which sources contributed which fields for one task.
type record struct {
	task types.Task

	havePriority      bool
	haveDecomposition bool
	haveDependency    bool
}

func newMerger() *merger {
	return &merger{seen: make(map[types.TaskID]*record)}
}

func (m *merger) warnf(format string, args ...interface{}) {
	m.warnings = append(m.warnings, fmt.Sprintf(format, args...))
}

// lookup returns the record for id, creating it on first sight. The source
// name is used for duplicate-id warnings.
func (m *merger) lookup(id types.TaskID, source string) (*record, bool, error) {
	if err := id.Validate(); err != nil {
		return nil, false, errors.NewInvalidAnnotationError(source, err.Error())
	}

	if rec, ok := m.seen[id]; ok {
		return rec, false, nil
	}

	rec := &record{task: types.Task{ID: id}}
	m.seen[id] = rec
	m.order = append(m.order, id)
	return rec, true, nil
}

func (m *merger) addPriority(ann types.PriorityAnnotation) error {
	rec, _, err := m.lookup(ann.TaskID, "priority")
	if err != nil {
		return err
	}
	if rec.havePriority {
		m.warnf("duplicate task id %s in priority source; keeping first occurrence", ann.TaskID)
		return nil
	}
	rec.havePriority = true

	if ann.Priority != "" {
		p, perr := types.NewPriority(ann.Priority.String())
		if perr != nil {
			m.warnf("task %s: invalid priority %q from priority source; defaulting to %s",
				ann.TaskID, ann.Priority.String(), DefaultPriority)
		} else {
			rec.task.Priority = p
		}
	}

	if rec.task.Name == "" {
		rec.task.Name = ann.Name
	}

	return nil
}

func (m *merger) addDecomposition(ann types.DecompositionAnnotation) error {
	rec, _, err := m.lookup(ann.TaskID, "decomposition")
	if err != nil {
		return err
	}
	if rec.haveDecomposition {
		m.warnf("duplicate task id %s in decomposition source; keeping first occurrence", ann.TaskID)
		return nil
	}
	rec.haveDecomposition = true

	if ann.EstimatedDuration > 0 {
		rec.task.EstimatedDuration = ann.EstimatedDuration
	} else if ann.EstimatedDuration < 0 {
		m.warnf("task %s: negative duration from decomposition source; defaulting to %s",
			ann.TaskID, DefaultDuration)
	}

	rec.task.ParentID = ann.ParentID
	rec.task.Granularity = m.clampGranularity(ann.TaskID, ann.Granularity)

	if rec.task.Name == "" {
		rec.task.Name = ann.Name
	}
	if rec.task.Description == "" {
		rec.task.Description = ann.Description
	}

	return nil
}

func (m *merger) addDependency(ann types.DependencyAnnotation) error {
	rec, _, err := m.lookup(ann.TaskID, "dependency")
	if err != nil {
		return err
	}
	if rec.haveDependency {
		m.warnf("duplicate task id %s in dependency source; keeping first occurrence", ann.TaskID)
		return nil
	}
	rec.haveDependency = true

	rec.task.DependsOn = append([]types.TaskID(nil), ann.DependsOn...)
	rec.task.Resources = m.cleanResources(ann.TaskID, ann.Resources)
	rec.task.Exclusive = ann.Exclusive

	if rec.task.Name == "" {
		rec.task.Name = ann.Name
	}

	return nil
}

// addTask ingests a pre-merged task as if every source had contributed it.
func (m *merger) addTask(t types.Task) error {
	rec, fresh, err := m.lookup(t.ID, "task")
	if err != nil {
		return err
	}
	if !fresh {
		m.warnf("duplicate task id %s; keeping first occurrence", t.ID)
		return nil
	}
	rec.havePriority = true
	rec.haveDecomposition = true
	rec.haveDependency = true

	rec.task = t
	rec.task.DependsOn = append([]types.TaskID(nil), t.DependsOn...)
	rec.task.Resources = m.cleanResources(t.ID, t.Resources)
	rec.task.Granularity = m.clampGranularity(t.ID, t.Granularity)

	if t.Priority != "" {
		p, perr := types.NewPriority(t.Priority.String())
		if perr != nil {
			m.warnf("task %s: invalid priority %q; defaulting to %s", t.ID, t.Priority.String(), DefaultPriority)
			rec.task.Priority = ""
		} else {
			rec.task.Priority = p
		}
	}

	if t.EstimatedDuration < 0 {
		m.warnf("task %s: negative duration; defaulting to %s", t.ID, DefaultDuration)
		rec.task.EstimatedDuration = 0
	}

	return nil
}

func (m *merger) clampGranularity(id types.TaskID, g types.GranularityLevel) types.GranularityLevel {
	if g < types.GranularityTop {
		m.warnf("task %s: granularity level %d below range; using %d", id, int(g), int(types.GranularityTop))
		return types.GranularityTop
	}
	if g > types.GranularityDetail {
		m.warnf("task %s: granularity level %d above range; using %d", id, int(g), int(types.GranularityDetail))
		return types.GranularityDetail
	}
	return g
}

// cleanResources drops malformed resource references, keeping the task.
func (m *merger) cleanResources(id types.TaskID, resources []types.Resource) []types.Resource {
	var out []types.Resource
	for _, res := range resources {
		if err := res.Validate(); err != nil {
			m.warnf("task %s: dropping invalid resource reference: %v", id, err)
			continue
		}
		out = append(out, res)
	}
	return out
}

// finish applies defaults, emits per-task data-gap warnings, and runs the
// reference validation pass.
func (m *merger) finish() (*Consolidated, error) {
	if len(m.order) == 0 {
		return nil, errors.NewNoTaskDataError()
	}

	anyPriority := false
	anyDecomposition := false
	anyDependency := false
	for _, id := range m.order {
		rec := m.seen[id]
		anyPriority = anyPriority || rec.havePriority
		anyDecomposition = anyDecomposition || rec.haveDecomposition
		anyDependency = anyDependency || rec.haveDependency
	}

	tasks := make([]types.Task, 0, len(m.order))
	for _, id := range m.order {
		rec := m.seen[id]

		// Gap warnings only when the source had data for other tasks;
		// entirely empty sources were flagged once already.
		if !rec.havePriority && anyPriority {
			m.warnf("task %s: missing from priority source; defaulting priority to %s", id, DefaultPriority)
		}
		if !rec.haveDecomposition && anyDecomposition {
			m.warnf("task %s: missing from decomposition source; defaulting duration to %s", id, DefaultDuration)
		}
		if !rec.haveDependency && anyDependency {
			m.warnf("task %s: missing from dependency source; assuming no dependencies", id)
		}

		task := rec.task
		if task.Priority == "" {
			task.Priority = DefaultPriority
		}
		if task.EstimatedDuration <= 0 {
			task.EstimatedDuration = DefaultDuration
		}
		if task.Name == "" {
			task.Name = string(task.ID)
		}

		tasks = append(tasks, task)
	}

	m.validateReferences(tasks)

	return &Consolidated{Tasks: tasks, Warnings: m.warnings}, nil
}

// validateReferences drops dangling and self dependency edges and clears
// dangling parents. Mutates tasks in place.
func (m *merger) validateReferences(tasks []types.Task) {
	for i := range tasks {
		task := &tasks[i]

		if task.ParentID != "" {
			if task.ParentID == task.ID {
				m.warnf("task %s: clearing self-referencing parent", task.ID)
				task.ParentID = ""
			} else if _, ok := m.seen[task.ParentID]; !ok {
				m.warnf("task %s: clearing unknown parent %s", task.ID, task.ParentID)
				task.ParentID = ""
			}
		}

		var deps []types.TaskID
		depSeen := make(map[types.TaskID]bool, len(task.DependsOn))
		for _, dep := range task.DependsOn {
			switch {
			case dep == task.ID:
				m.warnf("task %s: dropping self-dependency", task.ID)
			case depSeen[dep]:
				// duplicate edge, keep first
			default:
				if _, ok := m.seen[dep]; !ok {
					m.warnf("task %s: dropping dependency on unknown task %s", task.ID, dep)
					continue
				}
				depSeen[dep] = true
				deps = append(deps, dep)
			}
		}
		task.DependsOn = deps
	}
}
