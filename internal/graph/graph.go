// Package graph derives the dependency DAG from a consolidated task set and
// orders it topologically. Edges come from five derivations: explicit
// depends_on declarations, parent-child structure, sibling stage vocabulary,
// textual keyword cues, and fixed domain-flow rules.
package graph

import (
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// EdgeKind identifies how an edge was derived. Higher values are stronger;
// duplicate edges collapse to the strongest kind.
type EdgeKind int

const (
	// EdgeFlow comes from the fixed domain ordering rules.
	EdgeFlow EdgeKind = iota + 1
	// EdgeKeyword comes from "before"/"after"/"requires" cues in descriptions.
	EdgeKeyword
	// EdgeSibling orders same-parent siblings by stage vocabulary.
	EdgeSibling
	// EdgeParent makes a sub-task depend on its parent having started.
	EdgeParent
	// EdgeExplicit is a declared depends_on entry.
	EdgeExplicit
)

// String returns the kind name used in constraint notes.
func (k EdgeKind) String() string {
	switch k {
	case EdgeExplicit:
		return "explicit"
	case EdgeParent:
		return "parent"
	case EdgeSibling:
		return "sibling"
	case EdgeKeyword:
		return "keyword"
	case EdgeFlow:
		return "flow"
	default:
		return "unknown"
	}
}

// Edge is a directed dependency: From must be satisfied before To runs.
// Parent edges are start-to-start; every other kind is finish-to-start.
type Edge struct {
	From types.TaskID
	To   types.TaskID
}

// Graph is the dependency structure over one consolidated task set.
type Graph struct {
	// Order preserves consolidated task order for deterministic traversal.
	Order []types.TaskID
	Tasks map[types.TaskID]types.Task

	dependents map[types.TaskID][]types.TaskID
	prereqs    map[types.TaskID][]types.TaskID
	inDegree   map[types.TaskID]int

	kinds map[Edge]EdgeKind
	edges []Edge
}

// Build derives the dependency graph for the given tasks. Inputs are assumed
// reference-clean (consolidation drops dangling and self references);
// derived self-loops and duplicates are deduplicated silently.
func Build(tasks []types.Task) *Graph {
	g := &Graph{
		Order:      make([]types.TaskID, 0, len(tasks)),
		Tasks:      make(map[types.TaskID]types.Task, len(tasks)),
		dependents: make(map[types.TaskID][]types.TaskID),
		prereqs:    make(map[types.TaskID][]types.TaskID),
		inDegree:   make(map[types.TaskID]int, len(tasks)),
		kinds:      make(map[Edge]EdgeKind),
	}

	for _, t := range tasks {
		g.Order = append(g.Order, t.ID)
		g.Tasks[t.ID] = t
		g.inDegree[t.ID] = 0
	}

	g.addExplicitEdges(tasks)
	g.addParentEdges(tasks)
	g.addSiblingEdges(tasks)
	g.addKeywordEdges(tasks)
	g.addFlowEdges(tasks)

	return g
}

// addEdge records from -> to with the given kind. Self-loops are dropped;
// duplicates keep the strongest kind and their original position.
func (g *Graph) addEdge(from, to types.TaskID, kind EdgeKind) {
	if from == to {
		return
	}
	if _, ok := g.Tasks[from]; !ok {
		return
	}
	if _, ok := g.Tasks[to]; !ok {
		return
	}

	e := Edge{From: from, To: to}
	if existing, ok := g.kinds[e]; ok {
		if kind > existing {
			g.kinds[e] = kind
		}
		return
	}

	g.kinds[e] = kind
	g.edges = append(g.edges, e)
	g.dependents[from] = append(g.dependents[from], to)
	g.prereqs[to] = append(g.prereqs[to], from)
	g.inDegree[to]++
}

func (g *Graph) addExplicitEdges(tasks []types.Task) {
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			g.addEdge(dep, t.ID, EdgeExplicit)
		}
	}
}

func (g *Graph) addParentEdges(tasks []types.Task) {
	for _, t := range tasks {
		if t.ParentID != "" {
			g.addEdge(t.ParentID, t.ID, EdgeParent)
		}
	}
}

// addSiblingEdges orders same-parent siblings: early-stage vocabulary tasks
// precede late-stage ones.
func (g *Graph) addSiblingEdges(tasks []types.Task) {
	byParent := make(map[types.TaskID][]types.Task)
	var parents []types.TaskID
	for _, t := range tasks {
		if t.ParentID == "" {
			continue
		}
		if _, ok := byParent[t.ParentID]; !ok {
			parents = append(parents, t.ParentID)
		}
		byParent[t.ParentID] = append(byParent[t.ParentID], t)
	}

	for _, parent := range parents {
		siblings := byParent[parent]
		var early, late []types.TaskID
		for _, s := range siblings {
			switch classifyStage(s) {
			case stageEarly:
				early = append(early, s.ID)
			case stageLate:
				late = append(late, s.ID)
			}
		}
		for _, e := range early {
			for _, l := range late {
				g.addEdge(e, l, EdgeSibling)
			}
		}
	}
}

// addKeywordEdges scans descriptions for "after <name>", "requires <name>"
// and "before <name>" cues referencing other tasks by exact name.
func (g *Graph) addKeywordEdges(tasks []types.Task) {
	for _, t := range tasks {
		if t.Description == "" {
			continue
		}
		for _, other := range tasks {
			if other.ID == t.ID || other.Name == "" {
				continue
			}
			cues := findCues(t.Description, other.Name)
			if cues.after || cues.requires {
				g.addEdge(other.ID, t.ID, EdgeKeyword)
			}
			if cues.before {
				g.addEdge(t.ID, other.ID, EdgeKeyword)
			}
		}
	}
}

// addFlowEdges applies the fixed domain ordering: coordination after
// booking and contract work, setup after booking, contract and planning,
// execution after planning, coordination and setup.
func (g *Graph) addFlowEdges(tasks []types.Task) {
	byCategory := make(map[flowCategory][]types.TaskID)
	for _, t := range tasks {
		if cat := classifyFlow(t); cat != flowNone {
			byCategory[cat] = append(byCategory[cat], t.ID)
		}
	}

	rules := []struct {
		to   flowCategory
		from []flowCategory
	}{
		{flowCoordination, []flowCategory{flowBooking, flowContract}},
		{flowSetup, []flowCategory{flowBooking, flowContract, flowPlanning}},
		{flowExecution, []flowCategory{flowPlanning, flowCoordination, flowSetup}},
	}

	for _, rule := range rules {
		for _, target := range byCategory[rule.to] {
			for _, fromCat := range rule.from {
				for _, source := range byCategory[fromCat] {
					g.addEdge(source, target, EdgeFlow)
				}
			}
		}
	}
}

// EdgeKind reports the kind of the from -> to edge, if present.
func (g *Graph) EdgeKind(from, to types.TaskID) (EdgeKind, bool) {
	k, ok := g.kinds[Edge{From: from, To: to}]
	return k, ok
}

// PrereqsOf returns the prerequisites of a task in edge insertion order.
func (g *Graph) PrereqsOf(id types.TaskID) []types.TaskID {
	return g.prereqs[id]
}

// DependentsOf returns the tasks depending on id in edge insertion order.
func (g *Graph) DependentsOf(id types.TaskID) []types.TaskID {
	return g.dependents[id]
}

// InDegreeOf returns the number of prerequisites of a task.
func (g *Graph) InDegreeOf(id types.TaskID) int {
	return g.inDegree[id]
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Edges returns all edges in first-insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}
