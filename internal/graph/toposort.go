package graph

import (
	"sort"

	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// Order is the scheduling order produced by Sort. Sequence always covers
// every task: the acyclic part in topological order followed by any cycled
// tasks in id-ascending order.
type Order struct {
	Sequence []types.TaskID
	Cycled   []types.TaskID
}

// InCycle reports whether the task was part of a broken cycle.
func (o Order) InCycle(id types.TaskID) bool {
	for _, c := range o.Cycled {
		if c == id {
			return true
		}
	}
	return false
}

// Sort runs Kahn's algorithm over the graph. The FIFO queue is seeded in
// consolidated task order and successors enqueue as their in-degree reaches
// zero, so the result is deterministic for a given input. Nodes left with
// nonzero in-degree form cycles; they are appended id-ascending rather than
// failing the sort.
func Sort(g *Graph) Order {
	inDeg := make(map[types.TaskID]int, len(g.Order))
	for id, d := range g.inDegree {
		inDeg[id] = d
	}

	queue := make([]types.TaskID, 0, len(g.Order))
	for _, id := range g.Order {
		if inDeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	sequence := make([]types.TaskID, 0, len(g.Order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sequence = append(sequence, id)

		for _, dep := range g.dependents[id] {
			inDeg[dep]--
			if inDeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	var cycled []types.TaskID
	if len(sequence) < len(g.Order) {
		for _, id := range g.Order {
			if inDeg[id] > 0 {
				cycled = append(cycled, id)
			}
		}
		sort.Slice(cycled, func(i, j int) bool { return cycled[i] < cycled[j] })
		sequence = append(sequence, cycled...)
	}

	return Order{Sequence: sequence, Cycled: cycled}
}
