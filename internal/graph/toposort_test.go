package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

func TestSort_LinearChain(t *testing.T) {
	g := Build([]types.Task{
		task("c", withDeps("b")),
		task("b", withDeps("a")),
		task("a"),
	})

	order := Sort(g)

	assert.Equal(t, []types.TaskID{"a", "b", "c"}, order.Sequence)
	assert.Empty(t, order.Cycled)
}

func TestSort_TieBreaksFollowInputOrder(t *testing.T) {
	// Independent tasks come out in the order they went in, not sorted.
	g := Build([]types.Task{
		task("zeta"),
		task("alpha"),
		task("mike"),
	})

	order := Sort(g)

	assert.Equal(t, []types.TaskID{"zeta", "alpha", "mike"}, order.Sequence)
}

func TestSort_Deterministic(t *testing.T) {
	tasks := []types.Task{
		task("venue", withName("Book venue")),
		task("caterer", withName("Book caterer"), withDeps("venue")),
		task("menu", withName("Finalize menu"), withDeps("caterer")),
		task("invites", withName("Send invites"), withDeps("venue")),
		task("decor", withName("Install decor"), withDeps("venue")),
	}

	first := Sort(Build(tasks))
	for i := 0; i < 10; i++ {
		again := Sort(Build(tasks))
		require.Equal(t, first.Sequence, again.Sequence)
		require.Equal(t, first.Cycled, again.Cycled)
	}
}

func TestSort_CycleAppendedAscending(t *testing.T) {
	// y and x depend on each other; the untangled part schedules first and
	// the cycle members follow in id order.
	g := Build([]types.Task{
		task("y", withDeps("x")),
		task("x", withDeps("y")),
		task("a"),
	})

	order := Sort(g)

	assert.Equal(t, []types.TaskID{"a", "x", "y"}, order.Sequence)
	assert.Equal(t, []types.TaskID{"x", "y"}, order.Cycled)
	assert.True(t, order.InCycle("x"))
	assert.True(t, order.InCycle("y"))
	assert.False(t, order.InCycle("a"))
}

func TestSort_CycleDoesNotStallDownstream(t *testing.T) {
	// d depends on a cycle member, so it cannot leave the queue either; it
	// still appears in the final sequence.
	g := Build([]types.Task{
		task("a"),
		task("b", withDeps("c")),
		task("c", withDeps("b")),
		task("d", withDeps("c")),
	})

	order := Sort(g)

	assert.Len(t, order.Sequence, 4)
	assert.Equal(t, []types.TaskID{"b", "c", "d"}, order.Cycled)
}

func TestSort_EmptyGraph(t *testing.T) {
	order := Sort(Build(nil))

	assert.Empty(t, order.Sequence)
	assert.Empty(t, order.Cycled)
}

func TestSort_EveryTaskExactlyOnce(t *testing.T) {
	tasks := []types.Task{
		task("venue", withName("Book venue")),
		task("caterer", withName("Book caterer"), withDeps("venue")),
		task("band", withName("Book band"), withDeps("caterer", "venue")),
		task("loop-a", withDeps("loop-b")),
		task("loop-b", withDeps("loop-a")),
	}

	order := Sort(Build(tasks))

	require.Len(t, order.Sequence, len(tasks))
	seen := map[types.TaskID]bool{}
	for _, id := range order.Sequence {
		assert.False(t, seen[id], "duplicate task %s in sequence", id)
		seen[id] = true
	}
}
