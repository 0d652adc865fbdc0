package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceUsesDistinctNodesFirst(t *testing.T) {
	ring := NewRing(64)
	ring.SetNodes([]string{"node-1", "node-2", "node-3", "node-4", "node-5"})

	placed := ring.Place("file-abc", 5)
	assert.Len(t, placed, 5)

	seen := make(map[string]int)
	for _, id := range placed {
		seen[id]++
	}
	assert.Len(t, seen, 5, "five shards on five nodes must all land on distinct nodes")
}

func TestPlaceIsDeterministic(t *testing.T) {
	ring := NewRing(64)
	ring.SetNodes([]string{"node-1", "node-2", "node-3"})

	first := ring.Place("file-abc", 3)
	for i := 0; i < 25; i++ {
		assert.Equal(t, first, ring.Place("file-abc", 3))
	}
}

func TestPlaceWrapsWhenFleetIsSmall(t *testing.T) {
	ring := NewRing(64)
	ring.SetNodes([]string{"node-1", "node-2"})

	placed := ring.Place("file-abc", 5)
	assert.Len(t, placed, 5)

	counts := make(map[string]int)
	for _, id := range placed {
		counts[id]++
	}
	assert.Len(t, counts, 2)
	// Ring-walk repetition: 3/2 split, never 5/0.
	for id, n := range counts {
		assert.LessOrEqual(t, n, 3, "node %s over-placed", id)
	}
}

func TestPlaceOnEmptyRing(t *testing.T) {
	ring := NewRing(64)
	assert.Nil(t, ring.Place("file-abc", 3))
	assert.Equal(t, 0, ring.Size())
}

func TestSetNodesReplacesFleet(t *testing.T) {
	ring := NewRing(64)
	ring.SetNodes([]string{"node-1", "node-2", "node-3"})
	ring.SetNodes([]string{"node-9"})

	assert.Equal(t, 1, ring.Size())
	assert.Equal(t, []string{"node-9", "node-9"}, ring.Place("file-abc", 2))
}
