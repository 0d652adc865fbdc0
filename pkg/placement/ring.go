// Package placement maps shard indices to storage nodes using a consistent
// hashing ring, so a file's shards land on distinct nodes whenever the fleet
// is large enough and placement stays stable as nodes come and go.
package placement

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultVirtualNodes is the number of ring points per physical node. More
// points smooth the distribution at the cost of ring size.
const DefaultVirtualNodes = 128

type point struct {
	token  uint64
	nodeID string
}

// Ring is a consistent-hash ring over the current node fleet. The fleet is
// replaced wholesale from each registry snapshot; the ring never merges
// partial updates.
type Ring struct {
	mu      sync.RWMutex
	points  []point
	nodes   map[string]struct{}
	perNode int
}

// NewRing creates an empty ring with the given virtual-node count.
func NewRing(virtualNodes int) *Ring {
	if virtualNodes <= 0 {
		virtualNodes = DefaultVirtualNodes
	}
	return &Ring{nodes: make(map[string]struct{}), perNode: virtualNodes}
}

// SetNodes replaces the fleet with the given node ids.
func (r *Ring) SetNodes(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nodes = make(map[string]struct{}, len(ids))
	r.points = r.points[:0]
	for _, id := range ids {
		if _, dup := r.nodes[id]; dup {
			continue
		}
		r.nodes[id] = struct{}{}
		for v := 0; v < r.perNode; v++ {
			token := murmur3.Sum64([]byte(fmt.Sprintf("%s#%d", id, v)))
			r.points = append(r.points, point{token: token, nodeID: id})
		}
	}
	sort.Slice(r.points, func(i, j int) bool { return r.points[i].token < r.points[j].token })
}

// Size returns the number of physical nodes on the ring.
func (r *Ring) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Place returns count node ids for the shards of one key. Distinct nodes are
// used first, in ring-walk order starting at the key's token; when count
// exceeds the fleet, the walk order repeats so every shard still gets a home.
// An empty ring places nothing.
func (r *Ring) Place(key string, count int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if count <= 0 || len(r.points) == 0 {
		return nil
	}

	start := sort.Search(len(r.points), func(i int) bool {
		return r.points[i].token >= murmur3.Sum64([]byte(key))
	})
	if start == len(r.points) {
		start = 0
	}

	order := make([]string, 0, len(r.nodes))
	seen := make(map[string]struct{}, len(r.nodes))
	for i := 0; len(order) < len(r.nodes) && i < len(r.points); i++ {
		p := r.points[(start+i)%len(r.points)]
		if _, dup := seen[p.nodeID]; dup {
			continue
		}
		seen[p.nodeID] = struct{}{}
		order = append(order, p.nodeID)
	}

	placed := make([]string, count)
	for i := 0; i < count; i++ {
		placed[i] = order[i%len(order)]
	}
	return placed
}
