package service

import (
	"context"
	"sync"
	"time"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/cosmeon/cosmeon/internal/api/config"
	"github.com/cosmeon/cosmeon/internal/api/metrics"
	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
	"github.com/cosmeon/cosmeon/pkg/resilience"
)

// ClusterServiceImpl builds registry snapshots by probing every configured
// node's bucket in parallel. Snapshots are cached for a short TTL and dropped
// eagerly whenever the simulation state changes.
type ClusterServiceImpl struct {
	cfg       *config.Config
	nodeStore port.NodeStore
	catalog   port.FileCatalog
	sim       *SimulationServiceImpl
	breakers  *resilience.BreakerSet

	mu         sync.Mutex
	cached     *domain.Snapshot
	cachedAt   time.Time
	generation uint64
}

// Ensure ClusterServiceImpl implements port.ClusterService.
var _ port.ClusterService = (*ClusterServiceImpl)(nil)

// NewClusterService builds the cluster service. Call BindSimulation before
// serving so simulated failures overlay the probe results.
func NewClusterService(cfg *config.Config, nodeStore port.NodeStore, catalog port.FileCatalog, breakers *resilience.BreakerSet) *ClusterServiceImpl {
	return &ClusterServiceImpl{
		cfg:       cfg,
		nodeStore: nodeStore,
		catalog:   catalog,
		breakers:  breakers,
	}
}

// BindSimulation attaches the simulation service after both exist. The two
// services reference each other, so wiring happens in two steps.
func (s *ClusterServiceImpl) BindSimulation(sim *SimulationServiceImpl) {
	s.sim = sim
}

// Invalidate drops the cached snapshot. Wired as the simulation service's
// change callback.
func (s *ClusterServiceImpl) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.generation++
	s.mu.Unlock()
}

// KnownNode reports whether the id belongs to the configured fleet.
func (s *ClusterServiceImpl) KnownNode(nodeID string) bool {
	for _, id := range s.cfg.Fleet.Nodes {
		if id == nodeID {
			return true
		}
	}
	return false
}

// Snapshot returns the current registry view, probing the fleet when the
// cached one expired. A later-finishing stale build never overwrites a
// snapshot produced after an invalidation.
func (s *ClusterServiceImpl) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	ttl := time.Duration(s.cfg.App.SnapshotTTLMS) * time.Millisecond

	s.mu.Lock()
	if s.cached != nil && time.Since(s.cachedAt) < ttl {
		snap := *s.cached
		s.mu.Unlock()
		return snap, nil
	}
	gen := s.generation
	s.mu.Unlock()

	snap, err := s.buildSnapshot(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	s.mu.Lock()
	if s.generation == gen {
		s.cached = &snap
		s.cachedAt = time.Now()
	}
	s.mu.Unlock()
	return snap, nil
}

func (s *ClusterServiceImpl) buildSnapshot(ctx context.Context) (domain.Snapshot, error) {
	started := time.Now()
	fleet := s.cfg.Fleet.Nodes
	usage := s.usageByNode(ctx)

	nodes := make([]domain.StorageNode, len(fleet))
	errs := resilience.ForEach(ctx, len(fleet), s.cfg.App.ParallelFetch, func(i int) error {
		nodes[i] = s.probeOne(ctx, i, fleet[i], usage)
		return nil
	})
	for _, err := range errs {
		if err != nil {
			return domain.Snapshot{}, err
		}
	}

	snap := domain.Snapshot{
		Nodes:   make(map[string]domain.StorageNode, len(nodes)),
		TakenAt: time.Now().UTC(),
	}
	for _, n := range nodes {
		snap.Nodes[n.ID] = n
	}

	metrics.SnapshotBuildSeconds.Observe(time.Since(started).Seconds())
	return snap, nil
}

// probeOne resolves one node's registry entry. Simulated failure wins over
// any probe result, and probe transport errors degrade the node to offline
// rather than failing the snapshot.
func (s *ClusterServiceImpl) probeOne(ctx context.Context, position int, nodeID string, usage map[string]nodeUsage) domain.StorageNode {
	node := domain.StorageNode{
		ID:            nodeID,
		State:         domain.NodeOnline,
		CapacityBytes: s.cfg.Fleet.CapacityBytes(position),
		UsedBytes:     usage[nodeID].bytes,
		FileCount:     usage[nodeID].files,
		LastChecked:   time.Now().UTC(),
	}

	if s.sim != nil && s.sim.Failed(nodeID) {
		node.State = domain.NodeSimulatedFailure
		metrics.NodeProbes.WithLabelValues("skipped").Inc()
		return node
	}

	err := s.breakers.For(nodeID).Do(ctx, func(ctx context.Context) error {
		probe, err := s.nodeStore.ProbeNode(ctx, nodeID)
		if err != nil {
			return err
		}
		if !probe.Reachable {
			node.State = domain.NodeSimulatedFailure
			logger.Warnw("Node bucket unreachable", "node_id", nodeID, "detail", probe.Detail)
		}
		return nil
	})
	if err != nil {
		node.State = domain.NodeSimulatedFailure
		logger.Warnw("Node probe failed", "node_id", nodeID, "err", err)
		metrics.NodeProbes.WithLabelValues("offline").Inc()
		return node
	}
	if node.State == domain.NodeOnline {
		metrics.NodeProbes.WithLabelValues("reachable").Inc()
	} else {
		metrics.NodeProbes.WithLabelValues("offline").Inc()
	}
	return node
}

type nodeUsage struct {
	bytes int64
	files int
}

// usageByNode attributes catalog shard sizes to their nodes. A catalog
// failure degrades to zero usage instead of failing the snapshot.
func (s *ClusterServiceImpl) usageByNode(ctx context.Context) map[string]nodeUsage {
	usage := make(map[string]nodeUsage, len(s.cfg.Fleet.Nodes))
	files, err := s.catalog.ListFiles(ctx)
	if err != nil {
		logger.Warnw("Catalog unavailable, node usage omitted from snapshot", "err", err)
		return usage
	}
	for _, f := range files {
		seen := make(map[string]struct{}, len(f.Shards))
		for _, shard := range f.Shards {
			u := usage[shard.NodeID]
			u.bytes += shard.SizeBytes
			if _, dup := seen[shard.NodeID]; !dup {
				u.files++
				seen[shard.NodeID] = struct{}{}
			}
			usage[shard.NodeID] = u
		}
	}
	return usage
}

// NodesStatus is the operator-facing shape of Snapshot, ordered by fleet
// position.
func (s *ClusterServiceImpl) NodesStatus(ctx context.Context) (*port.NodesStatus, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	status := &port.NodesStatus{
		TotalNodes: len(snap.Nodes),
		Nodes:      make([]domain.StorageNode, 0, len(snap.Nodes)),
	}
	for _, id := range s.cfg.Fleet.Nodes {
		node, ok := snap.Nodes[id]
		if !ok {
			continue
		}
		if node.Online() {
			status.OnlineNodes++
		}
		status.Nodes = append(status.Nodes, node)
	}
	return status, nil
}

// Summary rolls the current snapshot into the fleet classification.
func (s *ClusterServiceImpl) Summary(ctx context.Context) (domain.ClusterHealthSummary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.ClusterHealthSummary{}, err
	}
	return domain.Summarize(snap), nil
}
