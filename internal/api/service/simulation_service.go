package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/cosmeon/cosmeon/internal/api/metrics"
	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

// SimulationServiceImpl owns the per-node failure simulation state machine.
// State lives only in memory: a restart restores the whole fleet.
type SimulationServiceImpl struct {
	// known answers fleet membership, normally the cluster service's
	// KnownNode. Toggles on unknown ids are refused before touching state.
	known func(nodeID string) bool

	mu      sync.Mutex
	failed  map[string]time.Time
	history map[string]time.Time

	inflight *inflightRegistry

	// onChange is invoked after every effective transition so cached
	// registry snapshots can be dropped.
	onChange func()
}

// Ensure SimulationServiceImpl implements port.SimulationService.
var _ port.SimulationService = (*SimulationServiceImpl)(nil)

// NewSimulationService builds the simulation service.
func NewSimulationService(known func(nodeID string) bool, onChange func()) *SimulationServiceImpl {
	if onChange == nil {
		onChange = func() {}
	}
	return &SimulationServiceImpl{
		known:    known,
		failed:   make(map[string]time.Time),
		history:  make(map[string]time.Time),
		inflight: newInflightRegistry(),
		onChange: onChange,
	}
}

// SimulateFailure marks the node as failed. Marking an already-failed node is
// a no-op answered with Changed=false, never an error.
func (s *SimulationServiceImpl) SimulateFailure(ctx context.Context, nodeID string) (*port.ToggleResult, error) {
	return s.toggle(ctx, nodeID, "fail")
}

// Restore brings a simulated-failed node back online. Restoring an online
// node is the same benign no-op as failing a failed one.
func (s *SimulationServiceImpl) Restore(ctx context.Context, nodeID string) (*port.ToggleResult, error) {
	return s.toggle(ctx, nodeID, "restore")
}

func (s *SimulationServiceImpl) toggle(ctx context.Context, nodeID, action string) (*port.ToggleResult, error) {
	if !s.known(nodeID) {
		return nil, port.ErrNodeNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.inflight.acquire(nodeID) {
		metrics.SimulationToggles.WithLabelValues(action, "rejected").Inc()
		return nil, port.ErrOperationInFlight
	}
	defer s.inflight.release(nodeID)

	s.mu.Lock()
	_, isFailed := s.failed[nodeID]
	wantFailed := action == "fail"
	changed := isFailed != wantFailed
	if changed {
		if wantFailed {
			now := time.Now().UTC()
			s.failed[nodeID] = now
			s.history[nodeID] = now
		} else {
			delete(s.failed, nodeID)
		}
	}
	s.mu.Unlock()

	state := domain.NodeOnline
	if wantFailed {
		state = domain.NodeSimulatedFailure
	}

	if changed {
		metrics.SimulationToggles.WithLabelValues(action, "changed").Inc()
		logger.Infow("Simulation state changed", "node_id", nodeID, "state", state)
		s.onChange()
	} else {
		metrics.SimulationToggles.WithLabelValues(action, "noop").Inc()
		logger.Debugw("Simulation toggle was a no-op", "node_id", nodeID, "state", state)
	}

	return &port.ToggleResult{NodeID: nodeID, State: state, Changed: changed}, nil
}

// Failed reports whether the node is currently under simulated failure.
func (s *SimulationServiceImpl) Failed(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.failed[nodeID]
	return ok
}

// FailureInfo returns the current outages plus the first-failure history.
func (s *SimulationServiceImpl) FailureInfo() *port.FailureInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := make([]string, 0, len(s.failed))
	for id := range s.failed {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	history := make(map[string]time.Time, len(s.history))
	for id, at := range s.history {
		history[id] = at
	}

	return &port.FailureInfo{
		FailedNodes:  nodes,
		FailureCount: len(nodes),
		History:      history,
	}
}

// ClearAll restores every simulated-failed node and reports how many changed.
func (s *SimulationServiceImpl) ClearAll() int {
	s.mu.Lock()
	cleared := len(s.failed)
	s.failed = make(map[string]time.Time)
	s.mu.Unlock()

	if cleared > 0 {
		logger.Infow("Cleared all simulated failures", "count", cleared)
		s.onChange()
	}
	return cleared
}
