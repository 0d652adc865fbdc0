package console

import (
	"context"
	"sync"
	"time"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

// SnapshotAPI is the read half of the API the session polls.
type SnapshotAPI interface {
	NodesStatus(ctx context.Context) (*port.NodesStatus, error)
	ListFiles(ctx context.Context) ([]domain.FileRecord, error)
}

// Snapshot is one poll result. Nodes and Files always hold usable values:
// a failed half degrades to its documented default (zero nodes, empty list)
// and the failure is recorded in Partial.
type Snapshot struct {
	Nodes   *port.NodesStatus
	Files   []domain.FileRecord
	Partial *PartialDataError
	TakenAt time.Time
}

// HasNode reports whether the node id appears in this snapshot.
func (s *Snapshot) HasNode(nodeID string) bool {
	if s == nil || s.Nodes == nil {
		return false
	}
	for _, n := range s.Nodes.Nodes {
		if n.ID == nodeID {
			return true
		}
	}
	return false
}

// HasFile reports whether the file id appears in this snapshot.
func (s *Snapshot) HasFile(fileID string) bool {
	if s == nil {
		return false
	}
	for _, f := range s.Files {
		if f.ID == fileID {
			return true
		}
	}
	return false
}

// DefaultPollInterval matches the UI refresh cadence the service was built
// around.
const DefaultPollInterval = 10 * time.Second

// Session owns the recurring node/file poll. It holds at most one snapshot;
// every poll replaces it wholesale, never merges.
type Session struct {
	api      SnapshotAPI
	interval time.Duration

	mu     sync.Mutex
	latest *Snapshot
}

// NewSession creates a session polling api at the given interval.
func NewSession(api SnapshotAPI, interval time.Duration) *Session {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Session{api: api, interval: interval}
}

// Latest returns the most recent snapshot, or nil before the first poll.
func (s *Session) Latest() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Run polls immediately and then on every tick until ctx is cancelled. A
// failed poll leaves defaults in the snapshot and retries on the next tick.
func (s *Session) Run(ctx context.Context) {
	s.Poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Poll(ctx)
		}
	}
}

// Poll fetches nodes and files in parallel and installs the result as the
// new snapshot. One half failing must not block or empty the other.
func (s *Session) Poll(ctx context.Context) *Snapshot {
	snap := &Snapshot{
		Nodes: &port.NodesStatus{Nodes: []domain.StorageNode{}},
		Files: []domain.FileRecord{},
	}
	failures := make(map[string]error)
	var mu sync.Mutex

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		nodes, err := s.api.NodesStatus(ctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures["nodes"] = err
			return
		}
		snap.Nodes = nodes
	}()
	go func() {
		defer wg.Done()
		files, err := s.api.ListFiles(ctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures["files"] = err
			return
		}
		if files != nil {
			snap.Files = files
		}
	}()
	wg.Wait()

	if len(failures) > 0 {
		snap.Partial = &PartialDataError{Parts: failures}
		logger.Warnw("Poll finished with partial data", "failed", snap.Partial.Error())
	}
	snap.TakenAt = time.Now()

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
	return snap
}
