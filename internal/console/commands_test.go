package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

type fakeCommandAPI struct {
	mu        sync.Mutex
	toggles   []string
	deletes   []string
	toggleErr error
	block     chan struct{}
}

func (f *fakeCommandAPI) SimulateFailure(ctx context.Context, nodeID string) (*port.ToggleResult, error) {
	if f.block != nil {
		<-f.block
	}
	if f.toggleErr != nil {
		return nil, f.toggleErr
	}
	f.mu.Lock()
	f.toggles = append(f.toggles, nodeID)
	f.mu.Unlock()
	return &port.ToggleResult{NodeID: nodeID, State: domain.NodeSimulatedFailure, Changed: true}, nil
}

func (f *fakeCommandAPI) Restore(ctx context.Context, nodeID string) (*port.ToggleResult, error) {
	return &port.ToggleResult{NodeID: nodeID, State: domain.NodeOnline, Changed: true}, nil
}

func (f *fakeCommandAPI) DeleteFile(ctx context.Context, fileID string) (*port.DeleteReport, error) {
	f.mu.Lock()
	f.deletes = append(f.deletes, fileID)
	f.mu.Unlock()
	return &port.DeleteReport{FileID: fileID, ShardsDeleted: 2}, nil
}

// sessionWithNodes builds a session whose next poll reports exactly these
// node ids.
func sessionWithNodes(ids ...string) *Session {
	nodes := make([]domain.StorageNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, domain.StorageNode{ID: id, State: domain.NodeOnline})
	}
	api := &fakeSnapshotAPI{
		nodes: func() (*port.NodesStatus, error) {
			return &port.NodesStatus{TotalNodes: len(nodes), Nodes: nodes}, nil
		},
		files: func() ([]domain.FileRecord, error) { return nil, nil },
	}
	return NewSession(api, time.Minute)
}

func TestToggleNodeReturnsTypedResult(t *testing.T) {
	api := &fakeCommandAPI{}
	cmd := NewCommander(api, sessionWithNodes("node-1"))

	res, err := cmd.ToggleNode(context.Background(), "node-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NodeID != "node-1" || res.State != domain.NodeSimulatedFailure || !res.Changed {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestToggleNodeRejectsConcurrentCommand(t *testing.T) {
	api := &fakeCommandAPI{block: make(chan struct{})}
	cmd := NewCommander(api, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := cmd.ToggleNode(context.Background(), "node-1", true); err != nil {
			t.Errorf("first toggle failed: %v", err)
		}
	}()

	// Wait until the first command holds the marker.
	deadline := time.After(time.Second)
	for {
		cmd.mu.Lock()
		_, held := cmd.inflight["node-1"]
		cmd.mu.Unlock()
		if held {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("first command never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := cmd.ToggleNode(context.Background(), "node-1", true); !errors.Is(err, ErrCommandInFlight) {
		t.Fatalf("expected ErrCommandInFlight, got %v", err)
	}
	close(api.block)
	wg.Wait()

	// Marker cleared, a retry must go through.
	api.block = nil
	if _, err := cmd.ToggleNode(context.Background(), "node-1", true); err != nil {
		t.Fatalf("retry after completion failed: %v", err)
	}
}

func TestToggleNodeDiscardsStaleResult(t *testing.T) {
	api := &fakeCommandAPI{}
	// The post-command poll no longer lists node-1.
	cmd := NewCommander(api, sessionWithNodes("node-2"))

	_, err := cmd.ToggleNode(context.Background(), "node-1", true)
	if !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
}

func TestToggleNodeClearsMarkerOnFailure(t *testing.T) {
	api := &fakeCommandAPI{toggleErr: errors.New("boom")}
	cmd := NewCommander(api, nil)

	if _, err := cmd.ToggleNode(context.Background(), "node-1", true); err == nil {
		t.Fatalf("expected failure")
	}

	// The failed command left the entity retryable.
	api.toggleErr = nil
	if _, err := cmd.ToggleNode(context.Background(), "node-1", true); err != nil {
		t.Fatalf("retry blocked after failure: %v", err)
	}
}

func TestDeleteFileReportsResult(t *testing.T) {
	api := &fakeCommandAPI{}
	cmd := NewCommander(api, sessionWithNodes("node-1"))

	report, err := cmd.DeleteFile(context.Background(), "f1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.FileID != "f1" || report.ShardsDeleted != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
