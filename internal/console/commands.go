package console

import (
	"context"
	"errors"
	"sync"

	"github.com/cosmeon/cosmeon/internal/api/port"
)

var (
	// ErrCommandInFlight rejects a second command on the same entity while
	// the first is still running.
	ErrCommandInFlight = errors.New("a command for this entity is already running")

	// ErrStaleResult marks a completed command whose entity vanished from
	// the latest snapshot; its result was discarded, not applied.
	ErrStaleResult = errors.New("entity disappeared while the command ran, result discarded")
)

// CommandAPI is the mutating half of the API the commands drive.
type CommandAPI interface {
	SimulateFailure(ctx context.Context, nodeID string) (*port.ToggleResult, error)
	Restore(ctx context.Context, nodeID string) (*port.ToggleResult, error)
	DeleteFile(ctx context.Context, fileID string) (*port.DeleteReport, error)
}

// Commander runs operator commands against the API, serialized per entity.
// Confirmation and rendering stay with the caller, the commands only return
// typed results.
type Commander struct {
	api     CommandAPI
	session *Session

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewCommander creates a commander bound to a session. The session supplies
// the snapshot used for stale-result detection; nil is allowed for callers
// that do not poll.
func NewCommander(api CommandAPI, session *Session) *Commander {
	return &Commander{
		api:      api,
		session:  session,
		inflight: make(map[string]struct{}),
	}
}

// acquire claims the entity id for one command.
func (c *Commander) acquire(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.inflight[id]; held {
		return false
	}
	c.inflight[id] = struct{}{}
	return true
}

func (c *Commander) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
}

// ToggleNode runs one simulation transition. fail selects the direction.
// A node missing from the freshly polled snapshot makes the completed toggle
// stale: the result is discarded and ErrStaleResult returned.
func (c *Commander) ToggleNode(ctx context.Context, nodeID string, fail bool) (*port.ToggleResult, error) {
	if !c.acquire(nodeID) {
		return nil, ErrCommandInFlight
	}
	defer c.release(nodeID)

	var (
		res *port.ToggleResult
		err error
	)
	if fail {
		res, err = c.api.SimulateFailure(ctx, nodeID)
	} else {
		res, err = c.api.Restore(ctx, nodeID)
	}
	if err != nil {
		return nil, err
	}

	if c.session != nil {
		if snap := c.session.Poll(ctx); !snap.HasNode(nodeID) {
			return nil, ErrStaleResult
		}
	}
	return res, nil
}

// DeleteFile removes one file. Unlike toggles, the entity is expected to be
// gone afterwards, so staleness does not apply.
func (c *Commander) DeleteFile(ctx context.Context, fileID string) (*port.DeleteReport, error) {
	if !c.acquire(fileID) {
		return nil, ErrCommandInFlight
	}
	defer c.release(fileID)

	report, err := c.api.DeleteFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if c.session != nil {
		c.session.Poll(ctx)
	}
	return report, nil
}
