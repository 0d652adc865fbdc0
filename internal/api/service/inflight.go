package service

import "sync"

// inflightRegistry serializes mutating operations per entity id. A claim is
// held for the whole operation and released on completion, success or not.
type inflightRegistry struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{ids: make(map[string]struct{})}
}

// acquire claims the id. It returns false when a prior claim is still held,
// in which case the caller must reject with ErrOperationInFlight.
func (r *inflightRegistry) acquire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, held := r.ids[id]; held {
		return false
	}
	r.ids[id] = struct{}{}
	return true
}

func (r *inflightRegistry) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, id)
}
