package idgen

import (
	"sync"
	"testing"
)

type fakeClock struct {
	mu sync.Mutex
	ms int64
}

func (c *fakeClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms++
	return Epoch + c.ms
}

func TestGeneratorIDsAreUniqueAndOrdered(t *testing.T) {
	gen, err := New(7, &fakeClock{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	seen := make(map[int64]struct{})
	var prev int64 = -1
	for i := 0; i < 10000; i++ {
		id, err := gen.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
		if id <= prev {
			t.Fatalf("ids not increasing: %d after %d", id, prev)
		}
		prev = id
	}
}

func TestGeneratorRejectsBadInstanceID(t *testing.T) {
	if _, err := New(MaxInstanceID+1, nil); err != ErrInstanceIDRange {
		t.Fatalf("expected ErrInstanceIDRange, got %v", err)
	}
	if _, err := New(-1, nil); err != ErrInstanceIDRange {
		t.Fatalf("expected ErrInstanceIDRange, got %v", err)
	}
}

type frozenClock struct{ ms int64 }

func (c frozenClock) Now() int64 { return c.ms }

func TestGeneratorDetectsClockMovingBack(t *testing.T) {
	gen, err := New(1, frozenClock{ms: Epoch + 1000})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := gen.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}

	gen.clock = frozenClock{ms: Epoch + 500}
	if _, err := gen.Next(); err != ErrClockMovedBack {
		t.Fatalf("expected ErrClockMovedBack, got %v", err)
	}
}

func TestNextStringIsBase36(t *testing.T) {
	gen, err := New(1, &fakeClock{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := gen.NextString()
	if err != nil {
		t.Fatalf("NextString: %v", err)
	}
	if id == "" {
		t.Fatalf("empty id")
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
			t.Fatalf("unexpected rune %q in id %s", r, id)
		}
	}
}
