package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("breaker open")

// BreakerOpenError reports a short-circuited call with the remaining cooldown.
type BreakerOpenError struct {
	Target     string
	RetryAfter time.Duration
}

func (e *BreakerOpenError) Error() string {
	retry := e.RetryAfter
	if retry < 0 {
		retry = 0
	}
	return fmt.Sprintf("%v for %s: retry in %s", ErrBreakerOpen, e.Target, retry)
}

func (e *BreakerOpenError) Is(target error) bool {
	return target == ErrBreakerOpen
}

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateProbing
)

// BreakerConfig tunes one per-target breaker.
type BreakerConfig struct {
	// Threshold is the consecutive-failure count that opens the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before allowing a probe.
	Cooldown time.Duration
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.Threshold <= 0 {
		c.Threshold = 3
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 15 * time.Second
	}
	return c
}

// Breaker short-circuits calls against one unhealthy target. After Threshold
// consecutive failures it rejects calls for Cooldown, then lets a single
// probe through; a successful probe closes it again.
type Breaker struct {
	mu sync.Mutex

	target string
	cfg    BreakerConfig

	state    breakerState
	failures int
	until    time.Time
	probing  bool
}

// NewBreaker creates a closed breaker for one target.
func NewBreaker(target string, cfg BreakerConfig) *Breaker {
	return &Breaker{target: target, cfg: cfg.withDefaults()}
}

// Do runs fn unless the breaker is open. Context cancellation is not counted
// as a target failure.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := b.acquire(); err != nil {
		return err
	}

	err := fn(ctx)
	if errors.Is(err, context.Canceled) {
		b.release()
		return err
	}
	b.record(err == nil)
	return err
}

// Tripped reports whether the breaker currently rejects calls.
func (b *Breaker) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.step(time.Now())
	return b.state == stateOpen || (b.state == stateProbing && b.probing)
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.step(now)

	switch b.state {
	case stateOpen:
		return &BreakerOpenError{Target: b.target, RetryAfter: b.until.Sub(now)}
	case stateProbing:
		if b.probing {
			return &BreakerOpenError{Target: b.target, RetryAfter: b.until.Sub(now)}
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.state = stateClosed
		b.failures = 0
		b.probing = false
		return
	}

	switch b.state {
	case stateProbing:
		b.open(time.Now())
	default:
		b.failures++
		if b.failures >= b.cfg.Threshold {
			b.open(time.Now())
		}
	}
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

func (b *Breaker) open(now time.Time) {
	b.state = stateOpen
	b.until = now.Add(b.cfg.Cooldown)
	b.failures = 0
	b.probing = false
}

func (b *Breaker) step(now time.Time) {
	if b.state == stateOpen && !now.Before(b.until) {
		b.state = stateProbing
		b.probing = false
	}
}

// BreakerSet lazily manages one breaker per target key (e.g. per node id).
type BreakerSet struct {
	mu  sync.Mutex
	cfg BreakerConfig
	set map[string]*Breaker
}

// NewBreakerSet creates an empty set sharing one config.
func NewBreakerSet(cfg BreakerConfig) *BreakerSet {
	return &BreakerSet{cfg: cfg, set: make(map[string]*Breaker)}
}

// For returns the breaker for a target, creating it on first use.
func (s *BreakerSet) For(target string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.set[target]
	if !ok {
		b = NewBreaker(target, s.cfg)
		s.set[target] = b
	}
	return b
}

// Forget drops the breaker for a target that no longer exists.
func (s *BreakerSet) Forget(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.set, target)
}
