package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker("node-1", BreakerConfig{Threshold: 2, Cooldown: 200 * time.Millisecond})
	fail := func(context.Context) error { return errors.New("probe failed") }

	if err := b.Do(context.Background(), fail); err == nil {
		t.Fatalf("expected first failure")
	}
	if err := b.Do(context.Background(), fail); err == nil {
		t.Fatalf("expected second failure")
	}
	if !b.Tripped() {
		t.Fatalf("expected breaker tripped after threshold")
	}

	err := b.Do(context.Background(), fail)
	if !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected open error, got %v", err)
	}
	var openErr *BreakerOpenError
	if !errors.As(err, &openErr) || openErr.Target != "node-1" {
		t.Fatalf("expected typed open error with target, got %v", err)
	}
}

func TestBreakerProbeClosesOnSuccess(t *testing.T) {
	b := NewBreaker("node-1", BreakerConfig{Threshold: 1, Cooldown: 50 * time.Millisecond})

	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("down") })
	time.Sleep(70 * time.Millisecond)

	if err := b.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	if b.Tripped() {
		t.Fatalf("expected breaker closed after successful probe")
	}
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b := NewBreaker("node-1", BreakerConfig{Threshold: 1, Cooldown: 40 * time.Millisecond})

	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("down") })
	time.Sleep(60 * time.Millisecond)
	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("still down") })

	if err := b.Do(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected reopened breaker, got %v", err)
	}
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b := NewBreaker("node-1", BreakerConfig{Threshold: 1, Cooldown: time.Minute})

	_ = b.Do(context.Background(), func(context.Context) error { return context.Canceled })

	if b.Tripped() {
		t.Fatalf("cancellation must not trip the breaker")
	}
}

func TestBreakerSetIsPerTarget(t *testing.T) {
	set := NewBreakerSet(BreakerConfig{Threshold: 1, Cooldown: time.Minute})
	fail := func(context.Context) error { return errors.New("down") }

	_ = set.For("node-1").Do(context.Background(), fail)

	if !set.For("node-1").Tripped() {
		t.Fatalf("node-1 breaker should be tripped")
	}
	if set.For("node-2").Tripped() {
		t.Fatalf("node-2 breaker must be independent")
	}

	set.Forget("node-1")
	if set.For("node-1").Tripped() {
		t.Fatalf("forgotten target should start with a fresh breaker")
	}
}
