package idgen

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Clock is the millisecond time source for the generator.
type Clock interface {
	// Now returns the current timestamp in milliseconds.
	Now() int64
}

// SystemClock reads the local system time.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().UnixMilli() }

// RedisClock reads time from the Redis TIME command so every API instance
// sequences ids against the same clock. It falls back to the system clock
// when Redis is unreachable.
type RedisClock struct {
	client *redis.Client
}

func NewRedisClock(client *redis.Client) *RedisClock {
	return &RedisClock{client: client}
}

func (r *RedisClock) Now() int64 {
	ts, err := r.client.Time(context.Background()).Result()
	if err != nil {
		return time.Now().UnixMilli()
	}
	return ts.UnixMilli()
}

// instanceCounterKey is the shared counter used to lease instance ids.
const instanceCounterKey = "cosmeon:idgen:instance"

// AllocateInstanceID leases a distinct generator instance id via a shared
// Redis counter, wrapping at the 8-bit instance space.
func AllocateInstanceID(ctx context.Context, client *redis.Client) (int64, error) {
	n, err := client.Incr(ctx, instanceCounterKey).Result()
	if err != nil {
		return 0, fmt.Errorf("lease instance id: %w", err)
	}
	return n & int64(MaxInstanceID), nil
}
