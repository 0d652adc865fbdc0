// Package idgen produces unique, time-ordered file identifiers.
package idgen

import (
	"errors"
	"strconv"
	"sync"
)

const (
	// 64-bit layout: 1 unused sign bit, 41 bits of milliseconds since the
	// epoch, 8 bits of instance id, 14 bits of per-millisecond sequence.
	instanceBits = 8
	sequenceBits = 14

	MaxInstanceID = -1 ^ (-1 << instanceBits)
	maxSequence   = -1 ^ (-1 << sequenceBits)

	instanceShift  = sequenceBits
	timestampShift = sequenceBits + instanceBits

	// Epoch is 2025-01-01 00:00:00 UTC in milliseconds.
	Epoch = 1735689600000
)

var (
	ErrInstanceIDRange = errors.New("instance id out of range")
	ErrClockMovedBack  = errors.New("clock moved backwards")
)

// Generator hands out snowflake ids. Safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	clock    Clock
	instance int64
	lastMS   int64
	sequence int64
}

// New creates a generator for one instance id.
func New(instanceID int64, clock Clock) (*Generator, error) {
	if instanceID < 0 || instanceID > int64(MaxInstanceID) {
		return nil, ErrInstanceIDRange
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Generator{clock: clock, instance: instanceID, lastMS: -1}, nil
}

// Next returns the next raw 64-bit id.
func (g *Generator) Next() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if now < g.lastMS {
		return 0, ErrClockMovedBack
	}

	if now == g.lastMS {
		g.sequence = (g.sequence + 1) & int64(maxSequence)
		if g.sequence == 0 {
			for now <= g.lastMS {
				now = g.clock.Now()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastMS = now

	id := ((now - Epoch) << timestampShift) |
		(g.instance << instanceShift) |
		g.sequence
	return id, nil
}

// NextString returns the next id formatted as a base-36 string, the form used
// for catalog file ids.
func (g *Generator) NextString() (string, error) {
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}
