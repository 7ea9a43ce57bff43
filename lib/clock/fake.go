// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time.
//
// The fake auto-advances: Sleep moves the clock forward by the full
// duration and returns immediately, and After delivers on an
// already-filled channel after advancing. Tests therefore never block
// on scripted delays, and elapsed-time measurements (step durations,
// frame gaps) come out exactly equal to the durations slept.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After advances the clock by d and returns a channel that already
// holds the new current time.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	channel := make(chan time.Time, 1)
	channel <- c.advance(d)
	return channel
}

// Sleep advances the clock by d and returns immediately.
func (c *FakeClock) Sleep(d time.Duration) {
	c.advance(d)
}

// Advance moves the clock forward by d without an associated sleep.
// Use this to simulate time passing between recorded frames.
func (c *FakeClock) Advance(d time.Duration) {
	c.advance(d)
}

func (c *FakeClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.current = c.current.Add(d)
	}
	return c.current
}
