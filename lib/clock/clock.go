// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time operations for testability. Production
// code injects Real(); tests inject a Fake with deterministic time
// control. Every harness function that would call time.Now, time.After,
// or time.Sleep accepts a Clock (or is a method on a struct with a
// Clock field) instead of calling the time package directly — that is
// what makes recorded timestamps and frame-gap measurements
// reproducible under test.
package clock

import "time"

// Clock provides the time operations the harness uses.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time after
	// duration d elapses. Equivalent to time.After. If d <= 0, the
	// channel receives immediately.
	After(d time.Duration) <-chan time.Time

	// Sleep pauses the current goroutine for at least duration d.
	// Equivalent to time.Sleep.
	Sleep(d time.Duration)
}
