// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeSleepAdvances(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := Fake(start)

	fake.Sleep(250 * time.Millisecond)
	if got := fake.Now(); !got.Equal(start.Add(250 * time.Millisecond)) {
		t.Errorf("after Sleep: got %v, want %v", got, start.Add(250*time.Millisecond))
	}

	fake.Advance(time.Second)
	if got := fake.Now(); !got.Equal(start.Add(1250 * time.Millisecond)) {
		t.Errorf("after Advance: got %v, want %v", got, start.Add(1250*time.Millisecond))
	}
}

func TestFakeAfterDeliversImmediately(t *testing.T) {
	t.Parallel()
	fake := Fake(time.Unix(0, 0))

	select {
	case fired := <-fake.After(5 * time.Second):
		if !fired.Equal(time.Unix(5, 0)) {
			t.Errorf("fire time: got %v, want %v", fired, time.Unix(5, 0))
		}
	default:
		t.Fatal("After channel did not deliver immediately")
	}
}

func TestFakeNegativeDurationDoesNotRewind(t *testing.T) {
	t.Parallel()
	start := time.Unix(100, 0)
	fake := Fake(start)
	fake.Sleep(-time.Second)
	if got := fake.Now(); !got.Equal(start) {
		t.Errorf("negative sleep moved the clock: got %v, want %v", got, start)
	}
}
