// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package envprobe

import "testing"

func TestCommandVersionMissingCommand(t *testing.T) {
	t.Parallel()
	if got := CommandVersion("definitely-not-a-real-command-7f3a"); got != Unknown {
		t.Errorf("missing command: got %q, want %q", got, Unknown)
	}
}

func TestCommandVersionKnownCommand(t *testing.T) {
	t.Parallel()
	// go is guaranteed present wherever the tests run.
	got := CommandVersion("go")
	if got == Unknown {
		t.Skip("go --version probe unavailable in this environment")
	}
	if got == "" {
		t.Error("probe returned an empty version line")
	}
}
