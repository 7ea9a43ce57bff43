// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package tracefile

import (
	"path/filepath"
	"testing"
)

func TestSinkRoundTripPlain(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "run.jsonl")
	writeLines(t, path, []string{`{"type":"env"}`, `{"type":"frame"}`})

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("line count: got %d, want 2", len(lines))
	}
	if lines[1] != `{"type":"frame"}` {
		t.Errorf("second line: got %q", lines[1])
	}
}

func TestSinkRoundTripCompressed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "run.jsonl.zst")
	writeLines(t, path, []string{`{"type":"env"}`, `{"type":"run_end"}`})

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("line count: got %d, want 2", len(lines))
	}
	if lines[0] != `{"type":"env"}` {
		t.Errorf("first line: got %q", lines[0])
	}
}

func TestSinkAppends(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "run.jsonl")
	writeLines(t, path, []string{"one"})
	writeLines(t, path, []string{"two"})

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("appended lines: got %v", lines)
	}
}

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	sink, err := NewSink(path)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	for _, line := range lines {
		if err := sink.WriteLine([]byte(line)); err != nil {
			t.Fatalf("WriteLine: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
