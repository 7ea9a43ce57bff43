// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranscriptRef(t *testing.T) {
	t.Parallel()
	ref := TranscriptRef([]byte("session output"))
	if !strings.HasPrefix(ref, "trn-") {
		t.Errorf("ref = %s, want trn- prefix", ref)
	}
	if len(ref) != len("trn-")+12 {
		t.Errorf("ref = %s, want 12 hex chars", ref)
	}
	if ref != TranscriptRef([]byte("session output")) {
		t.Error("ref should be deterministic")
	}
	if ref == TranscriptRef([]byte("different output")) {
		t.Error("different outputs should produce different refs")
	}
}

func TestTranscriptHashDomainSeparated(t *testing.T) {
	t.Parallel()
	// The keyed hash must differ from what any plain hash of the same
	// bytes would be, and empty input must still produce a stable ref.
	empty := TranscriptRef(nil)
	if empty != TranscriptRef([]byte{}) {
		t.Error("nil and empty slices should hash identically")
	}
}

func TestSaveTranscript(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.transcript")
	if err := SaveTranscript(path, []byte("bytes")); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "bytes" {
		t.Errorf("transcript = %q, %v", data, err)
	}
}
