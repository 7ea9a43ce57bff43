// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/frankentui/harness/lib/clock"
)

// failingSink rejects every write, standing in for a full disk.
type failingSink struct {
	err error
}

func (s failingSink) WriteLine(line []byte) error { return s.err }
func (s failingSink) Close() error                { return nil }

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	return NewRecorder(RecorderConfig{
		RunID:         "remote-00000000",
		Scenario:      "test",
		Seed:          0,
		InitialCols:   80,
		InitialRows:   24,
		Deterministic: true,
		TimestepMS:    100,
		Clock:         clock.Fake(time.Unix(1700000000, 0)),
	})
}

func TestChecksumChainConstruction(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	chunks := [][]byte{[]byte("hello"), []byte("world")}
	for _, chunk := range chunks {
		if err := recorder.RecordOutput(chunk, nil); err != nil {
			t.Fatalf("RecordOutput: %v", err)
		}
	}

	expected := initialChecksumChain
	for _, chunk := range chunks {
		expected = sha256Hex([]byte(expected + sha256Hex(chunk)))
	}
	if got := recorder.FinalChecksum(); got != expected {
		t.Errorf("FinalChecksum = %s, want %s", got, expected)
	}
	if !bytes.Equal(recorder.FullOutput(), []byte("helloworld")) {
		t.Errorf("FullOutput = %q", recorder.FullOutput())
	}
}

func TestChecksumChainDependsOnChunking(t *testing.T) {
	t.Parallel()
	// The chain hashes per-chunk digests, so the same bytes split
	// differently must produce a different chain. This is what makes
	// the chain an ordering and framing oracle, not just a content
	// digest.
	first := newTestRecorder(t)
	first.RecordOutput([]byte("ab"), nil)
	first.RecordOutput([]byte("c"), nil)

	second := newTestRecorder(t)
	second.RecordOutput([]byte("abc"), nil)

	if first.FinalChecksum() == second.FinalChecksum() {
		t.Error("different chunkings should produce different chains")
	}
	if !bytes.Equal(first.FullOutput(), second.FullOutput()) {
		t.Error("outputs should match byte for byte")
	}
}

func TestChecksumChainReproducible(t *testing.T) {
	t.Parallel()
	first := newTestRecorder(t)
	second := newTestRecorder(t)
	for _, chunk := range [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")} {
		first.RecordOutput(chunk, nil)
		second.RecordOutput(chunk, nil)
	}
	if first.FinalChecksum() != second.FinalChecksum() {
		t.Error("identical chunk sequences should produce identical chains")
	}
}

func TestRecordOutputFrameEvent(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	if err := recorder.RecordOutput([]byte("abc"), nil); err != nil {
		t.Fatalf("RecordOutput: %v", err)
	}
	events := recorder.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	frame := events[0]
	if frame["type"] != "frame" {
		t.Errorf("type = %v", frame["type"])
	}
	if frame["frame_idx"] != 1 {
		t.Errorf("frame_idx = %v, want 1", frame["frame_idx"])
	}
	if frame["hash_key"] != "remote-80x24-seed0" {
		t.Errorf("hash_key = %v", frame["hash_key"])
	}
	chunkHash := sha256Hex([]byte("abc"))
	if frame["frame_hash"] != "sha256:"+chunkHash {
		t.Errorf("frame_hash = %v", frame["frame_hash"])
	}
	if frame["patch_hash"] != "sha256:"+chunkHash {
		t.Errorf("patch_hash = %v", frame["patch_hash"])
	}
	if frame["patch_bytes"] != 3 || frame["patch_cells"] != 3 || frame["patch_runs"] != 1 {
		t.Errorf("patch proxies = %v/%v/%v", frame["patch_bytes"], frame["patch_cells"], frame["patch_runs"])
	}
	chain, _ := frame["checksum_chain"].(string)
	if !strings.HasPrefix(chain, "sha256:") {
		t.Errorf("checksum_chain = %v", frame["checksum_chain"])
	}
}

func TestRecordOutputOverridesAdoptGeometry(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	overrides := map[string]any{
		"frame_hash":       "sha256:override",
		"interaction_hash": "fnv1a64:1234",
		"selection_active": true,
		"cols":             100,
		"rows":             50,
	}
	if err := recorder.RecordOutput([]byte("abc"), overrides); err != nil {
		t.Fatalf("RecordOutput: %v", err)
	}
	frame := recorder.Events()[0]
	if frame["frame_hash"] != "sha256:override" {
		t.Errorf("frame_hash = %v, want override", frame["frame_hash"])
	}
	if frame["interaction_hash"] != "fnv1a64:1234" {
		t.Errorf("interaction_hash = %v", frame["interaction_hash"])
	}
	if frame["selection_active"] != true {
		t.Errorf("selection_active = %v", frame["selection_active"])
	}
	cols, rows := recorder.Geometry()
	if cols != 100 || rows != 50 {
		t.Errorf("geometry = %dx%d, want 100x50", cols, rows)
	}
	// The next derived hash key reflects the adopted geometry.
	if key := recorder.HashKey(); key != "remote-100x50-seed0" {
		t.Errorf("HashKey = %s", key)
	}
}

func TestDeterministicTimestamps(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	recorder.Emit("run_start", map[string]any{"command": "x"})
	recorder.Emit("run_end", map[string]any{"status": "passed"})
	events := recorder.Events()
	if events[0]["timestamp"] != "T000000" {
		t.Errorf("first timestamp = %v", events[0]["timestamp"])
	}
	if events[1]["timestamp"] != "T000100" {
		t.Errorf("second timestamp = %v", events[1]["timestamp"])
	}
}

func TestEmitEnvelope(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	recorder.Emit("error", map[string]any{"message": "boom"})
	event := recorder.Events()[0]
	if event["schema_version"] != "e2e-jsonl-v1" {
		t.Errorf("schema_version = %v", event["schema_version"])
	}
	if event["run_id"] != "remote-00000000" {
		t.Errorf("run_id = %v", event["run_id"])
	}
	if event["seed"] != int64(0) {
		t.Errorf("seed = %v (%T)", event["seed"], event["seed"])
	}
	if event["message"] != "boom" {
		t.Errorf("message = %v", event["message"])
	}
}

func TestSinkFailureSticky(t *testing.T) {
	t.Parallel()
	recorder := NewRecorder(RecorderConfig{
		RunID:         "remote-00000000",
		Scenario:      "test",
		Deterministic: true,
		Clock:         clock.Fake(time.Unix(1700000000, 0)),
		Sink:          failingSink{err: errors.New("disk full")},
	})
	if err := recorder.Emit("env", nil); err == nil {
		t.Fatal("expected an emit error")
	}
	recorder.Emit("run_start", nil)

	// SinkErr keeps the first failure; later failures do not replace it.
	err := recorder.SinkErr()
	if err == nil || !strings.Contains(err.Error(), "writing env event") {
		t.Errorf("SinkErr = %v, want the env write failure", err)
	}
	// The in-memory event log keeps accumulating past the failure.
	if got := len(recorder.Events()); got != 2 {
		t.Errorf("events = %d, want 2", got)
	}
}

func TestSummaryCounters(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	recorder.RecordSend([]byte("ls\n"))
	recorder.RecordReceive()
	recorder.RecordOutput([]byte("output"), nil)
	summary := recorder.Summary()
	if summary.WSInBytes != 3 || summary.WSOutBytes != 6 {
		t.Errorf("bytes = %d/%d", summary.WSInBytes, summary.WSOutBytes)
	}
	if summary.MessagesTx != 1 || summary.MessagesRx != 1 {
		t.Errorf("messages = %d/%d", summary.MessagesTx, summary.MessagesRx)
	}
	if summary.Frames != 1 {
		t.Errorf("frames = %d", summary.Frames)
	}
	if !strings.HasPrefix(summary.OutputSHA256, "sha256:") ||
		!strings.HasPrefix(summary.ChecksumChain, "sha256:") {
		t.Errorf("summary digests = %+v", summary)
	}
	if summary.OutputSHA256 != "sha256:"+sha256Hex([]byte("output")) {
		t.Errorf("OutputSHA256 = %s", summary.OutputSHA256)
	}
}
