// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"os"

	"github.com/frankentui/harness/lib/codec"
)

// Capture is a complete deterministic record of one session run,
// stored as canonical CBOR so byte-identical runs produce
// byte-identical capture files. Captures let a failing run be replayed
// through the validator and diffed against a passing one without the
// bridge.
type Capture struct {
	RunID         string           `cbor:"run_id"`
	Scenario      string           `cbor:"scenario"`
	Seed          int64            `cbor:"seed"`
	Outcome       string           `cbor:"outcome"`
	Errors        []string         `cbor:"errors,omitempty"`
	Frames        int              `cbor:"frames"`
	OutputSHA256  string           `cbor:"output_sha256"`
	ChecksumChain string           `cbor:"checksum_chain"`
	Output        []byte           `cbor:"output"`
	Events        []map[string]any `cbor:"events"`
}

// BuildCapture assembles a capture from a finished run.
func BuildCapture(recorder *Recorder, result *Result, runID string, seed int64) *Capture {
	return &Capture{
		RunID:         runID,
		Scenario:      result.Scenario,
		Seed:          seed,
		Outcome:       result.Outcome,
		Errors:        result.Errors,
		Frames:        result.Frames,
		OutputSHA256:  result.OutputSHA256,
		ChecksumChain: result.ChecksumChain,
		Output:        recorder.FullOutput(),
		Events:        recorder.Events(),
	}
}

// WriteCapture writes a capture to path as canonical CBOR.
func WriteCapture(path string, capture *Capture) error {
	data, err := codec.Marshal(capture)
	if err != nil {
		return fmt.Errorf("encoding capture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing capture %s: %w", path, err)
	}
	return nil
}

// ReadCapture reads a capture file written by WriteCapture.
func ReadCapture(path string) (*Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capture %s: %w", path, err)
	}
	var capture Capture
	if err := codec.Unmarshal(data, &capture); err != nil {
		return nil, fmt.Errorf("decoding capture %s: %w", path, err)
	}
	return &capture, nil
}
