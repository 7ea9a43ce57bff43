// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Golden is a pinned session transcript: the expected final checksum
// chain plus context for diagnosing mismatches. Frames is -1 when the
// golden file does not pin a frame count.
type Golden struct {
	Scenario      string `json:"scenario,omitempty"`
	ChecksumChain string `json:"checksum_chain"`
	Frames        int    `json:"frames"`
	OutputSHA256  string `json:"output_sha256,omitempty"`
}

// LoadGolden reads a golden transcript from path (JSON with comments
// allowed).
func LoadGolden(path string) (*Golden, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading golden %s: %w", path, err)
	}
	golden := Golden{Frames: -1}
	if err := json.Unmarshal(jsonc.ToJSON(data), &golden); err != nil {
		return nil, fmt.Errorf("parsing golden %s: %w", path, err)
	}
	return &golden, nil
}

// WriteGolden pins a session summary as a golden transcript at path.
func WriteGolden(path string, summary Summary) error {
	golden := Golden{
		Scenario:      summary.Scenario,
		ChecksumChain: summary.ChecksumChain,
		Frames:        summary.Frames,
		OutputSHA256:  summary.OutputSHA256,
	}
	data, err := json.MarshalIndent(golden, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding golden: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing golden %s: %w", path, err)
	}
	return nil
}
