// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Step types understood by the driver.
const (
	StepSend   = "send"   // send terminal bytes to the bridge
	StepResize = "resize" // send a resize control request
	StepWait   = "wait"   // sleep for ms (default 100)
	StepDrain  = "drain"  // sleep 500 ms to let output settle
)

// Step is one scripted action. For send steps the payload comes from
// DataHex, DataB64, or Data (in that priority). DelayMS applies before
// the step's effect, on every step type.
type Step struct {
	Type      string `json:"type" yaml:"type"`
	DataHex   string `json:"data_hex,omitempty" yaml:"data_hex,omitempty"`
	DataB64   string `json:"data_b64,omitempty" yaml:"data_b64,omitempty"`
	Data      string `json:"data,omitempty" yaml:"data,omitempty"`
	Cols      int    `json:"cols,omitempty" yaml:"cols,omitempty"`
	Rows      int    `json:"rows,omitempty" yaml:"rows,omitempty"`
	DelayMS   int    `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty"`
	MS        *int   `json:"ms,omitempty" yaml:"ms,omitempty"`
	InputType string `json:"input_type,omitempty" yaml:"input_type,omitempty"`
	Comment   string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Payload decodes a send step's data: hex first, then base64, then
// the literal string as UTF-8 bytes. A step with none of the three
// yields an empty payload.
func (s Step) Payload() ([]byte, error) {
	if s.DataHex != "" {
		data, err := hex.DecodeString(s.DataHex)
		if err != nil {
			return nil, fmt.Errorf("decoding data_hex: %w", err)
		}
		return data, nil
	}
	if s.DataB64 != "" {
		data, err := base64.StdEncoding.DecodeString(s.DataB64)
		if err != nil {
			return nil, fmt.Errorf("decoding data_b64: %w", err)
		}
		return data, nil
	}
	return []byte(s.Data), nil
}

// WaitMS returns a wait step's duration, defaulting to 100 ms.
func (s Step) WaitMS() int {
	if s.MS == nil {
		return 100
	}
	return *s.MS
}

// Scenario is a scripted bridge session: initial geometry, a step
// sequence, and an overall timeout.
type Scenario struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	InitialCols int     `json:"initial_cols,omitempty" yaml:"initial_cols,omitempty"`
	InitialRows int     `json:"initial_rows,omitempty" yaml:"initial_rows,omitempty"`
	Steps       []Step  `json:"steps" yaml:"steps"`
	TimeoutS    float64 `json:"timeout_s,omitempty" yaml:"timeout_s,omitempty"`
}

// LoadScenario reads a scenario from path. YAML files (by .yaml/.yml
// extension) parse as YAML; everything else parses as JSON with
// comments and trailing commas allowed.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	var scenario Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &scenario); err != nil {
			return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &scenario); err != nil {
			return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
		}
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	scenario.applyDefaults()
	return &scenario, nil
}

// Validate checks scenario structure: a name, known step types, and
// positive geometry on resize steps.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name must not be empty")
	}
	for index, step := range s.Steps {
		switch step.Type {
		case StepSend, StepWait, StepDrain:
		case StepResize:
			if step.Cols <= 0 || step.Rows <= 0 {
				return fmt.Errorf("step %d: resize needs positive cols and rows", index)
			}
		default:
			return fmt.Errorf("step %d: unknown step type %q", index, step.Type)
		}
	}
	return nil
}

func (s *Scenario) applyDefaults() {
	if s.InitialCols <= 0 {
		s.InitialCols = 120
	}
	if s.InitialRows <= 0 {
		s.InitialRows = 40
	}
	if s.TimeoutS <= 0 {
		s.TimeoutS = 30
	}
}
