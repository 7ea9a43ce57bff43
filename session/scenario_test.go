// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadScenarioJSON(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "resize_storm.json", `{
		// rapid resize events
		"name": "resize_storm",
		"description": "Rapid resize events",
		"initial_cols": 120,
		"initial_rows": 40,
		"steps": [
			{"type": "send", "data_hex": "6c730a", "delay_ms": 100},
			{"type": "resize", "cols": 80, "rows": 24, "delay_ms": 50},
			{"type": "send", "data_b64": "bHMgLWxhCg==", "delay_ms": 100},
			{"type": "wait", "ms": 500},
			{"type": "drain"},
		],
		"timeout_s": 30,
	}`)
	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if scenario.Name != "resize_storm" || len(scenario.Steps) != 5 {
		t.Errorf("scenario = %+v", scenario)
	}

	payload, err := scenario.Steps[0].Payload()
	if err != nil || string(payload) != "ls\n" {
		t.Errorf("hex payload = %q, %v", payload, err)
	}
	payload, err = scenario.Steps[2].Payload()
	if err != nil || string(payload) != "ls -la\n" {
		t.Errorf("base64 payload = %q, %v", payload, err)
	}
	if scenario.Steps[3].WaitMS() != 500 {
		t.Errorf("WaitMS = %d", scenario.Steps[3].WaitMS())
	}
}

func TestLoadScenarioYAML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "typing.yaml", `
name: typing
initial_cols: 100
initial_rows: 30
steps:
  - type: send
    data: "hello\n"
  - type: wait
  - type: drain
`)
	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if scenario.Name != "typing" || scenario.InitialCols != 100 {
		t.Errorf("scenario = %+v", scenario)
	}
	payload, err := scenario.Steps[0].Payload()
	if err != nil || string(payload) != "hello\n" {
		t.Errorf("payload = %q, %v", payload, err)
	}
	// wait without ms defaults to 100.
	if scenario.Steps[1].WaitMS() != 100 {
		t.Errorf("WaitMS = %d", scenario.Steps[1].WaitMS())
	}
}

func TestLoadScenarioDefaults(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "minimal.json", `{"name": "minimal", "steps": []}`)
	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if scenario.InitialCols != 120 || scenario.InitialRows != 40 || scenario.TimeoutS != 30 {
		t.Errorf("defaults = %+v", scenario)
	}
}

func TestLoadScenarioRejectsInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no name", `{"steps": []}`, "name must not be empty"},
		{"unknown step", `{"name": "x", "steps": [{"type": "teleport"}]}`, `unknown step type "teleport"`},
		{"resize without geometry", `{"name": "x", "steps": [{"type": "resize"}]}`, "positive cols and rows"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, "bad.json", test.content)
			_, err := LoadScenario(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %q, want substring %q", err, test.want)
			}
		})
	}
}

func TestStepPayloadErrors(t *testing.T) {
	t.Parallel()
	if _, err := (Step{Type: StepSend, DataHex: "zz"}).Payload(); err == nil {
		t.Error("expected error for bad hex")
	}
	if _, err := (Step{Type: StepSend, DataB64: "!!"}).Payload(); err == nil {
		t.Error("expected error for bad base64")
	}
	payload, err := (Step{Type: StepSend}).Payload()
	if err != nil || len(payload) != 0 {
		t.Errorf("empty step payload = %q, %v", payload, err)
	}
}
