// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package trace

// ExampleEvents returns one canonical example event per type at the
// given schema version. The examples double as living documentation of
// the trace format (printed by the validator's --print-examples) and
// as the fixture set for the validator's own tests: every example must
// validate cleanly against the current schema.
func ExampleEvents(schemaVersion string) map[string]map[string]any {
	return map[string]map[string]any{
		"env": {
			"schema_version": schemaVersion,
			"type":           "env",
			"timestamp":      "T000001",
			"run_id":         "run_123",
			"seed":           0,
			"host":           "ci",
			"rustc":          "rustc 1.x",
			"cargo":          "cargo 1.x",
			"git_commit":     "abc123",
			"git_dirty":      false,
			"deterministic":  true,
			"term":           "xterm-256color",
			"colorterm":      "truecolor",
			"no_color":       "",
		},
		"browser_env": {
			"schema_version":  schemaVersion,
			"type":            "browser_env",
			"timestamp":       "T000001",
			"run_id":          "run_123",
			"seed":            0,
			"browser":         "chromium",
			"browser_version": "123.0.0.0",
			"user_agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
			"dpr":             2.0,
			"platform":        "Linux x86_64",
			"locale":          "en-US",
			"timezone":        "UTC",
			"headless":        true,
			"viewport_css_px": map[string]any{"width": 1200, "height": 800},
			"viewport_px":     map[string]any{"width": 2400, "height": 1600},
			"zoom":            1.0,
		},
		"gpu_adapter": {
			"schema_version":      schemaVersion,
			"type":                "gpu_adapter",
			"timestamp":           "T000001",
			"run_id":              "run_123",
			"seed":                0,
			"api":                 "webgpu",
			"adapter_name":        "MockAdapter",
			"backend":             "wgpu",
			"vendor":              "0x1234",
			"device":              "0x5678",
			"description":         "Mock GPU adapter for tests",
			"features":            []any{"timestamp-query"},
			"limits":              map[string]any{"maxTextureDimension2D": 8192},
			"is_fallback_adapter": false,
		},
		"ws_metrics": {
			"schema_version":       schemaVersion,
			"type":                 "ws_metrics",
			"timestamp":            "T000001",
			"run_id":               "run_123",
			"seed":                 0,
			"label":                "bridge",
			"ws_url":               "ws://127.0.0.1:12345/ws",
			"bytes_tx":             1234,
			"bytes_rx":             5678,
			"messages_tx":          12,
			"messages_rx":          34,
			"connect_ms":           10,
			"reconnects":           0,
			"close_code":           nil,
			"close_reason":         "",
			"dropped_messages":     0,
			"rtt_histogram_ms":     map[string]any{"buckets": []any{1, 2, 5}, "counts": []any{10, 2, 1}},
			"latency_histogram_ms": map[string]any{"buckets": []any{1, 2, 5}, "counts": []any{8, 3, 1}},
		},
		"run_start": {
			"schema_version": schemaVersion,
			"type":           "run_start",
			"timestamp":      "T000002",
			"run_id":         "run_123",
			"seed":           0,
			"command":        "tests/e2e/scripts/run_all.sh",
			"log_dir":        "/tmp/ftui_e2e",
			"results_dir":    "/tmp/ftui_e2e/results",
		},
		"input": {
			"schema_version": schemaVersion,
			"type":           "input",
			"timestamp":      "T000002",
			"run_id":         "run_123",
			"seed":           0,
			"input_type":     "keys",
			"encoding":       "utf8",
			"bytes_b64":      "Y2VtZw==",
			"input_hash":     "deadbeef",
			"details":        "screen=2 keys=cemg",
		},
		"frame": {
			"schema_version": schemaVersion,
			"type":           "frame",
			"timestamp":      "T000002",
			"run_id":         "run_123",
			"seed":           0,
			"frame_idx":      1,
			"ts_ms":          16,
			"mode":           "alt",
			"hash_key":       "alt-80x24-seed0",
			"cols":           80,
			"rows":           24,
			"hash_algo":      "sha256",
			"frame_hash":     "deadbeef",
			"patch_hash":     "feedface",
			"patch_bytes":    2048,
			"patch_cells":    64,
			"patch_runs":     7,
			"render_ms":      3.1,
			"present_ms":     0.8,
			"present_bytes":  65536,
			"checksum_chain": "00ff00ff",
		},
		"step_end": {
			"schema_version": schemaVersion,
			"type":           "step_end",
			"timestamp":      "T000003",
			"run_id":         "run_123",
			"seed":           0,
			"step":           "inline",
			"status":         "passed",
			"duration_ms":    42,
			"mode":           "inline",
			"hash_key":       "inline-80x24-seed0",
			"cols":           80,
			"rows":           24,
		},
		"error": {
			"schema_version": schemaVersion,
			"type":           "error",
			"timestamp":      "T000003",
			"run_id":         "run_123",
			"seed":           0,
			"message":        "example failure",
			"exit_code":      1,
			"stack":          "",
			"details":        "case=core_navigation step=dashboard",
		},
		"case_step_start": {
			"schema_version": schemaVersion,
			"type":           "case_step_start",
			"timestamp":      "T000003",
			"run_id":         "run_123",
			"seed":           0,
			"case":           "core_navigation",
			"step":           "dashboard",
			"action":         "inject_keys",
			"details":        "screen=2 keys=cemg",
			"mode":           "alt",
			"hash_key":       "alt-80x24-seed0",
			"cols":           80,
			"rows":           24,
		},
		"case_step_end": {
			"schema_version": schemaVersion,
			"type":           "case_step_end",
			"timestamp":      "T000004",
			"run_id":         "run_123",
			"seed":           0,
			"case":           "core_navigation",
			"step":           "dashboard",
			"status":         "pass",
			"duration_ms":    1200,
			"action":         "inject_keys",
			"details":        "screen=2 keys=cemg",
			"mode":           "alt",
			"hash_key":       "alt-80x24-seed0",
			"cols":           80,
			"rows":           24,
		},
		"case": {
			"schema_version": schemaVersion,
			"type":           "case",
			"timestamp":      "T000005",
			"run_id":         "run_123",
			"seed":           0,
			"scenario":       "bidi",
			"mode":           "alt",
			"cols":           80,
			"rows":           24,
			"status":         "passed",
			"hash":           "deadbeef",
			"duration_ms":    100,
			"error":          "",
			"screen":         "31",
		},
		"pty_capture": {
			"schema_version":   schemaVersion,
			"type":             "pty_capture",
			"timestamp":        "T000004",
			"run_id":           "run_123",
			"seed":             0,
			"output_file":      "/tmp/out.pty",
			"canonical_file":   "",
			"output_sha256":    "deadbeef",
			"canonical_sha256": "",
			"output_bytes":     100,
			"canonical_bytes":  0,
			"cols":             80,
			"rows":             24,
			"exit_code":        0,
		},
		"artifact": {
			"schema_version": schemaVersion,
			"type":           "artifact",
			"timestamp":      "T000004",
			"run_id":         "run_123",
			"seed":           0,
			"artifact_type":  "log_dir",
			"path":           "/tmp/ftui_e2e",
			"status":         "present",
			"sha256":         "",
			"bytes":          0,
		},
		"large_screen_case": {
			"schema_version": schemaVersion,
			"type":           "large_screen_case",
			"timestamp":      "T000005",
			"run_id":         "run_123",
			"seed":           0,
			"case":           "large_inline",
			"status":         "passed",
			"screen_mode":    "inline",
			"cols":           200,
			"rows":           50,
			"ui_height":      12,
			"diff_bayesian":  true,
			"bocpd":          true,
			"conformal":      true,
			"evidence_jsonl": "/tmp/evidence.jsonl",
			"pty_output":     "/tmp/large.pty",
			"caps_file":      "/tmp/caps.txt",
			"duration_ms":    1234,
		},
	}
}
