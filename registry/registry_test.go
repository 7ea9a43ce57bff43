// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	document := `{
		// registries accept comments
		"registry_version": "e2e-hash-registry-v1",
		"entries": [
			{
				"event_type": "span_diff_case",
				"hash_key": "alt-80x24-seed0",
				"field": "diff_hash",
				"value": "deadbeef",
				"case": "case_a",
				"step": null,
				"note": "pinned 2026-08"
			}
		]
	}`
	registry, err := Parse([]byte(document))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if registry.Version != Version {
		t.Errorf("Version = %q, want %q", registry.Version, Version)
	}
	if len(registry.Entries) != 1 {
		t.Fatalf("Entries = %v, want 1 entry", registry.Entries)
	}
	entry := registry.Entries[0]
	if entry.EventType != "span_diff_case" || entry.HashKey != "alt-80x24-seed0" ||
		entry.Field != "diff_hash" || entry.Value != "deadbeef" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Case == nil || *entry.Case != "case_a" {
		t.Errorf("Case = %v, want case_a", entry.Case)
	}
	if entry.Step != nil {
		t.Errorf("Step = %v, want nil", entry.Step)
	}
	if entry.Note == nil || *entry.Note != "pinned 2026-08" {
		t.Errorf("Note = %v, want pinned 2026-08", entry.Note)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	t.Parallel()
	goodEntry := `{"event_type": "span_diff_case", "hash_key": "k", "field": "diff_hash", "value": "v"}`

	tests := []struct {
		name     string
		document string
		want     string
	}{
		{
			name:     "wrong version",
			document: `{"registry_version": "e2e-hash-registry-v2", "entries": []}`,
			want:     "registry_version must be e2e-hash-registry-v1, got e2e-hash-registry-v2",
		},
		{
			name:     "missing version",
			document: `{"entries": []}`,
			want:     "registry_version must be a string",
		},
		{
			name:     "missing entries",
			document: `{"registry_version": "e2e-hash-registry-v1"}`,
			want:     "entries must be a list",
		},
		{
			name:     "non-object entry",
			document: `{"registry_version": "e2e-hash-registry-v1", "entries": [7]}`,
			want:     "registry entry 1 must be an object",
		},
		{
			name:     "missing event_type",
			document: `{"registry_version": "e2e-hash-registry-v1", "entries": [{"hash_key": "k", "field": "f", "value": "v"}]}`,
			want:     "registry entry 1 missing event_type",
		},
		{
			name:     "missing hash_key",
			document: `{"registry_version": "e2e-hash-registry-v1", "entries": [{"event_type": "t", "field": "f", "value": "v"}]}`,
			want:     "registry entry 1 missing hash_key",
		},
		{
			name:     "missing field",
			document: `{"registry_version": "e2e-hash-registry-v1", "entries": [{"event_type": "t", "hash_key": "k", "value": "v"}]}`,
			want:     "registry entry 1 missing field",
		},
		{
			name:     "non-string value",
			document: `{"registry_version": "e2e-hash-registry-v1", "entries": [{"event_type": "t", "hash_key": "k", "field": "f", "value": 7}]}`,
			want:     "registry entry 1 value must be a string",
		},
		{
			name:     "null value",
			document: `{"registry_version": "e2e-hash-registry-v1", "entries": [{"event_type": "t", "hash_key": "k", "field": "f", "value": null}]}`,
			want:     "registry entry 1 value must be a string",
		},
		{
			name:     "non-string case",
			document: `{"registry_version": "e2e-hash-registry-v1", "entries": [{"event_type": "t", "hash_key": "k", "field": "f", "value": "v", "case": 1}]}`,
			want:     "registry entry 1 case must be a string",
		},
		{
			name:     "second entry bad",
			document: `{"registry_version": "e2e-hash-registry-v1", "entries": [` + goodEntry + `, {"event_type": "t", "hash_key": "k", "field": "f", "value": "v", "step": []}]}`,
			want:     "registry entry 2 step must be a string",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(test.document))
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %q, want substring %q", err, test.want)
			}
		})
	}
}

func TestWriteIncludesNullNarrowers(t *testing.T) {
	t.Parallel()
	entries := []Entry{{
		EventType: "selector_case",
		HashKey:   "alt-80x24-seed0",
		Field:     "decision_hash",
		Value:     "cafe",
	}}
	var buffer bytes.Buffer
	if err := Write(&buffer, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	output := buffer.String()
	if !strings.HasSuffix(output, "\n") {
		t.Error("output should end with a newline")
	}
	var document map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &document); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if document["registry_version"] != Version {
		t.Errorf("registry_version = %v", document["registry_version"])
	}
	entry := document["entries"].([]any)[0].(map[string]any)
	for _, field := range []string{"case", "step", "note"} {
		value, present := entry[field]
		if !present {
			t.Errorf("entry should carry %s explicitly", field)
		} else if value != nil {
			t.Errorf("entry %s = %v, want null", field, value)
		}
	}
}

func TestWriteEmptyEntries(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	if err := Write(&buffer, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buffer.String(), `"entries": []`) {
		t.Errorf("output = %q, want empty entries array", buffer.String())
	}
}
