// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry implements the hash registry: a versioned catalog
// of expected deterministic hash values, keyed by event type and hash
// key. Registries are checked against traces (advisory cross-checks
// reported as trace failures) and derived from known-good traces.
package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/jsonc"
)

// Version is the registry format identifier. A registry document
// naming any other version fails to load.
const Version = "e2e-hash-registry-v1"

// Entry pins one expected hash value. Case and Step, when present,
// narrow the entry to events carrying matching case/step fields; a nil
// Case or Step matches any event. Note is free-form provenance.
type Entry struct {
	EventType string  `json:"event_type"`
	HashKey   string  `json:"hash_key"`
	Field     string  `json:"field"`
	Value     string  `json:"value"`
	Case      *string `json:"case"`
	Step      *string `json:"step"`
	Note      *string `json:"note"`
}

// Registry is a loaded hash registry document.
type Registry struct {
	Version string  `json:"registry_version"`
	Entries []Entry `json:"entries"`
}

// Load reads and parses a registry document from path. The file may
// use JSONC comments and trailing commas.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry %s: %w", path, err)
	}
	registry, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return registry, nil
}

// Parse parses a registry document from JSONC bytes. Every structural
// problem is a fatal load error: a registry with a malformed entry is
// useless as an oracle, so there is no partial load.
func Parse(data []byte) (*Registry, error) {
	stripped := jsonc.ToJSON(data)

	var document struct {
		Version *string           `json:"registry_version"`
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(stripped, &document); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	if document.Version == nil {
		return nil, fmt.Errorf("registry_version must be a string")
	}
	if *document.Version != Version {
		return nil, fmt.Errorf("registry_version must be %s, got %s", Version, *document.Version)
	}
	if document.Entries == nil {
		return nil, fmt.Errorf("entries must be a list")
	}

	registry := &Registry{Version: *document.Version}
	for index, raw := range document.Entries {
		// 1-indexed in messages, matching trace line numbering.
		entry, err := parseEntry(raw, index+1)
		if err != nil {
			return nil, err
		}
		registry.Entries = append(registry.Entries, entry)
	}
	return registry, nil
}

func parseEntry(raw json.RawMessage, position int) (Entry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Entry{}, fmt.Errorf("registry entry %d must be an object", position)
	}

	entry := Entry{}
	var ok bool
	// A missing, empty, or non-string identifier all read as missing:
	// none of them can index the registry.
	if entry.EventType, ok = requiredString(fields["event_type"]); !ok {
		return Entry{}, fmt.Errorf("registry entry %d missing event_type", position)
	}
	if entry.HashKey, ok = requiredString(fields["hash_key"]); !ok {
		return Entry{}, fmt.Errorf("registry entry %d missing hash_key", position)
	}
	if entry.Field, ok = requiredString(fields["field"]); !ok {
		return Entry{}, fmt.Errorf("registry entry %d missing field", position)
	}
	// value must be a string, but unlike the identifiers it may be
	// empty (an empty expected hash is odd but well formed).
	valueRaw := fields["value"]
	if len(valueRaw) == 0 || valueRaw[0] != '"' {
		return Entry{}, fmt.Errorf("registry entry %d value must be a string", position)
	}
	if err := json.Unmarshal(valueRaw, &entry.Value); err != nil {
		return Entry{}, fmt.Errorf("registry entry %d value must be a string", position)
	}
	if err := unmarshalOptional(fields["case"], &entry.Case); err != nil {
		return Entry{}, fmt.Errorf("registry entry %d case must be a string", position)
	}
	if err := unmarshalOptional(fields["step"], &entry.Step); err != nil {
		return Entry{}, fmt.Errorf("registry entry %d step must be a string", position)
	}
	if err := unmarshalOptional(fields["note"], &entry.Note); err != nil {
		return Entry{}, fmt.Errorf("registry entry %d note must be a string", position)
	}
	return entry, nil
}

func requiredString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil || value == "" {
		return "", false
	}
	return value, true
}

// unmarshalOptional accepts absence, null, or a string.
func unmarshalOptional(raw json.RawMessage, target **string) error {
	if raw == nil || string(raw) == "null" {
		*target = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	*target = &value
	return nil
}

// Write serializes a registry as indented JSON with a trailing
// newline. Nil case/step/note serialize as null so derived registries
// are diffable against hand-maintained ones field for field.
func Write(w io.Writer, entries []Entry) error {
	document := Registry{Version: Version, Entries: entries}
	if document.Entries == nil {
		document.Entries = []Entry{}
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	return nil
}

// WriteFile writes a derived registry to path, or to stdout when path
// is "-".
func WriteFile(path string, entries []Entry) error {
	if path == "-" {
		return Write(os.Stdout, entries)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating registry %s: %w", path, err)
	}
	if err := Write(file, entries); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
