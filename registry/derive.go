// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frankentui/harness/trace"
)

// FieldTable maps registry-relevant event types to the hash fields
// harvested from them when deriving a registry.
type FieldTable map[string][]string

// DefaultFieldTable returns the built-in table of deterministic hash
// fields per event type.
func DefaultFieldTable() FieldTable {
	return FieldTable{
		"span_diff_case":        {"diff_hash"},
		"tile_skip_case":        {"diff_hash"},
		"selector_case":         {"decision_hash"},
		"budgeted_refresh_case": {"widget_refresh_hash"},
	}
}

type deriveKey struct {
	eventType string
	hashKey   string
	field     string
	caseName  string
	step      string
	hasCase   bool
	hasStep   bool
}

// Derive harvests registry entries from a known-good trace. Only
// passing events listed in the field table contribute; an event
// reporting two different values for the same (type, hash key, case,
// step, field) slot breaks the determinism contract and aborts the
// derivation with an error.
func Derive(lines []string, table FieldTable) ([]Entry, error) {
	entries := make(map[deriveKey]Entry)
	for lineIndex, line := range lines {
		lineNumber := lineIndex + 1
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		value, err := trace.DecodeLine(stripped)
		if err != nil {
			continue
		}
		event, ok := value.(map[string]any)
		if !ok {
			continue
		}
		eventType, ok := event["type"].(string)
		if !ok {
			continue
		}
		fields := table[eventType]
		if len(fields) == 0 {
			continue
		}
		if !trace.IsPassStatus(event["status"]) {
			continue
		}
		hashKey, ok := trace.EventHashKey(event)
		if !ok {
			continue
		}

		// Non-string case/step degrade to absent rather than failing:
		// the narrowing dimensions are best effort.
		caseName := optionalString(event["case"])
		step := optionalString(event["step"])

		for _, field := range fields {
			fieldValue, isString := event[field].(string)
			if !isString || fieldValue == "" {
				continue
			}
			key := deriveKey{
				eventType: eventType,
				hashKey:   hashKey,
				field:     field,
				hasCase:   caseName != nil,
				hasStep:   step != nil,
			}
			if caseName != nil {
				key.caseName = *caseName
			}
			if step != nil {
				key.step = *step
			}
			if existing, seen := entries[key]; seen && existing.Value != fieldValue {
				return nil, fmt.Errorf(
					"conflicting registry values for %s %s case=%v step=%v field=%s: %s vs %s (line %d)",
					eventType, hashKey, renderOptional(caseName), renderOptional(step),
					field, existing.Value, fieldValue, lineNumber)
			}
			entries[key] = Entry{
				EventType: eventType,
				HashKey:   hashKey,
				Field:     field,
				Value:     fieldValue,
				Case:      caseName,
				Step:      step,
			}
		}
	}

	result := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.EventType != b.EventType {
			return a.EventType < b.EventType
		}
		if a.HashKey != b.HashKey {
			return a.HashKey < b.HashKey
		}
		if ac, bc := derefOrEmpty(a.Case), derefOrEmpty(b.Case); ac != bc {
			return ac < bc
		}
		if as, bs := derefOrEmpty(a.Step), derefOrEmpty(b.Step); as != bs {
			return as < bs
		}
		return a.Field < b.Field
	})
	return result, nil
}

func optionalString(value any) *string {
	text, ok := value.(string)
	if !ok {
		return nil
	}
	return &text
}

func renderOptional(value *string) any {
	if value == nil {
		return "<nil>"
	}
	return *value
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
