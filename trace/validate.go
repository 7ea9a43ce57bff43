// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Failure is one validation finding, tied to a 1-indexed trace line.
// Failures are collected values, never panics or errors: the caller
// decides whether any failure is fatal (strict mode) or advisory.
type Failure struct {
	Line    int
	Message string
}

func (f Failure) String() string {
	return fmt.Sprintf("line %d: %s", f.Line, f.Message)
}

// DecodeLine parses one trace line into a JSON value. Numbers are
// decoded as json.Number so the integer/number distinction survives
// (a float64 round-trip would turn 16 and 16.0 into the same value).
// Trailing data after the first JSON value is an error, matching a
// one-object-per-line trace format.
func DecodeLine(line string) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(line))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return value, nil
}

// ValidateEvent checks one decoded event object against the schema and
// returns its failure messages.
//
// The event's type gate runs first: a missing, non-string, or unknown
// type stops validation of the event, because the type selects which
// schema section applies — further checks would be meaningless. All
// other failures are collected rather than short-circuited.
func ValidateEvent(schema *Schema, event map[string]any) []string {
	var failures []string

	eventType, ok := event["type"].(string)
	if !ok {
		return []string{"type must be a string"}
	}

	eventSchema, known := schema.Events[eventType]
	if !known {
		return []string{fmt.Sprintf("unknown event type: %s", eventType)}
	}

	required := make([]string, 0, len(schema.CommonRequired)+len(eventSchema.Required))
	required = append(required, schema.CommonRequired...)
	required = append(required, eventSchema.Required...)
	for _, field := range required {
		if _, present := event[field]; !present {
			failures = append(failures, fmt.Sprintf("missing required field: %s", field))
		}
	}

	// Events may omit schema_version entirely, but a present value
	// must match the schema exactly.
	if version, present := event["schema_version"]; present && version != nil {
		if version != any(schema.Version) {
			failures = append(failures, fmt.Sprintf(
				"schema_version mismatch: expected %s, got %v", schema.Version, version))
		}
	}

	constraints := make(map[string]Constraint, len(schema.CommonTypes)+len(eventSchema.Types))
	for field, constraint := range schema.CommonTypes {
		constraints[field] = constraint
	}
	for field, constraint := range eventSchema.Types {
		constraints[field] = constraint
	}

	for _, field := range sortedKeys(constraints) {
		value, present := event[field]
		if !present {
			continue
		}
		constraint := constraints[field]
		if !constraint.Matches(value) {
			failures = append(failures, fmt.Sprintf(
				"field %s has wrong type: expected %s, got %s",
				field, constraint, kindName(value)))
		}
	}

	return failures
}

// ValidateLines checks every line of a trace against the schema and
// returns the concatenated failures with 1-indexed line numbers. Blank
// lines are skipped. A line that is not valid JSON yields exactly one
// failure and does not stop the scan.
func ValidateLines(schema *Schema, lines []string) []Failure {
	var failures []Failure
	for index, line := range lines {
		lineNumber := index + 1
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		value, err := DecodeLine(stripped)
		if err != nil {
			failures = append(failures, Failure{lineNumber, fmt.Sprintf("invalid json: %v", err)})
			continue
		}
		event, ok := value.(map[string]any)
		if !ok {
			failures = append(failures, Failure{lineNumber, "jsonl line must be an object"})
			continue
		}
		for _, message := range ValidateEvent(schema, event) {
			failures = append(failures, Failure{lineNumber, message})
		}
	}
	return failures
}

// kindName classifies a decoded JSON value for wrong-type messages.
// Integral numbers report as "integer" so the message names the most
// specific kind the value would have satisfied.
func kindName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if isIntegral(value) {
		return "integer"
	}
	if isNumeric(value) {
		return "number"
	}
	return fmt.Sprintf("%T", value)
}

// sortedKeys returns map keys in lexical order so failure output is
// stable across runs.
func sortedKeys(constraints map[string]Constraint) []string {
	keys := make([]string, 0, len(constraints))
	for key := range constraints {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
