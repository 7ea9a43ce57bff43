// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"strings"

	"github.com/frankentui/harness/trace"
)

// entryKey indexes registry entries by the pair that selects them.
type entryKey struct {
	eventType string
	hashKey   string
}

// Check cross-checks a trace against the registry and returns the
// mismatches as trace failures. The check is advisory by construction:
// lines that fail to parse, events without a derivable hash key, and
// events with a failing status are skipped silently — schema
// validation owns structural problems, and a failing case's hashes
// prove nothing about determinism.
func Check(registry *Registry, lines []string) []trace.Failure {
	index := make(map[entryKey][]Entry)
	for _, entry := range registry.Entries {
		key := entryKey{entry.EventType, entry.HashKey}
		index[key] = append(index[key], entry)
	}

	var failures []trace.Failure
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
		if !trace.IsPassStatus(event["status"]) {
			continue
		}
		hashKey, ok := trace.EventHashKey(event)
		if !ok {
			continue
		}
		entries := index[entryKey{eventType, hashKey}]
		if len(entries) == 0 {
			continue
		}

		context := eventContext(event)
		for _, entry := range entries {
			if entry.Case != nil && !stringFieldEquals(event["case"], *entry.Case) {
				continue
			}
			if entry.Step != nil && !stringFieldEquals(event["step"], *entry.Step) {
				continue
			}
			actual, present := event[entry.Field]
			if !present {
				failures = append(failures, trace.Failure{
					Line: lineNumber,
					Message: fmt.Sprintf("missing hash field %s for %s %s %s",
						entry.Field, eventType, hashKey, context),
				})
				continue
			}
			actualText, isString := actual.(string)
			if !isString {
				failures = append(failures, trace.Failure{
					Line: lineNumber,
					Message: fmt.Sprintf("hash field %s for %s %s %s is not a string",
						entry.Field, eventType, hashKey, context),
				})
				continue
			}
			if actualText != entry.Value {
				failures = append(failures, trace.Failure{
					Line: lineNumber,
					Message: fmt.Sprintf("hash mismatch %s %s %s field=%s expected=%s got=%s",
						eventType, hashKey, context, entry.Field, entry.Value, actualText),
				})
			}
		}
	}
	return failures
}

// eventContext renders the identifying fields of an event for failure
// messages. Absent fields render as <nil> so the message still shows
// which dimensions the event lacked.
func eventContext(event map[string]any) string {
	mode, present := event["mode"]
	if !present || mode == nil {
		mode = event["screen_mode"]
	}
	return fmt.Sprintf("mode=%v cols=%v rows=%v seed=%v case=%v step=%v screen=%v",
		mode, event["cols"], event["rows"], event["seed"],
		event["case"], event["step"], event["screen"])
}

func stringFieldEquals(value any, want string) bool {
	text, ok := value.(string)
	return ok && text == want
}
