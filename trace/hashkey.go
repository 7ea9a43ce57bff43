// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// passStatuses is the accepted-pass set for status fields, matched
// case-insensitively. Any other string is a failing status; a missing
// or non-string status counts as pass.
var passStatuses = map[string]bool{
	"pass":    true,
	"passed":  true,
	"success": true,
}

// IsPassStatus reports whether a status value indicates the event
// passed. Non-string values (including absence, passed as nil) count
// as pass: the status gate only filters events that explicitly claim
// failure.
func IsPassStatus(status any) bool {
	text, ok := status.(string)
	if !ok {
		return true
	}
	return passStatuses[strings.ToLower(text)]
}

// FormatHashKey builds the deterministic hash key correlating trace
// events with registry expectations: "{mode}-{cols}x{rows}-seed{seed}".
func FormatHashKey(mode string, cols, rows int, seed string) string {
	return fmt.Sprintf("%s-%dx%d-seed%s", mode, cols, rows, seed)
}

// EventHashKey derives an event's hash key. An explicit non-empty
// hash_key field is authoritative. Otherwise the key is assembled from
// mode (or screen_mode), cols, rows, and seed; if any component fails
// its validity rule the key is undefined and ok is false — the event
// is then simply skipped for registry purposes.
func EventHashKey(event map[string]any) (key string, ok bool) {
	if explicit, isString := event["hash_key"].(string); isString && explicit != "" {
		return explicit, true
	}

	mode, isString := event["mode"].(string)
	if !isString {
		mode, isString = event["screen_mode"].(string)
		if !isString {
			return "", false
		}
	}
	cols, ok := geometryValue(event["cols"])
	if !ok {
		return "", false
	}
	rows, ok := geometryValue(event["rows"])
	if !ok {
		return "", false
	}
	seed, ok := SeedString(event["seed"])
	if !ok {
		return "", false
	}
	return FormatHashKey(mode, cols, rows, seed), true
}

// geometryValue accepts a non-negative non-boolean integer.
func geometryValue(value any) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		if !isIntegral(v) {
			return 0, false
		}
		parsed, err := v.Int64()
		if err != nil || parsed < 0 {
			return 0, false
		}
		return int(parsed), true
	case int:
		if v < 0 {
			return 0, false
		}
		return v, true
	case int64:
		if v < 0 {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

// SeedString normalizes a seed value for hash keys: an integer, a
// float with an integral value, or a non-empty string. Anything else
// (booleans included) leaves the seed — and therefore the derived hash
// key — undefined.
func SeedString(seed any) (string, bool) {
	switch v := seed.(type) {
	case json.Number:
		if isIntegral(v) {
			return v.String(), true
		}
		parsed, err := v.Float64()
		if err != nil {
			return "", false
		}
		if parsed == float64(int64(parsed)) {
			return strconv.FormatInt(int64(parsed), 10), true
		}
		return "", false
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	}
	return "", false
}
