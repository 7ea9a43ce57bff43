// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/frankentui/harness/trace"
)

// decodeStructuredFrame interprets a bridge text message as a
// structured frame event: a JSON object (optionally wrapping the frame
// under a one-level "payload" envelope) with type "frame", terminal
// bytes in data_b64, bytes_b64, or data (in that priority), and
// optional render-metadata overrides.
//
// Returns ok=false when the message is not a structured frame; the
// caller then records the raw text as plain output. Overrides are
// validated field by field — a mistyped field is dropped silently
// rather than failing the frame, because metadata quality must never
// cost output bytes.
func decodeStructuredFrame(message []byte) (data []byte, overrides map[string]any, ok bool) {
	value, err := trace.DecodeLine(string(message))
	if err != nil {
		return nil, nil, false
	}
	object, isObject := value.(map[string]any)
	if !isObject {
		return nil, nil, false
	}

	frame := make(map[string]any, len(object))
	for key, fieldValue := range object {
		frame[key] = fieldValue
	}
	if payload, isMap := object["payload"].(map[string]any); isMap {
		for key, fieldValue := range payload {
			frame[key] = fieldValue
		}
	}
	if frameType, isString := frame["type"].(string); !isString || frameType != "frame" {
		return nil, nil, false
	}

	if encoded, isString := frame["data_b64"].(string); isString {
		data, err = base64.StdEncoding.Strict().DecodeString(encoded)
		if err != nil {
			return nil, nil, false
		}
	} else if encoded, isString := frame["bytes_b64"].(string); isString {
		data, err = base64.StdEncoding.Strict().DecodeString(encoded)
		if err != nil {
			return nil, nil, false
		}
	} else if literal, isString := frame["data"].(string); isString {
		data = []byte(literal)
	} else {
		return nil, nil, false
	}

	return data, extractFrameOverrides(frame), true
}

// stringOverrideFields are frame metadata overrides accepted only as
// strings.
var stringOverrideFields = []string{
	"hash_algo", "frame_hash", "patch_hash", "mode", "hash_key", "interaction_hash",
}

// countOverrideFields are frame metadata overrides accepted only as
// non-negative integers.
var countOverrideFields = []string{
	"frame_idx", "ts_ms", "patch_bytes", "patch_cells", "patch_runs",
	"present_bytes", "hovered_link_id", "cursor_offset", "cursor_style",
	"selection_start", "selection_end",
}

func extractFrameOverrides(frame map[string]any) map[string]any {
	overrides := make(map[string]any)
	for _, field := range stringOverrideFields {
		if text, isString := frame[field].(string); isString {
			overrides[field] = text
		}
	}
	if active, isBool := frame["selection_active"].(bool); isBool {
		overrides["selection_active"] = active
	}
	// cols/rows must be positive: a zero-width terminal is always a
	// bridge bug and adopting it would corrupt later hash keys.
	for _, field := range []string{"cols", "rows"} {
		if parsed, isInt := asPositiveInt(frame[field]); isInt {
			overrides[field] = parsed
		}
	}
	for _, field := range countOverrideFields {
		if parsed, isInt := asNonNegativeInt(frame[field]); isInt {
			overrides[field] = parsed
		}
	}
	for _, field := range []string{"render_ms", "present_ms"} {
		if parsed, isNumber := asNumber(frame[field]); isNumber {
			overrides[field] = parsed
		}
	}
	return overrides
}

func asNonNegativeInt(value any) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
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
	}
	return 0, false
}

func asPositiveInt(value any) (int, bool) {
	parsed, ok := asNonNegativeInt(value)
	if !ok || parsed == 0 {
		return 0, false
	}
	return parsed, true
}

// asNumber accepts any numeric value, preserving the original literal
// (json.Number round-trips unchanged through re-encoding).
func asNumber(value any) (any, bool) {
	switch v := value.(type) {
	case bool:
		return nil, false
	case json.Number, int, int64, float64:
		return v, true
	}
	return nil, false
}
