// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

// Package trace defines the e2e trace event model: the versioned
// schema catalog, the line-by-line event validator, and the hash-key
// derivation shared by the validator, the hash registry, and the
// session recorder.
//
// A trace is UTF-8 text with one JSON event object per line. Every
// event carries schema_version, type, timestamp, run_id, and seed;
// type-specific fields are defined by the schema document.
package trace

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// SchemaVersion is the current trace format identifier, carried in
// every emitted event and pinned by the embedded schema document.
const SchemaVersion = "e2e-jsonl-v1"

// Kind is a primitive JSON value kind used in type constraints. The
// set is closed: a schema document naming anything else fails to load.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// ParseKind converts a schema type name into a Kind.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindString, KindNumber, KindInteger, KindBoolean, KindNull, KindObject, KindArray:
		return Kind(name), nil
	}
	return "", fmt.Errorf("unknown type constraint %q", name)
}

// Matches reports whether a decoded JSON value has this kind. Values
// must come from DecodeLine (numbers arrive as json.Number) or be
// plain Go values (string, bool, int, int64, float64, map, slice).
//
// Booleans are never accepted for number or integer, even though some
// type systems treat bool as int-like; the exclusion is checked first
// so it holds for every numeric representation.
func (k Kind) Matches(value any) bool {
	if _, isBool := value.(bool); isBool {
		return k == KindBoolean
	}
	switch k {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		return isNumeric(value)
	case KindInteger:
		return isIntegral(value)
	case KindBoolean:
		return false // non-bool values handled above
	case KindNull:
		return value == nil
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	case KindArray:
		_, ok := value.([]any)
		return ok
	}
	return false
}

func isNumeric(value any) bool {
	switch value.(type) {
	case json.Number, int, int64, float64:
		return true
	}
	return false
}

// isIntegral reports whether value is an integer-kind number. A
// json.Number is integral when its literal has no fraction or
// exponent, mirroring the JSON source distinction between 16 and
// 16.0 (or 1.6e1), which a float conversion would erase.
func isIntegral(value any) bool {
	switch number := value.(type) {
	case json.Number:
		return !strings.ContainsAny(number.String(), ".eE")
	case int, int64:
		return true
	}
	return false
}

// Constraint is a type constraint on one event field: a single Kind or
// a set of alternatives, any of which is accepted.
type Constraint struct {
	kinds []Kind
}

// NewConstraint builds a constraint accepting any of the given kinds.
func NewConstraint(kinds ...Kind) Constraint {
	return Constraint{kinds: kinds}
}

// Matches reports whether value satisfies any alternative.
func (c Constraint) Matches(value any) bool {
	for _, kind := range c.kinds {
		if kind.Matches(value) {
			return true
		}
	}
	return false
}

// String renders the constraint for failure messages: a single kind
// name, or alternatives joined with "|".
func (c Constraint) String() string {
	if len(c.kinds) == 1 {
		return string(c.kinds[0])
	}
	names := make([]string, len(c.kinds))
	for i, kind := range c.kinds {
		names[i] = string(kind)
	}
	return strings.Join(names, "|")
}

// UnmarshalJSON accepts either a kind name string or an array of kind
// name strings (match-any).
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		kind, err := ParseKind(single)
		if err != nil {
			return err
		}
		c.kinds = []Kind{kind}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("type constraint must be a string or array of strings")
	}
	if len(many) == 0 {
		return fmt.Errorf("type constraint alternatives must not be empty")
	}
	kinds := make([]Kind, len(many))
	for i, name := range many {
		kind, err := ParseKind(name)
		if err != nil {
			return err
		}
		kinds[i] = kind
	}
	c.kinds = kinds
	return nil
}

// EventSchema holds the per-event-type overrides layered on top of the
// common requirements.
type EventSchema struct {
	Required []string              `json:"required"`
	Types    map[string]Constraint `json:"types"`
}

// Schema is the parsed trace schema document. Loaded once; immutable
// afterward.
type Schema struct {
	Version        string                 `json:"schema_version"`
	CommonRequired []string               `json:"common_required"`
	CommonTypes    map[string]Constraint  `json:"common_types"`
	Events         map[string]EventSchema `json:"events"`
}

//go:embed e2e_jsonl_schema.jsonc
var defaultSchemaDocument []byte

// DefaultSchema returns the schema document compiled into the binary.
// It panics on failure: the embedded document is part of the build and
// a parse error there is a programming bug, not an input error.
func DefaultSchema() *Schema {
	schema, err := ParseSchema(defaultSchemaDocument)
	if err != nil {
		panic("trace: embedded schema document is invalid: " + err.Error())
	}
	return schema
}

// LoadSchema reads and parses a schema document from path. The file
// may use JSONC comments and trailing commas. Any structural problem
// is a fatal load error — there is no partial schema.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	schema, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// ParseSchema parses a schema document from JSONC bytes.
func ParseSchema(data []byte) (*Schema, error) {
	stripped := jsonc.ToJSON(data)

	var schema Schema
	if err := json.Unmarshal(stripped, &schema); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if schema.Version == "" {
		return nil, fmt.Errorf("schema_version must be a non-empty string")
	}
	if schema.CommonRequired == nil {
		return nil, fmt.Errorf("common_required must be a list")
	}
	if schema.CommonTypes == nil {
		return nil, fmt.Errorf("common_types must be an object")
	}
	if schema.Events == nil {
		return nil, fmt.Errorf("events must be an object")
	}
	return &schema, nil
}
