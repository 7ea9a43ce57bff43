// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

// ftui-validate checks e2e JSONL traces against the trace schema and,
// optionally, a hash registry of pinned deterministic values.
//
// By default validation is advisory: failures are reported on stderr
// and the exit code stays zero so log collection pipelines keep
// running. With --strict any failure exits non-zero, which is what CI
// gates use.
//
// A passing trace can also be harvested into a fresh registry with
// --emit-registry, pinning the deterministic hash fields of every
// passing case event for future runs to be checked against.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/frankentui/harness/lib/tracefile"
	"github.com/frankentui/harness/lib/version"
	"github.com/frankentui/harness/registry"
	"github.com/frankentui/harness/trace"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	var schemaPath string
	var registryPath string
	var emitRegistryPath string
	var strict bool
	var warn bool
	var printExamples bool

	flagSet := pflag.NewFlagSet("ftui-validate", pflag.ContinueOnError)
	flagSet.StringVar(&schemaPath, "schema", "", "path to schema document (default: embedded schema)")
	flagSet.StringVar(&registryPath, "registry", "", "path to hash registry file")
	flagSet.StringVar(&emitRegistryPath, "emit-registry", "", "write hash registry JSON to path (use '-' for stdout)")
	flagSet.BoolVar(&strict, "strict", false, "exit non-zero on validation errors")
	flagSet.BoolVar(&warn, "warn", false, "warn only (default if --strict not set)")
	flagSet.BoolVar(&printExamples, "print-examples", false, "print example JSONL lines and exit")

	// Handle --version before flag parsing to match the other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("ftui-validate")
		return 0, nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0, nil
		}
		return 1, err
	}

	schema := trace.DefaultSchema()
	if schemaPath != "" {
		loaded, err := trace.LoadSchema(schemaPath)
		if err != nil {
			return 1, err
		}
		schema = loaded
	}

	if printExamples {
		examples := trace.ExampleEvents(schema.Version)
		eventTypes := make([]string, 0, len(examples))
		for eventType := range examples {
			eventTypes = append(eventTypes, eventType)
		}
		sort.Strings(eventTypes)
		for _, eventType := range eventTypes {
			line, err := json.Marshal(examples[eventType])
			if err != nil {
				return 1, fmt.Errorf("encoding %s example: %w", eventType, err)
			}
			fmt.Println(string(line))
		}
		return 0, nil
	}

	arguments := flagSet.Args()
	if len(arguments) != 1 {
		return 1, fmt.Errorf("usage: ftui-validate [flags] <trace.jsonl>")
	}
	lines, err := tracefile.ReadLines(arguments[0])
	if err != nil {
		return 1, err
	}

	failures := trace.ValidateLines(schema, lines)

	var registryFailures []trace.Failure
	if registryPath != "" {
		if _, err := os.Stat(registryPath); err != nil {
			registryFailures = []trace.Failure{{Line: 0, Message: fmt.Sprintf("registry file not found: %s", registryPath)}}
		} else {
			loaded, err := registry.Load(registryPath)
			if err != nil {
				return 1, err
			}
			registryFailures = registry.Check(loaded, lines)
		}
	}

	if len(failures) > 0 || len(registryFailures) > 0 {
		if len(failures) > 0 {
			reportFailures("JSONL schema validation failed:", failures)
		}
		if len(registryFailures) > 0 {
			reportFailures("JSONL hash registry validation failed:", registryFailures)
		}
		if strict {
			return 1, nil
		}
		return 0, nil
	}

	if emitRegistryPath != "" {
		entries, err := registry.Derive(lines, registry.DefaultFieldTable())
		if err != nil {
			return 1, err
		}
		if err := registry.WriteFile(emitRegistryPath, entries); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func reportFailures(header string, failures []trace.Failure) {
	// Color the header when stderr is a terminal; plain text when the
	// output is redirected into a log file.
	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", header)
	} else {
		fmt.Fprintln(os.Stderr, header)
	}
	for _, failure := range failures {
		fmt.Fprintln(os.Stderr, failure.String())
	}
}
