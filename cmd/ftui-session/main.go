// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

// ftui-session runs a scripted terminal session against a bridge: it
// connects to the bridge endpoint, executes the scenario's steps,
// records every exchange as JSONL trace events with a rolling checksum
// chain, and optionally compares the result against a golden
// transcript.
//
// Determinism knobs come from the environment (E2E_DETERMINISTIC,
// E2E_TIME_STEP_MS, E2E_SEED); with deterministic mode on, two runs of
// the same scenario against the same bridge build produce
// byte-identical traces.
//
// The exit code is 0 only when the session outcome is pass.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/frankentui/harness/lib/clock"
	"github.com/frankentui/harness/lib/tracefile"
	"github.com/frankentui/harness/lib/version"
	"github.com/frankentui/harness/session"
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
	var address string
	var scenarioPath string
	var goldenPath string
	var jsonlPath string
	var transcriptPath string
	var capturePath string
	var printSummary bool

	flagSet := pflag.NewFlagSet("ftui-session", pflag.ContinueOnError)
	flagSet.StringVar(&address, "address", "127.0.0.1:9231", "bridge endpoint (host:port)")
	flagSet.StringVar(&scenarioPath, "scenario", "", "scenario file (JSON or YAML)")
	flagSet.StringVar(&goldenPath, "golden", "", "golden transcript to compare against")
	flagSet.StringVar(&jsonlPath, "jsonl", "", "write JSONL trace events to this file")
	flagSet.StringVar(&transcriptPath, "transcript", "", "save raw output transcript to this file")
	flagSet.StringVar(&capturePath, "capture", "", "write a CBOR run capture to this file")
	flagSet.BoolVar(&printSummary, "summary", false, "print summary JSON to stdout")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("ftui-session")
		return 0, nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0, nil
		}
		return 1, err
	}
	if scenarioPath == "" {
		return 1, fmt.Errorf("--scenario is required")
	}

	scenario, err := session.LoadScenario(scenarioPath)
	if err != nil {
		return 1, err
	}

	var golden *session.Golden
	if goldenPath != "" {
		// A missing golden file is not an error: first runs record,
		// later runs compare.
		if _, statErr := os.Stat(goldenPath); statErr == nil {
			golden, err = session.LoadGolden(goldenPath)
			if err != nil {
				return 1, err
			}
		}
	}

	config := session.ConfigFromEnvironment()
	config.Address = address
	if jsonlPath != "" && config.LogDir == "" {
		config.LogDir = filepath.Dir(jsonlPath)
	}
	config.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	runID := session.MakeRunID(config.Seed, config.Deterministic, clock.Real())
	recorderConfig := session.RecorderConfig{
		RunID:         runID,
		Scenario:      scenario.Name,
		Seed:          config.Seed,
		InitialCols:   scenario.InitialCols,
		InitialRows:   scenario.InitialRows,
		Deterministic: config.Deterministic,
		TimestepMS:    config.TimestepMS,
	}
	if jsonlPath != "" {
		sink, err := tracefile.NewSink(jsonlPath)
		if err != nil {
			return 1, err
		}
		recorderConfig.Sink = sink
	}
	recorder := session.NewRecorder(recorderConfig)
	defer recorder.Close()

	driver := session.NewDriver(config)
	result := driver.Run(context.Background(), scenario, recorder, golden)

	if transcriptPath != "" {
		if err := session.SaveTranscript(transcriptPath, recorder.FullOutput()); err != nil {
			return 1, err
		}
	}
	if capturePath != "" {
		capture := session.BuildCapture(recorder, result, runID, config.Seed)
		if err := session.WriteCapture(capturePath, capture); err != nil {
			return 1, err
		}
	}

	if printSummary || jsonlPath == "" {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return 1, fmt.Errorf("encoding summary: %w", err)
		}
		fmt.Println(string(output))
	}

	if result.Outcome != "pass" {
		return 1, nil
	}
	return 0, nil
}
