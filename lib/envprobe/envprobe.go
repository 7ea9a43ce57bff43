// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

// Package envprobe collects best-effort information about the build and
// tool environment for env events. Every probe degrades to a sentinel
// value on failure — a missing git binary or a non-repository working
// directory must never fail a session run.
package envprobe

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Unknown is the sentinel returned when a probe cannot produce a value.
const Unknown = "unknown"

// probeTimeout bounds every subprocess probe. Probes run once at
// session start; a hung tool should not stall the run.
const probeTimeout = 5 * time.Second

// GitSHA returns the short git SHA of the working tree, or Unknown.
func GitSHA() string {
	output, err := runProbe("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return Unknown
	}
	sha := strings.TrimSpace(output)
	if sha == "" {
		return Unknown
	}
	return sha
}

// GitDirty reports whether the working tree has uncommitted changes.
// Returns false on any probe failure.
func GitDirty() bool {
	output, err := runProbe("git", "status", "--porcelain")
	if err != nil {
		return false
	}
	return strings.TrimSpace(output) != ""
}

// CommandVersion returns the first line of "<command> --version", or
// Unknown if the command is missing, fails, or prints nothing.
func CommandVersion(command string) string {
	output, err := runProbe(command, "--version")
	if err != nil {
		return Unknown
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return Unknown
	}
	return strings.TrimSpace(lines[0])
}

func runProbe(command string, arguments ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, command, arguments...).Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}
