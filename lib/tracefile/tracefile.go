// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracefile reads and writes JSONL trace files. Traces are
// UTF-8 text with one JSON object per line. Files with a ".zst"
// extension are transparently zstd-compressed — the right choice for
// text-like event logs, trading a little CPU for a 3-5x size
// reduction on long sessions.
package tracefile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// maxLineBytes is the scanner limit for a single trace line. Frame
// events carry base64 payloads; 10 MB accommodates any realistic
// terminal frame while still catching runaway corruption.
const maxLineBytes = 10 * 1024 * 1024

// IsCompressed reports whether path names a zstd-compressed trace.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// ReadLines returns the lines of the trace at path, decompressing
// transparently when the file is zstd-compressed. Line content is
// returned verbatim (blank lines included) so that downstream line
// numbering matches the file.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if IsCompressed(path) {
		decoder, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open zstd trace %s: %w", path, err)
		}
		defer decoder.Close()
		reader = decoder
	}
	return readAll(reader)
}

func readAll(reader io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return lines, nil
}

// Sink is an append-only trace writer. Every WriteLine is flushed
// through to the file so a concurrently-tailing process can read the
// trace even if the writing process crashes mid-run.
type Sink struct {
	file    *os.File
	encoder *zstd.Encoder
}

// NewSink opens (appending) or creates the trace file at path. A
// ".zst" extension selects zstd compression; the encoder is flushed
// after every line, which costs compression ratio but preserves the
// crash-readability guarantee.
func NewSink(path string) (*Sink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace sink: %w", err)
	}
	sink := &Sink{file: file}
	if IsCompressed(path) {
		encoder, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open zstd trace sink %s: %w", path, err)
		}
		sink.encoder = encoder
	}
	return sink, nil
}

// WriteLine appends one line (a newline is added) and flushes it to
// the underlying file.
func (s *Sink) WriteLine(line []byte) error {
	payload := make([]byte, 0, len(line)+1)
	payload = append(payload, bytes.TrimRight(line, "\n")...)
	payload = append(payload, '\n')

	if s.encoder != nil {
		if _, err := s.encoder.Write(payload); err != nil {
			return fmt.Errorf("write trace line: %w", err)
		}
		if err := s.encoder.Flush(); err != nil {
			return fmt.Errorf("flush trace line: %w", err)
		}
		return nil
	}
	if _, err := s.file.Write(payload); err != nil {
		return fmt.Errorf("write trace line: %w", err)
	}
	return nil
}

// Close flushes any pending compressed data and closes the file.
// Close is idempotent.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	if s.encoder != nil {
		if err := s.encoder.Close(); err != nil {
			s.file.Close()
			s.file = nil
			return fmt.Errorf("close zstd trace sink: %w", err)
		}
		s.encoder = nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("close trace sink: %w", err)
	}
	return nil
}
