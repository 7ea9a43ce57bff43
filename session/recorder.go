// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/frankentui/harness/lib/clock"
	"github.com/frankentui/harness/trace"
)

// TraceSink receives emitted events as JSONL lines. *tracefile.Sink
// implements it.
type TraceSink interface {
	WriteLine(line []byte) error
	Close() error
}

// initialChecksumChain is the rolling checksum seed: 64 zero hex
// characters, the width of a SHA-256 digest.
const initialChecksumChain = "0000000000000000000000000000000000000000000000000000000000000000"

// RecorderConfig configures a session recorder.
type RecorderConfig struct {
	RunID    string
	Scenario string
	Seed     int64

	InitialCols int
	InitialRows int

	// Deterministic selects synthetic timestamps: event index times
	// TimestepMS, rendered as T%06d. Wall-clock timestamps otherwise.
	Deterministic bool
	TimestepMS    int

	Clock clock.Clock

	// Sink receives every event as a JSONL line as it is emitted. May
	// be nil; events are always retained in memory regardless.
	Sink TraceSink
}

// Recorder accumulates session events, received output, and the
// rolling checksum chain. Safe for concurrent use: the driver's reader
// goroutine records output while the step loop emits input events.
type Recorder struct {
	config RecorderConfig

	mutex         sync.Mutex
	events        []map[string]any
	outputChunks  [][]byte
	totalBytesIn  int
	totalBytesOut int
	messagesTx    int
	messagesRx    int
	frameIndex    int
	checksumChain string
	currentCols   int
	currentRows   int
	eventIndex    int
	start         time.Time
	lastFrame     time.Time
	frameGapMS    []float64
	sinkErr       error
}

// NewRecorder creates a recorder. Zero-value config fields get
// defaults: real clock, 100 ms timestep, 120x40 geometry.
func NewRecorder(config RecorderConfig) *Recorder {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.TimestepMS <= 0 {
		config.TimestepMS = 100
	}
	if config.InitialCols <= 0 {
		config.InitialCols = 120
	}
	if config.InitialRows <= 0 {
		config.InitialRows = 40
	}
	now := config.Clock.Now()
	return &Recorder{
		config:        config,
		checksumChain: initialChecksumChain,
		currentCols:   config.InitialCols,
		currentRows:   config.InitialRows,
		start:         now,
		lastFrame:     now,
	}
}

// Emit appends a trace event of the given type. The common envelope
// (schema_version, type, timestamp, run_id, seed) is filled in; data
// supplies the type-specific fields.
func (r *Recorder) Emit(eventType string, data map[string]any) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.emitLocked(eventType, data)
}

func (r *Recorder) emitLocked(eventType string, data map[string]any) error {
	event := map[string]any{
		"schema_version": trace.SchemaVersion,
		"type":           eventType,
		"timestamp":      r.timestampLocked(),
		"run_id":         r.config.RunID,
		"seed":           r.config.Seed,
	}
	for key, value := range data {
		event[key] = value
	}
	r.events = append(r.events, event)
	r.eventIndex++

	if r.config.Sink != nil {
		line, err := json.Marshal(event)
		if err != nil {
			return r.sinkErrLocked(fmt.Errorf("encoding %s event: %w", eventType, err))
		}
		if err := r.config.Sink.WriteLine(line); err != nil {
			return r.sinkErrLocked(fmt.Errorf("writing %s event: %w", eventType, err))
		}
	}
	return nil
}

func (r *Recorder) sinkErrLocked(err error) error {
	if r.sinkErr == nil {
		r.sinkErr = err
	}
	return err
}

// SinkErr returns the first trace sink failure, if any. The in-memory
// event log keeps accumulating after a sink failure, but the trace on
// disk is incomplete and the run must not be treated as clean.
func (r *Recorder) SinkErr() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.sinkErr
}

// RecordOutput records one chunk of terminal output from the bridge:
// it extends the checksum chain, tracks inter-frame gaps, and emits a
// frame event. Overrides (from structured frame messages) replace the
// derived metadata fields and, when they carry positive cols/rows,
// update the tracked geometry.
func (r *Recorder) RecordOutput(data []byte, overrides map[string]any) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.config.Clock.Now()
	gapMS := float64(now.Sub(r.lastFrame)) / float64(time.Millisecond)
	r.lastFrame = now
	// The first chunk's gap measures connection setup, not frame
	// pacing, so it is excluded from the histogram.
	if r.frameIndex > 0 {
		r.frameGapMS = append(r.frameGapMS, gapMS)
	}

	r.outputChunks = append(r.outputChunks, data)
	r.totalBytesOut += len(data)
	chunkHash := sha256Hex(data)
	r.checksumChain = sha256Hex([]byte(r.checksumChain + chunkHash))
	r.frameIndex++

	event := map[string]any{
		"frame_idx":  r.frameIndex,
		"hash_algo":  "sha256",
		"frame_hash": "sha256:" + chunkHash,
		"ts_ms":      int(now.Sub(r.start) / time.Millisecond),
		"mode":       "remote",
		"hash_key":   r.hashKeyLocked(),
		"cols":       r.currentCols,
		"rows":       r.currentRows,
		"patch_hash": "sha256:" + chunkHash,
		"patch_bytes": len(data),
		// Byte-stream proxies: exact cell/run counts are unavailable
		// at this layer.
		"patch_cells":    len(data),
		"patch_runs":     1,
		"present_ms":     round3(gapMS),
		"present_bytes":  len(data),
		"checksum_chain": "sha256:" + r.checksumChain,
	}
	for key, value := range overrides {
		event[key] = value
	}
	if cols, ok := overrides["cols"].(int); ok {
		if rows, ok := overrides["rows"].(int); ok && cols > 0 && rows > 0 {
			r.currentCols = cols
			r.currentRows = rows
		}
	}
	return r.emitLocked("frame", event)
}

// RecordSend accounts for data sent to the bridge.
func (r *Recorder) RecordSend(data []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.totalBytesIn += len(data)
	r.messagesTx++
}

// RecordReceive accounts for one message received from the bridge.
func (r *Recorder) RecordReceive() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.messagesRx++
}

// SetGeometry updates the terminal geometry used in derived frame and
// input metadata.
func (r *Recorder) SetGeometry(cols, rows int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.currentCols = cols
	r.currentRows = rows
}

// Geometry returns the currently tracked terminal geometry.
func (r *Recorder) Geometry() (cols, rows int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.currentCols, r.currentRows
}

// HashKey returns the hash key for the current geometry and seed.
func (r *Recorder) HashKey() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.hashKeyLocked()
}

func (r *Recorder) hashKeyLocked() string {
	return trace.FormatHashKey("remote", r.currentCols, r.currentRows,
		strconv.FormatInt(r.config.Seed, 10))
}

// FullOutput returns the concatenated received output.
func (r *Recorder) FullOutput() []byte {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	output := make([]byte, 0, r.totalBytesOut)
	for _, chunk := range r.outputChunks {
		output = append(output, chunk...)
	}
	return output
}

// FinalChecksum returns the current checksum chain value as bare hex,
// without the sha256: prefix.
func (r *Recorder) FinalChecksum() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.checksumChain
}

// Summary builds the session summary.
func (r *Recorder) Summary() Summary {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	output := make([]byte, 0, r.totalBytesOut)
	for _, chunk := range r.outputChunks {
		output = append(output, chunk...)
	}
	return Summary{
		Scenario:          r.config.Scenario,
		WSInBytes:         r.totalBytesIn,
		WSOutBytes:        r.totalBytesOut,
		MessagesTx:        r.messagesTx,
		MessagesRx:        r.messagesRx,
		Frames:            r.frameIndex,
		OutputSHA256:      "sha256:" + sha256Hex(output),
		ChecksumChain:     "sha256:" + r.checksumChain,
		FrameGapHistogram: HistogramSummary(r.frameGapMS),
	}
}

// Events returns a snapshot of the emitted events.
func (r *Recorder) Events() []map[string]any {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	snapshot := make([]map[string]any, len(r.events))
	copy(snapshot, r.events)
	return snapshot
}

// Close releases the sink, if any. Idempotent.
func (r *Recorder) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.config.Sink == nil {
		return nil
	}
	sink := r.config.Sink
	r.config.Sink = nil
	return sink.Close()
}

func (r *Recorder) timestampLocked() string {
	if r.config.Deterministic {
		return fmt.Sprintf("T%06d", r.eventIndex*r.config.TimestepMS)
	}
	return r.config.Clock.Now().Format("2006-01-02T15:04:05Z0700")
}

// Summary is the flattened session result payload: byte and message
// totals, frame count, output digest, final checksum chain, and the
// inter-frame gap histogram.
type Summary struct {
	Scenario          string    `json:"scenario"`
	WSInBytes         int       `json:"ws_in_bytes"`
	WSOutBytes        int       `json:"ws_out_bytes"`
	MessagesTx        int       `json:"messages_tx"`
	MessagesRx        int       `json:"messages_rx"`
	Frames            int       `json:"frames"`
	OutputSHA256      string    `json:"output_sha256"`
	ChecksumChain     string    `json:"checksum_chain"`
	FrameGapHistogram Histogram `json:"frame_gap_histogram_ms"`
}

func sha256Hex(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
