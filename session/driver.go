// Copyright 2026 The FrankenTUI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/frankentui/harness/lib/clock"
	"github.com/frankentui/harness/lib/envprobe"
)

// Dialer opens a connection to the bridge. Abstracted so tests can
// substitute an in-memory pipe.
type Dialer interface {
	DialContext(ctx context.Context, address string) (net.Conn, error)
}

// TCPDialer dials the bridge over TCP.
type TCPDialer struct {
	Timeout time.Duration
}

func (d TCPDialer) DialContext(ctx context.Context, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dialing bridge %s: %w", address, err)
	}
	return conn, nil
}

// Config configures a session driver.
type Config struct {
	// Address is the bridge endpoint, host:port.
	Address string

	Deterministic bool
	TimestepMS    int
	Seed          int64

	// Environment context recorded in env/browser_env events.
	Browser        string
	BrowserVersion string
	UserAgent      string
	DPR            float64
	Headless       bool
	LogDir         string
	ResultsDir     string
	Term           string
	ColorTerm      string
	NoColor        string
	Locale         string
	Timezone       string

	// ToolProbes are commands whose --version output is recorded in
	// the env event, keyed by command name.
	ToolProbes []string

	// DrainSettle is the sleep for drain steps; FinalSettle is the
	// sleep after the last step before the reader is stopped.
	DrainSettle time.Duration
	FinalSettle time.Duration

	Logger *slog.Logger
	Clock  clock.Clock
	Dialer Dialer
}

// ConfigFromEnvironment builds a driver config from E2E_* environment
// variables, with the same defaults the harness scripts assume:
// deterministic mode on, 100 ms timestep, seed 0.
func ConfigFromEnvironment() Config {
	return Config{
		Deterministic:  envOr("E2E_DETERMINISTIC", "1") == "1",
		TimestepMS:     envInt("E2E_TIME_STEP_MS", 100),
		Seed:           int64(envInt("E2E_SEED", 0)),
		Browser:        envOr("E2E_BROWSER", "ftui-session"),
		BrowserVersion: os.Getenv("E2E_BROWSER_VERSION"),
		UserAgent:      envOr("E2E_BROWSER_USER_AGENT", "ftui-session/"+runtime.Version()),
		DPR:            envFloat("E2E_BROWSER_DPR", 1.0),
		Headless:       envOr("E2E_HEADLESS", "true") == "true",
		LogDir:         os.Getenv("E2E_LOG_DIR"),
		ResultsDir:     os.Getenv("E2E_RESULTS_DIR"),
		Term:           os.Getenv("TERM"),
		ColorTerm:      os.Getenv("COLORTERM"),
		NoColor:        os.Getenv("NO_COLOR"),
		Locale:         os.Getenv("LANG"),
		Timezone:       os.Getenv("TZ"),
	}
}

func envOr(name, fallback string) string {
	if value, ok := os.LookupEnv(name); ok {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(name string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(name), 64)
	if err != nil {
		return fallback
	}
	return value
}

// MakeRunID derives the run identifier. Deterministic runs use the
// seed so reruns produce identical traces; otherwise the wall clock
// keeps concurrent runs distinct.
func MakeRunID(seed int64, deterministic bool, clk clock.Clock) string {
	if deterministic {
		return fmt.Sprintf("remote-%08x", seed)
	}
	return fmt.Sprintf("remote-%x", clk.Now().UnixMilli())
}

// Result is the session outcome: pass/fail, accumulated error
// messages, and the flattened summary.
type Result struct {
	Outcome string   `json:"outcome"`
	Errors  []string `json:"errors"`
	Summary
}

// Driver executes scripted scenarios against a bridge.
type Driver struct {
	config Config
}

// NewDriver creates a driver, applying defaults for unset config
// fields: real clock, TCP dialer, rustc and cargo tool probes, 500 ms
// drain and 300 ms final settle.
func NewDriver(config Config) *Driver {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Dialer == nil {
		config.Dialer = TCPDialer{Timeout: 10 * time.Second}
	}
	if config.ToolProbes == nil {
		config.ToolProbes = []string{"rustc", "cargo"}
	}
	if config.DrainSettle <= 0 {
		config.DrainSettle = 500 * time.Millisecond
	}
	if config.FinalSettle <= 0 {
		config.FinalSettle = 300 * time.Millisecond
	}
	return &Driver{config: config}
}

// Run executes the scenario against the bridge, recording every event
// through the recorder. A non-nil golden is compared against the final
// checksum chain. Run always returns a result; transport and scenario
// errors mark the outcome failed rather than aborting the trace, so
// the run_end event is emitted on every path.
func (d *Driver) Run(ctx context.Context, scenario *Scenario, recorder *Recorder, golden *Golden) *Result {
	runStart := d.config.Clock.Now()
	d.emitEnvironment(scenario, recorder)

	result := &Result{Outcome: "pass"}
	if err := d.runSession(ctx, scenario, recorder); err != nil {
		result.Outcome = "fail"
		result.Errors = append(result.Errors, err.Error())
		recorder.Emit("error", map[string]any{"message": err.Error()})
		d.config.Logger.Error("session failed", "scenario", scenario.Name, "error", err)
	}

	summary := recorder.Summary()
	result.Summary = summary

	if golden != nil {
		d.compareGolden(golden, summary, result, recorder)
	}

	// A sink write failure leaves the trace on disk incomplete even
	// when every step succeeded; the run must not exit clean.
	if err := recorder.SinkErr(); err != nil {
		d.config.Logger.Error("trace sink failed", "scenario", scenario.Name, "error", err)
		if result.Outcome == "pass" {
			result.Outcome = "fail"
			result.Errors = append(result.Errors, err.Error())
			recorder.Emit("error", map[string]any{"message": err.Error()})
		}
	}

	recorder.Emit("ws_metrics", map[string]any{
		"label":                scenario.Name,
		"ws_url":               d.config.Address,
		"bytes_tx":             summary.WSInBytes,
		"bytes_rx":             summary.WSOutBytes,
		"messages_tx":          summary.MessagesTx,
		"messages_rx":          summary.MessagesRx,
		"latency_histogram_ms": summary.FrameGapHistogram,
	})

	status := "passed"
	if result.Outcome != "pass" {
		status = "failed"
	}
	recorder.Emit("run_end", map[string]any{
		"status":         status,
		"duration_ms":    int(d.config.Clock.Now().Sub(runStart) / time.Millisecond),
		"failed_count":   len(result.Errors),
		"outcome":        result.Outcome,
		"ws_in_bytes":    summary.WSInBytes,
		"ws_out_bytes":   summary.WSOutBytes,
		"frames":         summary.Frames,
		"output_sha256":  summary.OutputSHA256,
		"checksum_chain": summary.ChecksumChain,
	})
	return result
}

func (d *Driver) emitEnvironment(scenario *Scenario, recorder *Recorder) {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = runtime.GOOS
	}
	env := map[string]any{
		"host":          host,
		"git_commit":    envprobe.GitSHA(),
		"git_dirty":     envprobe.GitDirty(),
		"deterministic": d.config.Deterministic,
		"term":          d.config.Term,
		"colorterm":     d.config.ColorTerm,
		"no_color":      d.config.NoColor,
		"scenario":      scenario.Name,
		"initial_cols":  scenario.InitialCols,
		"initial_rows":  scenario.InitialRows,
	}
	for _, tool := range d.config.ToolProbes {
		env[tool] = envprobe.CommandVersion(tool)
	}
	recorder.Emit("env", env)

	recorder.Emit("browser_env", map[string]any{
		"browser":         d.config.Browser,
		"browser_version": d.config.BrowserVersion,
		"user_agent":      d.config.UserAgent,
		"dpr":             d.config.DPR,
		"platform":        runtime.GOOS,
		"locale":          d.config.Locale,
		"timezone":        d.config.Timezone,
		"headless":        d.config.Headless,
	})

	logDir := d.config.LogDir
	resultsDir := d.config.ResultsDir
	if resultsDir == "" {
		resultsDir = logDir
	}
	recorder.Emit("run_start", map[string]any{
		"command":     fmt.Sprintf("ftui-session --address %s --scenario %s", d.config.Address, scenario.Name),
		"log_dir":     logDir,
		"results_dir": resultsDir,
		"scenario":    scenario.Name,
		"step_count":  len(scenario.Steps),
		"timeout_s":   scenario.TimeoutS,
	})
}

func (d *Driver) runSession(ctx context.Context, scenario *Scenario, recorder *Recorder) error {
	timeout := time.Duration(scenario.TimeoutS * float64(time.Second))
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.config.Dialer.DialContext(ctx, d.config.Address)
	if err != nil {
		return err
	}
	defer conn.Close()

	readerCtx, stopReader := context.WithCancel(ctx)
	defer stopReader()
	readerDone := make(chan error, 1)
	go d.readLoop(readerCtx, conn, recorder, readerDone)
	// Wake the blocking read when the reader is stopped.
	go func() {
		<-readerCtx.Done()
		conn.SetReadDeadline(time.Now())
	}()

	for index, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("session aborted before step %d: %w", index, err)
		}
		stepName := fmt.Sprintf("%03d:%s", index, step.Type)
		cols, rows := recorder.Geometry()
		recorder.Emit("step_start", map[string]any{
			"step":     stepName,
			"mode":     "remote",
			"hash_key": recorder.HashKey(),
			"cols":     cols,
			"rows":     rows,
		})
		stepStart := d.config.Clock.Now()

		if step.DelayMS > 0 {
			d.config.Clock.Sleep(time.Duration(step.DelayMS) * time.Millisecond)
		}

		if err := d.applyStep(conn, step, recorder); err != nil {
			return fmt.Errorf("step %s: %w", stepName, err)
		}

		cols, rows = recorder.Geometry()
		recorder.Emit("step_end", map[string]any{
			"step":        stepName,
			"status":      "passed",
			"duration_ms": int(d.config.Clock.Now().Sub(stepStart) / time.Millisecond),
			"mode":        "remote",
			"hash_key":    recorder.HashKey(),
			"cols":        cols,
			"rows":        rows,
		})
	}

	// Give trailing output a settle period before stopping the reader.
	d.config.Clock.Sleep(d.config.FinalSettle)
	stopReader()
	return <-readerDone
}

func (d *Driver) applyStep(conn net.Conn, step Step, recorder *Recorder) error {
	switch step.Type {
	case StepSend:
		data, err := step.Payload()
		if err != nil {
			return err
		}
		if err := WriteMessage(conn, NewDataMessage(data)); err != nil {
			return err
		}
		recorder.RecordSend(data)
		inputType := step.InputType
		if inputType == "" {
			inputType = "keys"
		}
		cols, rows := recorder.Geometry()
		recorder.Emit("input", map[string]any{
			"input_type": inputType,
			"encoding":   "base64",
			"bytes_b64":  base64.StdEncoding.EncodeToString(data),
			"input_hash": "sha256:" + sha256Hex(data),
			"details":    step.Comment,
			"mode":       "remote",
			"hash_key":   recorder.HashKey(),
			"cols":       cols,
			"rows":       rows,
		})

	case StepResize:
		message, err := EncodeResize(step.Cols, step.Rows)
		if err != nil {
			return err
		}
		if err := WriteMessage(conn, message); err != nil {
			return err
		}
		recorder.RecordSend(message.Payload)
		recorder.SetGeometry(step.Cols, step.Rows)
		recorder.Emit("input", map[string]any{
			"input_type": "resize",
			"encoding":   "json",
			"input_hash": "sha256:" + sha256Hex(message.Payload),
			"details":    step.Comment,
			"mode":       "remote",
			"hash_key":   recorder.HashKey(),
			"cols":       step.Cols,
			"rows":       step.Rows,
		})

	case StepWait:
		d.config.Clock.Sleep(time.Duration(step.WaitMS()) * time.Millisecond)

	case StepDrain:
		d.config.Clock.Sleep(d.config.DrainSettle)
	}
	return nil
}

// readLoop consumes bridge messages until the context is cancelled or
// the stream errors. Binary messages are raw output; text messages are
// structured frames when they parse as one, raw output otherwise.
func (d *Driver) readLoop(ctx context.Context, conn net.Conn, recorder *Recorder, done chan<- error) {
	for {
		message, err := ReadMessage(conn)
		if err != nil {
			// A read error after cancellation is the deadline wakeup,
			// not a session fault. A clean EOF is the bridge closing
			// its side after delivering everything, which is normal
			// server behavior; only mid-frame truncation or stream
			// corruption fails the run.
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				done <- nil
			} else {
				done <- fmt.Errorf("reading bridge stream: %w", err)
			}
			return
		}
		recorder.RecordReceive()
		switch message.Type {
		case MessageTypeText:
			if data, overrides, ok := decodeStructuredFrame(message.Payload); ok {
				recorder.RecordOutput(data, overrides)
			} else {
				recorder.RecordOutput(message.Payload, nil)
			}
		default:
			recorder.RecordOutput(message.Payload, nil)
		}
	}
}

// compareGolden checks the final checksum chain against a golden
// transcript. A golden without a checksum chain pins nothing yet and
// passes, but still records the assert event so the trace shows the
// comparison ran.
func (d *Driver) compareGolden(golden *Golden, summary Summary, result *Result, recorder *Recorder) {
	if golden.ChecksumChain != "" && golden.ChecksumChain != summary.ChecksumChain {
		result.Outcome = "fail"
		message := fmt.Sprintf("Golden checksum mismatch: expected %s, got %s",
			golden.ChecksumChain, summary.ChecksumChain)
		result.Errors = append(result.Errors, message)
		recorder.Emit("assert", map[string]any{
			"assertion": "golden_checksum_chain",
			"status":    "failed",
			"details": fmt.Sprintf("expected=%s actual=%s frames_expected=%d frames_actual=%d",
				golden.ChecksumChain, summary.ChecksumChain, golden.Frames, summary.Frames),
		})
		return
	}
	recorder.Emit("assert", map[string]any{
		"assertion": "golden_checksum_chain",
		"status":    "passed",
		"details":   fmt.Sprintf("checksum=%s frames=%d", summary.ChecksumChain, summary.Frames),
	})
}
