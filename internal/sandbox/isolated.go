package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// IsolatedExecutor forks cmd/sandboxrunner and feeds it code plus a
// serialized Context over stdin, reading back a JSON Result over
// stdout. Unlike CooperativeExecutor it can actually terminate a
// misbehaving program on timeout, since cmd.Process.Kill reaches
// across the process boundary that a goroutine cannot.
type IsolatedExecutor struct {
	// BinaryPath is the path to the built sandboxrunner binary.
	BinaryPath string
}

type runnerRequest struct {
	Code     string         `json:"code"`
	Datasets map[string]any `json:"datasets"`
}

type runnerResponse struct {
	Type   string `json:"type"`
	Value  any    `json:"value"`
	Stdout string `json:"stdout"`
	Error  string `json:"error"`
}

// Run marshals code and ctx.Datasets to the subprocess, waits up to
// opts.Timeout, and kills the process outright on expiry.
func (e *IsolatedExecutor) Run(ctx context.Context, code string, rc RunContext, opts Options) Result {
	opts = opts.withDefaults()
	start := time.Now()

	if err := Validate(code); err != nil {
		return Result{State: Rejected, Err: err, Elapsed: time.Since(start)}
	}

	reqBody, err := json.Marshal(runnerRequest{Code: code, Datasets: rc.Datasets})
	if err != nil {
		return Result{State: Faulted, Err: fmt.Errorf("sandbox: encode request: %w", err), Elapsed: time.Since(start)}
	}

	deadline, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(deadline, e.BinaryPath)
	cmd.Stdin = bytes.NewReader(reqBody)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	elapsed := time.Since(start)

	if deadline.Err() == context.DeadlineExceeded {
		return Result{State: TimedOut, Err: fmt.Errorf("sandbox: isolated execution exceeded %s", opts.Timeout), Elapsed: elapsed}
	}
	if runErr != nil {
		return Result{State: Faulted, Err: fmt.Errorf("sandbox: runner exited: %w: %s", runErr, stderr.String()), Elapsed: elapsed}
	}

	var resp runnerResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Result{State: Faulted, Err: fmt.Errorf("sandbox: decode runner response: %w", err), Elapsed: elapsed}
	}
	if resp.Error != "" {
		return Result{State: Faulted, Err: fmt.Errorf("sandbox: %s", resp.Error), Elapsed: elapsed}
	}

	out := resp.Stdout
	if len(out) > opts.OutputCap {
		out = out[:opts.OutputCap]
	}
	return Result{
		State:   Done,
		Value:   map[string]any{"type": resp.Type, "value": resp.Value},
		Stdout:  out,
		Elapsed: elapsed,
	}
}
