package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// CooperativeExecutor runs generated code in-process via yaegi,
// grounded directly on theRebelliousNerd-codenerd's YaegiExecutor:
// interp.New, i.Use(stdlib.Symbols), evaluate, look up the entry
// point, and run it on a goroutine guarded by a select on
// ctx.Done(). Unlike the teacher's tool-call entry point
// (func RunTool(string) (string, error)), generated analysis code
// exposes func Run(ctx map[string]any) map[string]any.
type CooperativeExecutor struct{}

// Run validates code, then evaluates it under a context deadline.
// State transitions: Idle -> Validating -> Executing -> Capturing ->
// Done, or Idle -> Validating -> Rejected, or Executing -> TimedOut.
func (e *CooperativeExecutor) Run(ctx context.Context, code string, rc RunContext, opts Options) Result {
	opts = opts.withDefaults()
	start := time.Now()

	if err := Validate(code); err != nil {
		return Result{State: Rejected, Err: err, Elapsed: time.Since(start)}
	}

	deadline, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type outcome struct {
		result RunResult
		stdout string
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		var stdoutBuf strings.Builder
		i := interp.New(interp.Options{Stdout: &stdoutBuf})
		if err := i.Use(stdlib.Symbols); err != nil {
			done <- outcome{err: fmt.Errorf("sandbox: load stdlib symbols: %w", err)}
			return
		}

		if _, err := i.Eval(wrapPackage(code)); err != nil {
			done <- outcome{err: fmt.Errorf("sandbox: eval: %w", err)}
			return
		}

		result, err := captureResult(i, rc)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		done <- outcome{result: result, stdout: stdoutBuf.String()}
	}()

	select {
	case <-deadline.Done():
		return Result{State: TimedOut, Err: fmt.Errorf("sandbox: execution exceeded %s", opts.Timeout), Elapsed: time.Since(start)}
	case out := <-done:
		elapsed := time.Since(start)
		if out.err != nil {
			return Result{State: Faulted, Err: out.err, Elapsed: elapsed}
		}
		stdout := out.stdout
		if len(stdout) > opts.OutputCap {
			stdout = stdout[:opts.OutputCap]
		}
		return Result{
			State:   Done,
			Value:   map[string]any{"type": out.result.Type, "value": out.result.Value},
			Stdout:  stdout,
			Elapsed: elapsed,
		}
	}
}
