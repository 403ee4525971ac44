// Command sandboxrunner is the isolated-execution counterpart to
// sandbox.CooperativeExecutor: it reads a {"code","datasets"} request
// from stdin, evaluates the code under yaegi in its own process, and
// writes a {"type","value","stdout","error"} response to stdout. It
// is spawned and killed by sandbox.IsolatedExecutor, never run
// interactively.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/nlquery/corecube/internal/sandbox"
)

type request struct {
	Code     string         `json:"code"`
	Datasets map[string]any `json:"datasets"`
}

type response struct {
	Type   string `json:"type"`
	Value  any    `json:"value"`
	Stdout string `json:"stdout"`
	Error  string `json:"error"`
}

func main() {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		writeError(fmt.Errorf("read stdin: %w", err))
		return
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(fmt.Errorf("decode request: %w", err))
		return
	}

	if err := sandbox.Validate(req.Code); err != nil {
		writeError(err)
		return
	}

	var stdoutBuf strings.Builder
	i := interp.New(interp.Options{Stdout: &stdoutBuf})
	if err := i.Use(stdlib.Symbols); err != nil {
		writeError(fmt.Errorf("load stdlib symbols: %w", err))
		return
	}

	wrapped := req.Code
	if !strings.Contains(wrapped, "package ") {
		wrapped = "package main\n\n" + wrapped
	}
	if _, err := i.Eval(wrapped); err != nil {
		writeError(fmt.Errorf("eval: %w", err))
		return
	}

	rc := sandbox.RunContext{Datasets: req.Datasets}
	result, err := captureResult(i, rc)
	if err != nil {
		writeError(err)
		return
	}

	writeJSON(response{Type: result.Type, Value: result.Value, Stdout: stdoutBuf.String()})
}

// captureResult duplicates sandbox's unexported capture logic, since
// this binary runs in its own process and cannot import an unexported
// function across package boundaries; it is kept in lockstep with
// internal/sandbox/capture.go's variable-name fallback, including the
// map[string]any flattening that sidesteps yaegi's lack of symbols for
// host-defined types.
func captureResult(i *interp.Interpreter, rc sandbox.RunContext) (sandbox.RunResult, error) {
	if runFn, err := i.Eval("main.Run"); err == nil {
		if fn, ok := runFn.Interface().(func(map[string]any) map[string]any); ok {
			out := fn(map[string]any{"datasets": rc.Datasets, "sql": rc.SQL})
			typ, _ := out["type"].(string)
			return sandbox.RunResult{Type: typ, Value: out["value"]}, nil
		}
	}
	for _, name := range []string{"result", "resultado", "df", "data"} {
		v, err := i.Eval("main." + name)
		if err != nil {
			continue
		}
		m, ok := v.Interface().(map[string]any)
		if !ok {
			continue
		}
		typ, _ := m["type"].(string)
		return sandbox.RunResult{Type: typ, Value: m["value"]}, nil
	}
	return sandbox.RunResult{}, fmt.Errorf("generated code must define func Run(ctx) or one of result/resultado/df/data")
}

func writeJSON(r response) {
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(r)
}

func writeError(err error) {
	writeJSON(response{Error: err.Error()})
}
