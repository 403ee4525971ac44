package sandbox

import (
	"fmt"

	"github.com/traefik/yaegi/interp"
)

// resultVariableNames are the variable names the spec requires the
// executor to recognize as the captured answer: result, or one of its
// localized synonyms from the source corpus (resultado, df, data).
var resultVariableNames = []string{"result", "resultado", "df", "data"}

// captureResult runs main.Run(ctx) if generated code defines it,
// otherwise falls back to reading one of resultVariableNames as a
// package-level variable of shape map[string]any{"type":..., "value":...}.
//
// rc is flattened to a plain map before the call because yaegi cannot
// resolve RunContext as a type inside interpreted code; see the
// comment on RunContext in sandbox.go.
func captureResult(i *interp.Interpreter, rc RunContext) (RunResult, error) {
	if runFn, err := i.Eval("main.Run"); err == nil {
		if fn, ok := runFn.Interface().(func(map[string]any) map[string]any); ok {
			out := fn(map[string]any{"datasets": rc.Datasets, "sql": rc.SQL})
			typ, _ := out["type"].(string)
			return RunResult{Type: typ, Value: out["value"]}, nil
		}
	}

	for _, name := range resultVariableNames {
		v, err := i.Eval("main." + name)
		if err != nil {
			continue
		}
		m, ok := v.Interface().(map[string]any)
		if !ok {
			continue
		}
		typ, _ := m["type"].(string)
		return RunResult{Type: typ, Value: m["value"]}, nil
	}

	return RunResult{}, fmt.Errorf("sandbox: generated code must define func Run(ctx) or one of %v", resultVariableNames)
}
