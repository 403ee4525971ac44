package sandbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

func newInterp(t *testing.T) *interp.Interpreter {
	t.Helper()
	i := interp.New(interp.Options{})
	require.NoError(t, i.Use(stdlib.Symbols))
	return i
}

func TestCaptureResultUsesRunFunction(t *testing.T) {
	i := newInterp(t)
	_, err := i.Eval(wrapPackage(`
func Run(ctx map[string]any) map[string]any {
	return map[string]any{"type": "text", "value": "hello"}
}
`))
	require.NoError(t, err)

	result, err := captureResult(i, RunContext{Datasets: map[string]any{"sales": []any{}}})
	require.NoError(t, err)
	assert.Equal(t, "text", result.Type)
	assert.Equal(t, "hello", result.Value)
}

func TestCaptureResultPassesDatasetsIntoRunFunction(t *testing.T) {
	i := newInterp(t)
	_, err := i.Eval(wrapPackage(`
func Run(ctx map[string]any) map[string]any {
	datasets := ctx["datasets"].(map[string]any)
	return map[string]any{"type": "number", "value": len(datasets)}
}
`))
	require.NoError(t, err)

	result, err := captureResult(i, RunContext{Datasets: map[string]any{"sales": []any{}, "customers": []any{}}})
	require.NoError(t, err)
	assert.Equal(t, "number", result.Type)
	assert.Equal(t, 2, result.Value)
}

func TestCaptureResultFallsBackToNamedVariable(t *testing.T) {
	i := newInterp(t)
	_, err := i.Eval(wrapPackage(`
var result = map[string]any{"type": "number", "value": 42}
`))
	require.NoError(t, err)

	res, err := captureResult(i, RunContext{})
	require.NoError(t, err)
	assert.Equal(t, "number", res.Type)
	assert.Equal(t, 42, res.Value)
}

func TestCaptureResultFallsBackToLocalizedVariableName(t *testing.T) {
	i := newInterp(t)
	_, err := i.Eval(wrapPackage(`
var resultado = map[string]any{"type": "table", "value": "rows"}
`))
	require.NoError(t, err)

	res, err := captureResult(i, RunContext{})
	require.NoError(t, err)
	assert.Equal(t, "table", res.Type)
	assert.Equal(t, "rows", res.Value)
}

func TestCaptureResultErrorsWhenNothingMatches(t *testing.T) {
	i := newInterp(t)
	_, err := i.Eval(wrapPackage(`
var unrelated = 1
`))
	require.NoError(t, err)

	_, err = captureResult(i, RunContext{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "func Run"))
}
