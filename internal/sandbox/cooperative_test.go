package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooperativeExecutorRunsValidCode(t *testing.T) {
	code := `
func Run(ctx map[string]any) map[string]any {
	datasets := ctx["datasets"].(map[string]any)
	return map[string]any{"type": "number", "value": len(datasets)}
}
`
	exec := &CooperativeExecutor{}
	result := exec.Run(context.Background(), code, RunContext{
		Datasets: map[string]any{"sales": []any{}},
	}, Options{})

	require.NoError(t, result.Err)
	assert.Equal(t, Done, result.State)
	assert.Equal(t, "number", result.Value["type"])
	assert.Equal(t, 1, result.Value["value"])
}

func TestCooperativeExecutorRejectsInvalidCode(t *testing.T) {
	code := `
import "os"

func Run(ctx map[string]any) map[string]any {
	os.Exit(1)
	return nil
}
`
	exec := &CooperativeExecutor{}
	result := exec.Run(context.Background(), code, RunContext{}, Options{})

	assert.Equal(t, Rejected, result.State)
	assert.Error(t, result.Err)
}

func TestCooperativeExecutorTimesOut(t *testing.T) {
	code := `
func Run(ctx map[string]any) map[string]any {
	for {
	}
}
`
	exec := &CooperativeExecutor{}
	result := exec.Run(context.Background(), code, RunContext{}, Options{Timeout: 50 * time.Millisecond})

	assert.Equal(t, TimedOut, result.State)
	assert.Error(t, result.Err)
}

func TestCooperativeExecutorFallsBackToNamedVariable(t *testing.T) {
	code := `
var result = map[string]any{"type": "text", "value": "from variable"}
`
	exec := &CooperativeExecutor{}
	res := exec.Run(context.Background(), code, RunContext{}, Options{})

	require.NoError(t, res.Err)
	assert.Equal(t, Done, res.State)
	assert.Equal(t, "from variable", res.Value["value"])
}
