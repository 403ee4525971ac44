package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerPoolProfilesAllColumns(t *testing.T) {
	rows := []map[string]any{
		{"id": "1", "nome": "Ana", "idade": "30"},
		{"id": "2", "nome": "Bo", "idade": "25"},
	}
	pool := NewProfilerPool(2)
	cols, err := pool.ProfileColumns(context.Background(), []string{"id", "nome", "idade"}, rows)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, TypeInteger, cols["idade"].Type)

	for _, task := range pool.Snapshot() {
		assert.Equal(t, TaskCompleted, task.Status)
	}
}

func TestProfilerPoolRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewProfilerPool(1)
	_, err := pool.ProfileColumns(ctx, []string{"a", "b"}, []map[string]any{{"a": "1", "b": "2"}})
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestTaskStatusString(t *testing.T) {
	assert.Equal(t, "registered", TaskRegistered.String())
	assert.Equal(t, "running", TaskRunning.String())
	assert.Equal(t, "completed", TaskCompleted.String())
	assert.Equal(t, "failed", TaskFailed.String())
}
