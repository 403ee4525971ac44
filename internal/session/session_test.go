package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlquery/corecube/internal/dataset"
)

func emptyRegistry(t *testing.T) *dataset.Registry {
	t.Helper()
	return dataset.NewRegistry()
}

func loadedRegistry(t *testing.T) *dataset.Registry {
	t.Helper()
	d := dataset.Build("sales", "", []string{"id", "amount"}, []map[string]any{
		{"id": "1", "amount": "10"},
	})
	return dataset.NewRegistry(d)
}

func TestSessionNotReadyWithoutDatasets(t *testing.T) {
	s := New(emptyRegistry(t), nil)
	assert.False(t, s.Ready())
}

func TestSessionReadyWithLoadedDataset(t *testing.T) {
	s := New(loadedRegistry(t), nil)
	assert.True(t, s.Ready())
	assert.Len(t, s.Datasets(), 1)
}

func TestSessionRecordQueryIsObservable(t *testing.T) {
	s := New(loadedRegistry(t), nil)
	s.Lock()
	s.RecordQuery("how many rows", "SELECT COUNT(*) FROM sales")
	s.Unlock()

	assert.Equal(t, "how many rows", s.LastQuestion)
	assert.Equal(t, "SELECT COUNT(*) FROM sales", s.LastCode)
}

func TestRegistryAddGetRemove(t *testing.T) {
	reg := NewRegistry()
	s := New(loadedRegistry(t), nil)
	reg.Add(s)

	got, err := reg.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, 1, reg.Len())

	require.NoError(t, reg.Remove(s.ID))
	assert.Equal(t, 0, reg.Len())

	_, err = reg.Get(s.ID)
	assert.Error(t, err)
}

func TestRegistryGetUnknownSessionErrors(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("does-not-exist")
	assert.Error(t, err)
}
