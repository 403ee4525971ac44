package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDetectsInferredRelationship(t *testing.T) {
	clientes := Build("clientes", "", []string{"id", "nome"}, []map[string]any{
		{"id": "1", "nome": "Ana"},
		{"id": "2", "nome": "Bo"},
	})
	vendas := Build("vendas", "", []string{"id", "cliente_id", "total"}, []map[string]any{
		{"id": "1", "cliente_id": "1", "total": "100"},
		{"id": "2", "cliente_id": "1", "total": "50"},
		{"id": "3", "cliente_id": "2", "total": "75"},
	})

	reg := NewRegistry(clientes, vendas)

	v := reg.Get("vendas")
	require.NotNil(t, v)
	require.Len(t, v.Relationships, 1)
	assert.Equal(t, RelationshipInferred, v.Relationships[0].Kind)
	assert.Equal(t, "clientes", v.Relationships[0].TargetDataset)
	assert.Equal(t, "id", v.Relationships[0].TargetColumn)
	assert.InDelta(t, 1.0, v.Relationships[0].OverlapConfidence, 0.001)
}

func TestRegistrySkipsLowOverlap(t *testing.T) {
	clientes := Build("clientes", "", []string{"id"}, []map[string]any{
		{"id": "1"}, {"id": "2"},
	})
	vendas := Build("vendas", "", []string{"id", "cliente_id"}, []map[string]any{
		{"id": "1", "cliente_id": "99"},
		{"id": "2", "cliente_id": "98"},
	})

	reg := NewRegistry(clientes, vendas)
	v := reg.Get("vendas")
	assert.Empty(t, v.Relationships)
}

func TestRegistryFlagsOrphans(t *testing.T) {
	clientes := Build("clientes", "", []string{"id"}, []map[string]any{
		{"id": "1"},
	})
	vendas := Build("vendas", "", []string{"id", "cliente_id"}, []map[string]any{
		{"id": "1", "cliente_id": "1"},
		{"id": "2", "cliente_id": "1"},
		{"id": "3", "cliente_id": "1"},
		{"id": "4", "cliente_id": "1"},
		{"id": "5", "cliente_id": "999"},
	})

	reg := NewRegistry(clientes, vendas)
	v := reg.Get("vendas")
	require.Len(t, v.Relationships, 1)

	found := false
	for _, issue := range v.QualityIssues {
		if issue.Kind == "orphan" {
			found = true
		}
	}
	assert.True(t, found)
}
