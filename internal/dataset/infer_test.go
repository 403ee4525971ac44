package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferColumnInteger(t *testing.T) {
	col := InferColumn("quantidade", []any{"1", "2", "3", "4"})
	assert.Equal(t, TypeInteger, col.Type)
	assert.False(t, col.Nullable)
}

func TestInferColumnFloat(t *testing.T) {
	col := InferColumn("preco", []any{"1.5", "2.75", "3.0"})
	assert.Equal(t, TypeFloat, col.Type)
	assert.NotNil(t, col.Stats.Range)
}

func TestInferColumnBoolean(t *testing.T) {
	col := InferColumn("ativo", []any{"true", "false", "true"})
	assert.Equal(t, TypeBoolean, col.Type)
}

func TestInferColumnDate(t *testing.T) {
	col := InferColumn("data_venda", []any{"2024-01-01", "2024-02-15"})
	assert.Equal(t, TypeDate, col.Type)
	assert.NotNil(t, col.Stats.DateRange)
}

func TestInferColumnCategorical(t *testing.T) {
	values := make([]any, 0, 100)
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			values = append(values, "norte")
		} else {
			values = append(values, "sul")
		}
	}
	col := InferColumn("regiao", values)
	assert.Equal(t, TypeCategorical, col.Type)
	assert.NotEmpty(t, col.Stats.TopValues)
}

func TestInferColumnStringFallback(t *testing.T) {
	values := make([]any, 0, 50)
	for i := 0; i < 50; i++ {
		values = append(values, "unique-"+string(rune('a'+i%26)))
	}
	col := InferColumn("descricao", values)
	assert.Equal(t, TypeString, col.Type)
}

func TestInferColumnNullPercent(t *testing.T) {
	col := InferColumn("notas", []any{"1", nil, "3", nil})
	assert.True(t, col.Nullable)
	assert.Equal(t, 50.0, col.Stats.NullPercent)
}

func TestInferColumnPrimaryKeyCandidate(t *testing.T) {
	col := InferColumn("id", []any{"1", "2", "3", "4"})
	assert.True(t, col.IsPrimaryKey)
	assert.Equal(t, TypeID, col.Type)
}

func TestIsForeignKeyCandidate(t *testing.T) {
	col := &Column{Name: "cliente_id", Type: TypeInteger}
	assert.True(t, isForeignKeyCandidate(col))

	other := &Column{Name: "preco", Type: TypeFloat}
	assert.False(t, isForeignKeyCandidate(other))
}
