package llmgateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlquery/corecube/internal/config"
	"github.com/nlquery/corecube/internal/dataset"
)

func sampleDataset() *dataset.Dataset {
	return dataset.Build("sales", "", []string{"id", "amount"}, []map[string]any{
		{"id": "1", "amount": "10.5"},
		{"id": "2", "amount": "20.25"},
	})
}

func TestExtractCodeStripsFences(t *testing.T) {
	raw := "```go\nfunc Run(ctx map[string]any) map[string]any {\n\treturn nil\n}\n```"
	got := extractCode(raw)
	assert.Equal(t, "func Run(ctx map[string]any) map[string]any {\n\treturn nil\n}", got)
}

func TestExtractCodeStripsFinalAnswerPrefix(t *testing.T) {
	raw := "Thinking...\nFinal Answer: func Run(ctx map[string]any) map[string]any { return nil }"
	got := extractCode(raw)
	assert.Equal(t, "func Run(ctx map[string]any) map[string]any { return nil }", got)
}

func TestMockGatewayIsDeterministic(t *testing.T) {
	gw := &MockGateway{Datasets: []*dataset.Dataset{sampleDataset()}}

	code1, err1 := gw.GenerateCode(context.Background(), "system", "show me a summary")
	code2, err2 := gw.GenerateCode(context.Background(), "system", "show me a summary")

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, code1, code2)
}

func TestFallbackSkeletonUsesVisualizationPathOnKeyword(t *testing.T) {
	code := FallbackSkeleton("please chart the amount over time", []*dataset.Dataset{sampleDataset()})
	assert.Contains(t, code, "apex")
	assert.Contains(t, code, "amount")
}

func TestFallbackSkeletonFallsBackToTableWithoutKeyword(t *testing.T) {
	code := FallbackSkeleton("how many rows are there", []*dataset.Dataset{sampleDataset()})
	assert.Contains(t, code, "table")
	assert.Contains(t, code, "SELECT * FROM")
}

func TestFallbackSkeletonHandlesNoDatasets(t *testing.T) {
	code := FallbackSkeleton("anything", nil)
	assert.Contains(t, code, "no dataset is loaded")
}

func TestBuildSelectsMockWithoutAPIKey(t *testing.T) {
	cfg := &config.Config{}
	gw, err := Build(cfg, nil)
	require.NoError(t, err)
	_, isMock := gw.(*MockGateway)
	assert.True(t, isMock)
}
