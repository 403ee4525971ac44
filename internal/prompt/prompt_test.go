package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlquery/corecube/internal/dataset"
)

func salesDataset() *dataset.Dataset {
	return dataset.Build("sales", "transaction log", []string{"id", "region", "amount", "sold_at"}, []map[string]any{
		{"id": "1", "region": "west", "amount": "10.5", "sold_at": "2024-01-01"},
		{"id": "2", "region": "east", "amount": "20.5", "sold_at": "2024-02-01"},
		{"id": "3", "region": "west", "amount": "30.5", "sold_at": "2024-03-01"},
	})
}

func TestSystemFixesOutputContract(t *testing.T) {
	sys := System()
	assert.Contains(t, sys, "func Run(ctx map[string]any) map[string]any")
	assert.Contains(t, sys, "sql")
}

func TestUserIncludesDatasetSections(t *testing.T) {
	d := salesDataset()
	out := User("how much did we sell", []*dataset.Dataset{d}, nil)

	assert.Contains(t, out, "## sales")
	assert.Contains(t, out, "rows=3")
	assert.Contains(t, out, "columns:")
}

func TestUserAppendsFeedbackExamples(t *testing.T) {
	d := salesDataset()
	out := User("q", []*dataset.Dataset{d}, []Example{{Question: "past q", Code: "SELECT 1"}})

	assert.Contains(t, out, "Similar past questions")
	assert.Contains(t, out, "past q")
}

func TestWorkedExamplesCoversProjectionAndAggregation(t *testing.T) {
	examples := WorkedExamples([]*dataset.Dataset{salesDataset()})

	assert.NotEmpty(t, examples)
	assert.LessOrEqual(t, len(examples), 6)

	var sawProjection, sawAggregation bool
	for _, ex := range examples {
		if ex.Code == "SELECT * FROM sales LIMIT 10" {
			sawProjection = true
		}
		if ex.Code == "SELECT SUM(amount) AS total FROM sales" {
			sawAggregation = true
		}
	}
	assert.True(t, sawProjection)
	assert.True(t, sawAggregation)
}
