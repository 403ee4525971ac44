package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlquery/corecube/internal/dataset"
)

func TestEstimateTokensGrowsWithLength(t *testing.T) {
	short := EstimateTokens("hello")
	long := EstimateTokens(strings.Repeat("hello world ", 200))
	assert.Positive(t, short)
	assert.Greater(t, long, short)
}

func TestUserDropsFeedbackWhenOverBudget(t *testing.T) {
	d := salesDataset()
	var huge []Example
	for i := 0; i < 2000; i++ {
		huge = append(huge, Example{Question: "past question filler text to inflate size", Code: "SELECT * FROM sales WHERE region = 'west'"})
	}

	out := User("how much did we sell", []*dataset.Dataset{d}, huge)

	assert.Contains(t, out, "## sales")
	assert.NotContains(t, out, "Similar past questions")
	assert.LessOrEqual(t, EstimateTokens(out), DefaultUserBudget)
}
