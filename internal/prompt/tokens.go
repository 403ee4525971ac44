package prompt

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultUserBudget caps the user message's estimated token count,
// grounded on the teacher's Pipeline accumulating promptTexts/
// responseTexts against a tokenizer for its token-usage statistics.
// Here the same cl100k_base count drives trimming, not just reporting:
// a question with many loaded datasets must still fit the model's
// context window.
const DefaultUserBudget = 6000

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens returns text's token count under the cl100k_base
// encoding (the same family the teacher selects for GPT-3.5/GPT-4/
// DeepSeek). If the encoding cannot be loaded, it falls back to a
// chars-per-token-4 estimate rather than failing prompt construction.
func EstimateTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}
