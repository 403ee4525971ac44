// Package llmgateway implements the LLM Gateway (C7): a single
// generate_code(system, user) capability backing the Analysis Engine's
// code-generation step. Real providers are grounded on the teacher's
// internal/llm/config.go (langchaingo/llms + langchaingo/llms/openai
// wrapping named model configs), generalized from a fixed DeepSeek/Qwen
// roster to provider configuration read from the environment by
// internal/config. The post-processing step that strips code fences and
// leading prose is grounded on the teacher's Pipeline.extractSQL.
package llmgateway

import (
	"context"
	"strings"
)

// Gateway generates analysis code from a system and user prompt.
type Gateway interface {
	GenerateCode(ctx context.Context, system, user string) (string, error)
}

// extractCode strips markdown code fences and leading prose the way
// Pipeline.extractSQL does for SQL, generalized to any fenced code
// block (```go, ```python, or a bare ```).
func extractCode(raw string) string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "Final Answer:"); idx >= 0 {
		text = strings.TrimSpace(text[idx+len("Final Answer:"):])
	}

	if idx := strings.Index(text, "```"); idx > 0 {
		text = text[idx:]
	}

	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) == 2 {
			text = lines[1]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	return text
}
