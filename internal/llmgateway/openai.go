package llmgateway

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/nlquery/corecube/internal/dataset"
)

// temperature and maxTokens are pinned low per spec.md §4.7 ("temperature
// pinned low, max-token budget"), matching the teacher's non-interactive
// CreateLLM construction which never exposes these as caller knobs.
const (
	temperature = 0.1
	maxTokens   = 1024
)

// ProviderGateway wraps a langchaingo llms.Model, grounded on the
// teacher's internal/llm/config.go CreateLLM (openai.New with model,
// token, and base URL options). On any call error it falls back to the
// deterministic skeleton rather than surfacing the provider's error,
// per spec.md §4.7 ("On any provider exception the gateway emits a
// ... fallback skeleton").
type ProviderGateway struct {
	model    llms.Model
	datasets []*dataset.Dataset
}

// NewProviderGateway builds a ProviderGateway for the given model
// name/API key/base URL, generalized from CreateLLMByType's named
// DeepSeek/Qwen roster to any OpenAI-compatible endpoint.
func NewProviderGateway(modelName, apiKey, baseURL string, datasets []*dataset.Dataset) (*ProviderGateway, error) {
	opts := []openai.Option{openai.WithModel(modelName), openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llmgateway: build provider: %w", err)
	}
	return &ProviderGateway{model: model, datasets: datasets}, nil
}

// GenerateCode calls the wrapped provider and post-processes its
// output with extractCode; on any error it returns the fallback
// skeleton instead of propagating the failure.
func (g *ProviderGateway) GenerateCode(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil || len(resp.Choices) == 0 {
		return FallbackSkeleton(user, g.datasets), nil
	}

	return extractCode(resp.Choices[0].Content), nil
}
