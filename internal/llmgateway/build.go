package llmgateway

import (
	"github.com/nlquery/corecube/internal/config"
	"github.com/nlquery/corecube/internal/dataset"
)

// Build selects a Gateway from configuration: a real provider when an
// API key is present, otherwise the deterministic mock. This is the
// only place the "absence falls back to mock" rule (spec.md §6, §9)
// is decided.
func Build(cfg *config.Config, datasets []*dataset.Dataset) (Gateway, error) {
	if !cfg.HasLLMProvider() {
		return &MockGateway{Datasets: datasets}, nil
	}
	return NewProviderGateway(cfg.LLM.ModelName, cfg.LLM.APIKey, cfg.LLM.BaseURL, datasets)
}
