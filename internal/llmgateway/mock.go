package llmgateway

import (
	"context"

	"github.com/nlquery/corecube/internal/dataset"
)

// MockGateway is the deterministic provider used by tests and by the
// startup default when no LLM provider is configured (spec.md §9,
// Open Question (b): "a deployment-level default is provided but is
// explicitly not hard-coded to a single paid provider/model"). It
// never calls a network service; it always returns the fallback
// skeleton for the supplied question and datasets.
type MockGateway struct {
	Datasets []*dataset.Dataset
}

// GenerateCode always succeeds, returning the same fallback skeleton a
// real provider's exception path would produce.
func (g *MockGateway) GenerateCode(ctx context.Context, system, user string) (string, error) {
	return FallbackSkeleton(user, g.Datasets), nil
}
