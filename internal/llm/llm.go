// Package llm provides the language-model backends for semantic enhancement.
package llm

import (
	"context"
	"fmt"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
)

// NewProvider returns the provider selected by cfg. It returns nil without an
// error when enhancement is disabled or no API key was configured.
func NewProvider(ctx context.Context, cfg *contract.Config) (contract.SemanticProvider, error) {
	if cfg.Provider == schema.NoProvider || cfg.Provider == "" || cfg.AIAPIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case schema.OpenAIProvider:
		return NewOpenAIProvider(cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL), nil
	case schema.GeminiProvider:
		return NewGeminiProvider(ctx, cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
