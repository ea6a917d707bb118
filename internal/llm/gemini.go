package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
	"google.golang.org/genai"
)

// GeminiProvider talks to the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ contract.SemanticProvider = &GeminiProvider{} // Compile-time check

// NewGeminiProvider creates a provider. An empty baseURL uses the public endpoint.
func NewGeminiProvider(ctx context.Context, apiKey, model, baseURL string) (*GeminiProvider, error) {
	if model == "" {
		model = contract.DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Name implements the SemanticProvider interface.
func (p *GeminiProvider) Name() string {
	return "gemini/" + p.model
}

// AnalyzeBatch implements the SemanticProvider interface.
func (p *GeminiProvider) AnalyzeBatch(ctx context.Context, items []schema.SemanticItem) (contract.BatchResponse, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}
	result, err := p.client.Models.GenerateContent(ctx,
		p.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: userPrompt(items)}}}},
		config,
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return contract.BatchResponse{}, contract.ProviderErrorFromStatus(p.Name(), apiErr.Code, err)
		}
		return contract.BatchResponse{}, fmt.Errorf("failed to call %s: %w", p.Name(), err)
	}

	var usage schema.TokenUsage
	if md := result.UsageMetadata; md != nil {
		usage = schema.TokenUsage{
			PromptTokens:     int(md.PromptTokenCount),
			CompletionTokens: int(md.CandidatesTokenCount),
			TotalTokens:      int(md.TotalTokenCount),
		}
	}
	content := result.Text()
	if content == "" {
		return contract.BatchResponse{Usage: usage}, errors.New("LLM returned empty response")
	}
	return contract.BatchResponse{Content: content, Usage: usage}, nil
}
