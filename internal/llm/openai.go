package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to OpenAI or any server implementing its chat API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

var _ contract.SemanticProvider = &OpenAIProvider{} // Compile-time check

// NewOpenAIProvider creates a provider. An empty baseURL uses api.openai.com.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if model == "" {
		model = contract.DefaultOpenAIModel
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(clientConfig), model: model}
}

// Name implements the SemanticProvider interface.
func (p *OpenAIProvider) Name() string {
	return "openai/" + p.model
}

// AnalyzeBatch implements the SemanticProvider interface.
func (p *OpenAIProvider) AnalyzeBatch(ctx context.Context, items []schema.SemanticItem) (contract.BatchResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(items)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return contract.BatchResponse{}, p.mapError(err)
	}

	usage := schema.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if len(resp.Choices) == 0 {
		return contract.BatchResponse{Usage: usage}, errors.New("LLM returned empty response")
	}
	return contract.BatchResponse{Content: resp.Choices[0].Message.Content, Usage: usage}, nil
}

func (p *OpenAIProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return contract.ProviderErrorFromStatus(p.Name(), apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return contract.ProviderErrorFromStatus(p.Name(), reqErr.HTTPStatusCode, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("failed to call %s: %w", p.Name(), err)
}
