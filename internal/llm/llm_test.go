package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testItems = []schema.SemanticItem{
	{SHA: "abc1234", Message: "feat(auth): add login flow", Body: "Adds OAuth login."},
	{SHA: "def5678", Message: "fix typo"},
}

const modelContent = `{"results":[{"sha":"abc1234","intent":"feature","clarity":90,"completeness":80,"technicalQuality":70,"summary":"Adds login."}]}`

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      contract.Config
		wantName string
		wantErr  bool
	}{
		{"none", contract.Config{Provider: schema.NoProvider, AIAPIKey: "k"}, "", false},
		{"missing key", contract.Config{Provider: schema.OpenAIProvider}, "", false},
		{"openai default model", contract.Config{Provider: schema.OpenAIProvider, AIAPIKey: "k"}, "openai/gpt-4o-mini", false},
		{"openai custom model", contract.Config{Provider: schema.OpenAIProvider, AIAPIKey: "k", AIModel: "gpt-4o"}, "openai/gpt-4o", false},
		{"gemini", contract.Config{Provider: schema.GeminiProvider, AIAPIKey: "k"}, "gemini/gemini-2.0-flash", false},
		{"unsupported", contract.Config{Provider: "claude", AIAPIKey: "k"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(context.Background(), &tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantName == "" {
				assert.Nil(t, provider)
				return
			}
			require.NotNil(t, provider)
			assert.Equal(t, tt.wantName, provider.Name())
		})
	}
}

func TestUserPrompt(t *testing.T) {
	prompt := userPrompt(testItems)
	assert.Contains(t, prompt, `"sha": "abc1234"`)
	assert.Contains(t, prompt, `"message": "fix typo"`)
	assert.Contains(t, prompt, "Adds OAuth login.")
	assert.Contains(t, systemPrompt, "technicalQuality")
}

func TestOpenAIAnalyzeBatch(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": modelContent}}},
			"usage":   map[string]any{"prompt_tokens": 40, "completion_tokens": 20, "total_tokens": 60},
		})
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("secret", "", srv.URL+"/v1")
	resp, err := provider.AnalyzeBatch(context.Background(), testItems)
	require.NoError(t, err)
	assert.Equal(t, modelContent, resp.Content)
	assert.Equal(t, schema.TokenUsage{PromptTokens: 40, CompletionTokens: 20, TotalTokens: 60}, resp.Usage)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.True(t, strings.Contains(messages[1].(map[string]any)["content"].(string), "def5678"))
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[],"usage":{"prompt_tokens":5,"completion_tokens":0,"total_tokens":5}}`))
	}))
	defer srv.Close()

	resp, err := NewOpenAIProvider("secret", "", srv.URL+"/v1").AnalyzeBatch(context.Background(), testItems)
	assert.ErrorContains(t, err, "empty response")
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, false},
		{"forbidden", http.StatusForbidden, `{"error":{"message":"no access","type":"invalid_request_error"}}`, false},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, true},
		{"server error", http.StatusInternalServerError, `oops`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAIProvider("secret", "", srv.URL+"/v1").AnalyzeBatch(context.Background(), testItems)
			var pe *contract.ProviderError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.Equal(t, tt.retryable, pe.Retryable)
			assert.Equal(t, tt.retryable, contract.IsRetryable(err))
		})
	}
}

func TestGeminiAnalyzeBatch(t *testing.T) {
	var gotPath string
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": modelContent}}},
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 30, "candidatesTokenCount": 12, "totalTokenCount": 42},
		})
	}))
	defer srv.Close()

	provider, err := NewGeminiProvider(context.Background(), "secret", "", srv.URL+"/")
	require.NoError(t, err)
	resp, err := provider.AnalyzeBatch(context.Background(), testItems)
	require.NoError(t, err)
	assert.Equal(t, modelContent, resp.Content)
	assert.Equal(t, schema.TokenUsage{PromptTokens: 30, CompletionTokens: 12, TotalTokens: 42}, resp.Usage)
	assert.True(t, strings.HasSuffix(gotPath, "gemini-2.0-flash:generateContent"), gotPath)

	genConfig, ok := got["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", genConfig["responseMimeType"])
	assert.Contains(t, got, "systemInstruction")
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"forbidden", http.StatusForbidden, false},
		{"unavailable", http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":` + strconv.Itoa(tt.status) + `,"message":"nope","status":"ERR"}}`))
			}))
			defer srv.Close()

			provider, err := NewGeminiProvider(context.Background(), "secret", "", srv.URL+"/")
			require.NoError(t, err)
			_, err = provider.AnalyzeBatch(context.Background(), testItems)
			var pe *contract.ProviderError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.Equal(t, tt.retryable, pe.Retryable)
		})
	}
}
