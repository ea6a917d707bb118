package core

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/internal/iocache"
	"github.com/huangsam/gitgrade/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResultCacheKey(t *testing.T) {
	base := testConfig()
	key := resultCacheKey(base)
	assert.Len(t, key, 64)
	assert.Equal(t, key, resultCacheKey(base.Clone()), "key is stable")

	tests := []struct {
		name   string
		mutate func(cfg *contract.Config)
	}{
		{"repo", func(c *contract.Config) { c.Repo = "other" }},
		{"limit", func(c *contract.Config) { c.Limit = 7 }},
		{"provider", func(c *contract.Config) { c.Provider = schema.OpenAIProvider }},
		{"policy version", func(c *contract.Config) { c.Policy.Version = "v2" }},
		{"source", func(c *contract.Config) { c.Source = schema.LocalSource }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base.Clone()
			tt.mutate(cfg)
			assert.NotEqual(t, key, resultCacheKey(cfg))
		})
	}

	t.Run("local path", func(t *testing.T) {
		a, b := base.Clone(), base.Clone()
		a.Source, b.Source = schema.LocalSource, schema.LocalSource
		a.RepoPath, b.RepoPath = "/src/a", "/src/b"
		assert.NotEqual(t, resultCacheKey(a), resultCacheKey(b))
	})

	t.Run("model is not part of the key", func(t *testing.T) {
		cfg := base.Clone()
		cfg.AIModel = "something-else"
		assert.Equal(t, key, resultCacheKey(cfg))
	})
}

func TestCheckResultCache(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	payload, err := json.Marshal(schema.AnalysisResult{
		Repository: schema.RepositoryMetadata{FullName: "octo/hello"},
		Summary:    schema.RepositorySummary{Score: 77},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		wantHit bool
	}{
		{"fresh hit", payload, currentCacheVersion, now.Add(-time.Hour).Unix(), nil, true},
		{"miss", nil, 0, 0, sql.ErrNoRows, false},
		{"stale", payload, currentCacheVersion, now.Add(-48 * time.Hour).Unix(), nil, false},
		{"future timestamp", payload, currentCacheVersion, now.Add(time.Hour).Unix(), nil, false},
		{"version mismatch", payload, currentCacheVersion + 1, now.Unix(), nil, false},
		{"corrupt payload", []byte("{not json"), currentCacheVersion, now.Unix(), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "k").Return(tt.data, tt.version, tt.ts, tt.err)

			result, age, ok := checkResultCache(store, "k", 24*time.Hour, now)
			assert.Equal(t, tt.wantHit, ok)
			if tt.wantHit {
				require.NotNil(t, result)
				assert.True(t, result.FromCache)
				assert.Equal(t, 77, result.Summary.Score)
				assert.Equal(t, time.Hour, age)
			} else {
				assert.Nil(t, result)
			}
			store.AssertExpectations(t)
		})
	}

	t.Run("nil store", func(t *testing.T) {
		_, _, ok := checkResultCache(nil, "k", time.Hour, now)
		assert.False(t, ok)
	})
}

func TestStoreResult(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := &iocache.MockCacheStore{}
	store.On("Set", "k", mock.AnythingOfType("[]uint8"), currentCacheVersion, now.Unix()).Return(nil).Once()

	storeResult(store, "k", schema.AnalysisResult{PolicyVersion: "v1"}, now)
	store.AssertExpectations(t)

	// Nil stores are ignored
	storeResult(nil, "k", schema.AnalysisResult{}, now)
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		name   string
		result schema.AnalysisResult
		want   bool
	}{
		{"heuristics only", schema.AnalysisResult{AIStatus: schema.AIDisabled}, true},
		{"fully enhanced", schema.AnalysisResult{AIStatus: schema.AIFull, AIProvider: "openai/gpt-4o-mini"}, true},
		{"partial entries without failed batches", schema.AnalysisResult{AIStatus: schema.AIPartial, AIProvider: "openai/gpt-4o-mini"}, true},
		{"some batches failed", schema.AnalysisResult{AIStatus: schema.AIPartial, AIProvider: "openai/gpt-4o-mini", TokenUsage: schema.TokenUsage{FailedBatches: 1}}, false},
		{"every batch failed", schema.AnalysisResult{AIStatus: schema.AIDisabled, AIProvider: "openai/gpt-4o-mini", TokenUsage: schema.TokenUsage{FailedBatches: 3}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cacheable(tt.result))
		})
	}
}
