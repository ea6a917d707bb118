// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/gitgrade/schema"
)

// HostingClient fetches repository metadata and commit history from a source.
// Implementations map their failures to *HostingError so callers can render
// accurate messages. Retrying is the client's own concern.
type HostingClient interface {
	// FetchRepository returns metadata for owner/repo.
	FetchRepository(ctx context.Context, owner, repo string) (schema.RepositoryMetadata, error)

	// FetchCommits returns up to limit commits, newest first, in source order.
	FetchCommits(ctx context.Context, owner, repo string, limit int) ([]schema.Commit, error)
}

// BatchResponse is the raw model output of one batch call plus its usage.
type BatchResponse struct {
	Content string
	Usage   schema.TokenUsage
}

// SemanticProvider analyzes a batch of commit messages with a language model.
// The returned content is untrusted text; callers parse and validate it.
type SemanticProvider interface {
	// Name identifies the provider and model, e.g. "openai/gpt-4o-mini".
	Name() string

	// AnalyzeBatch submits one batch. Errors should be *ProviderError when
	// the failure is known to be permanent.
	AnalyzeBatch(ctx context.Context, items []schema.SemanticItem) (BatchResponse, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(repository string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, summary schema.RunSummary) error

	// RecordContributorScores stores the contributor rollups of a run
	RecordContributorScores(analysisID int64, contributors []schema.ContributorScore) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns retrieves all analysis run records
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllContributorScores retrieves all contributor score records
	GetAllContributorScores() ([]schema.ContributorScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}
