package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/gitgrade/core/semantic"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) // a Monday

func goodCommit(sha, email string, at time.Time) schema.Commit {
	return schema.Commit{
		SHA:        sha,
		Message:    "feat(auth): add login flow",
		Author:     schema.Author{Name: email, Email: email},
		Timestamp:  at,
		Stats:      schema.CommitStats{Additions: 40, Deletions: 20, Total: 60, FilesChanged: 3},
		ParentSHAs: []string{"p"},
	}
}

func sampleHistory() []schema.Commit {
	return []schema.Commit{
		goodCommit("c1", "ann@x.io", baseTime),
		goodCommit("c2", "ann@x.io", baseTime.Add(24*time.Hour)),
		{
			SHA:        "c3",
			Message:    "wip",
			Author:     schema.Author{Name: "Bob", Email: "bob@x.io"},
			Timestamp:  baseTime.Add(48 * time.Hour),
			Stats:      schema.CommitStats{Additions: 1500, Deletions: 200, Total: 1700, FilesChanged: 60},
			ParentSHAs: []string{"p"},
		},
		{
			SHA:        "c4",
			Message:    "Merge branch 'main'",
			Author:     schema.Author{Name: "Bob", Email: "bob@x.io"},
			Timestamp:  baseTime.Add(72 * time.Hour),
			Stats:      schema.CommitStats{Additions: 10, Total: 10, FilesChanged: 1},
			ParentSHAs: []string{"p1", "p2"},
		},
	}
}

// analyzeEverything returns a provider response covering every item of a batch.
func analyzeEverything(items []schema.SemanticItem) contract.BatchResponse {
	entries := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entries = append(entries, map[string]any{
			"sha": item.SHA, "intent": "feature", "clarity": 90, "completeness": 80,
			"technical_quality": 70, "summary": "adds login",
		})
	}
	b, _ := json.Marshal(entries)
	return contract.BatchResponse{Content: string(b), Usage: schema.TokenUsage{PromptTokens: 40, CompletionTokens: 20, TotalTokens: 60, Requests: 1}}
}

// echoProvider analyzes every item it is given.
type echoProvider struct{}

func (echoProvider) Name() string { return "mock/model" }

func (echoProvider) AnalyzeBatch(_ context.Context, items []schema.SemanticItem) (contract.BatchResponse, error) {
	return analyzeEverything(items), nil
}

func fastOptions() semantic.Options {
	opts := semantic.DefaultOptions()
	opts.InitialBackoff = time.Millisecond
	opts.Warn = func(string, error) {}
	return opts
}

func TestAnalyze_Empty(t *testing.T) {
	result := Analyze(context.Background(), AnalysisInput{
		Metadata: schema.RepositoryMetadata{FullName: "octo/empty"},
		Options:  fastOptions(),
	})

	assert.Equal(t, 0, result.Summary.Score)
	assert.Equal(t, 0, result.Summary.CommitCount)
	assert.Equal(t, schema.NeedsImprovement, result.Summary.Category)
	assert.Empty(t, result.Commits)
	assert.Empty(t, result.Contributors)
	assert.Equal(t, schema.AIDisabled, result.AIStatus)
	assert.Equal(t, "octo/empty", result.Repository.FullName)
	assert.True(t, result.AnalyzedAt.IsZero(), "analysis never reads the clock")
}

func TestAnalyze_SingleGoodCommit(t *testing.T) {
	result := Analyze(context.Background(), AnalysisInput{
		Commits: []schema.Commit{goodCommit("abc", "ann@x.io", baseTime)},
		Options: fastOptions(),
	})

	require.Len(t, result.Commits, 1)
	assert.Equal(t, 100, result.Commits[0].Overall)
	assert.Equal(t, 100, result.Summary.Score)
	assert.Equal(t, 100, result.Summary.HeuristicScore)
	assert.Equal(t, schema.Excellent, result.Summary.Category)
	assert.InDelta(t, 1.0, result.Summary.ConventionalRatio, 1e-9)
	require.Len(t, result.Contributors, 1)
	assert.Equal(t, 1, result.Collaboration.BusFactor)
	assert.Equal(t, schema.DefaultScoringPolicy().Version, result.PolicyVersion)
}

func TestAnalyze_Heuristic(t *testing.T) {
	result := Analyze(context.Background(), AnalysisInput{
		Metadata: schema.RepositoryMetadata{FullName: "octo/hello"},
		Commits:  sampleHistory(),
		Options:  fastOptions(),
	})

	summary := result.Summary
	assert.Equal(t, 4, summary.CommitCount)
	assert.Equal(t, 2, summary.ContributorCount)
	assert.Equal(t, 1590, summary.Additions)
	assert.Equal(t, 240, summary.Deletions)
	assert.InDelta(t, 0.5, summary.ConventionalRatio, 1e-9)
	assert.InDelta(t, 0.25, summary.MergeRatio, 1e-9)
	assert.Equal(t, summary.HeuristicScore, summary.Score, "without a provider both scores agree")
	assert.GreaterOrEqual(t, summary.Score, 0)
	assert.LessOrEqual(t, summary.Score, 100)

	assert.Equal(t, 1, result.AntiPatterns.Counts[schema.GiantCommit])
	assert.Equal(t, 1, result.AntiPatterns.Counts[schema.WIPCommit])

	require.Len(t, result.Enhanced, 4)
	for i, e := range result.Enhanced {
		assert.False(t, e.AIApplied)
		assert.Equal(t, result.Commits[i].Overall, e.Overall)
	}
	assert.Equal(t, schema.AIDisabled, result.AIStatus)
	assert.Zero(t, result.AICoverage)
	assert.Zero(t, result.TokenUsage.TotalTokens)
}

func TestAnalyze_Deterministic(t *testing.T) {
	in := AnalysisInput{Commits: sampleHistory(), Options: fastOptions()}
	first := Analyze(context.Background(), in)
	for range 5 {
		assert.Equal(t, first, Analyze(context.Background(), in))
	}
}

func TestAnalyze_WithProvider(t *testing.T) {
	provider := echoProvider{}

	result := Analyze(context.Background(), AnalysisInput{
		Commits:  []schema.Commit{goodCommit("c1", "ann@x.io", baseTime), goodCommit("c2", "ann@x.io", baseTime.Add(time.Hour))},
		Provider: provider,
		Options:  fastOptions(),
	})

	assert.Equal(t, schema.AIFull, result.AIStatus)
	assert.Equal(t, "mock/model", result.AIProvider)
	assert.Equal(t, 2, result.AICoverage)
	assert.Equal(t, 60, result.TokenUsage.TotalTokens)
	assert.Equal(t, 100, result.Summary.HeuristicScore)
	// 100*30 + 90*25 + 80*20 + 100*20 + 70*5 over 100
	assert.Equal(t, 92, result.Summary.Score)
	for _, e := range result.Enhanced {
		assert.True(t, e.AIApplied)
		assert.Equal(t, schema.FeatureIntent, e.Intent)
	}
	require.Len(t, result.Contributors, 1)
	assert.Equal(t, 92, result.Contributors[0].EnhancedAverage)
}

func TestAnalyze_ProviderFailureKeepsHeuristics(t *testing.T) {
	provider := &contract.MockSemanticProvider{}
	provider.On("Name").Return("mock/model")
	provider.On("AnalyzeBatch", mock.Anything, mock.Anything).
		Return(contract.BatchResponse{}, contract.ProviderErrorFromStatus("mock", 401, errors.New("bad key")))

	result := Analyze(context.Background(), AnalysisInput{
		Commits:  sampleHistory(),
		Provider: provider,
		Options:  fastOptions(),
	})

	assert.Equal(t, schema.AIDisabled, result.AIStatus)
	assert.Equal(t, "mock/model", result.AIProvider)
	assert.Zero(t, result.AICoverage)
	assert.Equal(t, result.Summary.HeuristicScore, result.Summary.Score)
	assert.Equal(t, 1, result.TokenUsage.FailedBatches)
}

func TestAnalyze_PolicyIsCopied(t *testing.T) {
	policy := schema.DefaultScoringPolicy()
	policy.Version = "custom"
	result := Analyze(context.Background(), AnalysisInput{
		Commits: sampleHistory(),
		Policy:  &policy,
		Options: fastOptions(),
	})
	assert.Equal(t, "custom", result.PolicyVersion)
}

func TestAnalyze_AllMerges(t *testing.T) {
	var commits []schema.Commit
	for i := range 3 {
		commits = append(commits, schema.Commit{
			SHA:        fmt.Sprintf("m%d", i),
			Message:    "Merge pull request #1",
			Author:     schema.Author{Email: "ann@x.io"},
			Timestamp:  baseTime.Add(time.Duration(i) * time.Hour),
			ParentSHAs: []string{"a", "b"},
		})
	}
	result := Analyze(context.Background(), AnalysisInput{Commits: commits, Options: fastOptions()})
	assert.InDelta(t, 1.0, result.Summary.MergeRatio, 1e-9)
	require.Len(t, result.Contributors, 1)
	assert.Equal(t, 3, result.Contributors[0].MergeCount)
}

func TestScoreSingleCommit(t *testing.T) {
	tests := []struct {
		name         string
		commit       schema.Commit
		wantOverall  int
		wantCategory schema.Category
		wantPattern  schema.AntiPatternType
	}{
		{
			name:         "conventional and small",
			commit:       NewAdHocCommit("feat(auth): add login flow", 40, 20, 3, 1),
			wantOverall:  100,
			wantCategory: schema.Excellent,
		},
		{
			name:         "wip giant",
			commit:       NewAdHocCommit("wip", 3000, 0, 80, 1),
			wantCategory: schema.NeedsImprovement,
			wantPattern:  schema.WIPCommit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ScoreSingleCommit(schema.DefaultScoringPolicy(), tt.commit)
			if tt.wantOverall > 0 {
				assert.Equal(t, tt.wantOverall, report.Score.Overall)
			}
			assert.Equal(t, tt.wantCategory, report.Category)
			assert.Equal(t, schema.DefaultScoringPolicy().Version, report.PolicyVersion)
			assert.NotEmpty(t, report.Areas)
			if tt.wantPattern != "" {
				var types []schema.AntiPatternType
				for _, r := range report.AntiPatterns {
					types = append(types, r.Type)
				}
				assert.Contains(t, types, tt.wantPattern)
				assert.Contains(t, types, schema.GiantCommit)
			} else {
				assert.Empty(t, report.AntiPatterns)
			}
		})
	}
}

func TestNewAdHocCommit(t *testing.T) {
	c := NewAdHocCommit("fix: x", 10, -5, 2, 2)
	assert.Equal(t, "adhoc", c.SHA)
	assert.Equal(t, 10, c.Stats.Additions)
	assert.Equal(t, 0, c.Stats.Deletions)
	assert.Equal(t, 10, c.Stats.Total)
	assert.Equal(t, 2, c.Stats.FilesChanged)
	assert.Equal(t, []string{"parent1", "parent2"}, c.ParentSHAs)
	assert.True(t, c.IsMerge())

	assert.Empty(t, NewAdHocCommit("x", 0, 0, 0, 0).ParentSHAs)
}
