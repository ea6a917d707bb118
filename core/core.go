// Package core has core logic for repository analysis and commit scoring.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/gitgrade/core/semantic"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/internal/hosting"
	"github.com/huangsam/gitgrade/internal/llm"
	"github.com/huangsam/gitgrade/internal/outwriter"
	"github.com/huangsam/gitgrade/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// Collaborator factories. Tests swap them for fakes.
var (
	newHostingClient    func(cfg *contract.Config) (contract.HostingClient, error)                        = hosting.NewClient
	newSemanticProvider func(ctx context.Context, cfg *contract.Config) (contract.SemanticProvider, error) = llm.NewProvider
)

// ExecuteAnalyze runs a repository analysis and prints the result.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := RunAnalysis(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteAnalysis(result, cfg, time.Since(start))
}

// ExecutePolicy prints the active scoring policy.
// This is a static display that does not require any fetching.
func ExecutePolicy(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.NewOutWriter().WritePolicy(cfg.Policy, cfg)
}

// ExecuteScore scores one ad-hoc commit and prints the breakdown.
func ExecuteScore(_ context.Context, cfg *contract.Config, c schema.Commit) error {
	report := ScoreSingleCommit(cfg.Policy, c)
	return outwriter.NewOutWriter().WriteCommitReport(report, cfg)
}

// RunAnalysis fetches history, analyzes it and returns the result. A fresh
// cached result is returned without fetching unless cfg.NoCache is set.
func RunAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.AnalysisResult, error) {
	if !shouldSuppressHeader(ctx) {
		contract.LogAnalysisHeader(cfg)
	}

	var resultStore contract.CacheStore
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		resultStore = mgr.GetResultStore()
		analysisStore = mgr.GetAnalysisStore()
	}

	// --- 0. Result cache ---
	key := resultCacheKey(cfg)
	if !cfg.NoCache {
		if cached, age, ok := checkResultCache(resultStore, key, cfg.CacheTTL, time.Now()); ok {
			if !shouldSuppressHeader(ctx) {
				contract.LogCacheHit(cfg, age.Round(time.Second).String())
			}
			return *cached, nil
		}
	}

	// --- 1. Begin Analysis Tracking (if configured) ---
	start := time.Now()
	analysisID := beginTracking(analysisStore, cfg, start)

	runCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	// --- 2. Fetch Phase ---
	client, err := newHostingClient(cfg)
	if err != nil {
		return schema.AnalysisResult{}, fmt.Errorf("failed to create %s client: %w", cfg.Source, err)
	}
	metadata, err := client.FetchRepository(runCtx, cfg.Owner, cfg.Repo)
	if err != nil {
		return schema.AnalysisResult{}, fmt.Errorf("cannot fetch repository %s: %w", cfg.Slug(), err)
	}
	commits, err := client.FetchCommits(runCtx, cfg.Owner, cfg.Repo, cfg.Limit)
	if err != nil {
		return schema.AnalysisResult{}, fmt.Errorf("cannot fetch commits for %s: %w", cfg.Slug(), err)
	}

	// --- 3. Core Analysis ---
	provider, err := newSemanticProvider(runCtx, cfg)
	if err != nil {
		contract.LogWarn("AI enhancement disabled", err)
		provider = nil
	}
	opts := semantic.DefaultOptions()
	opts.BatchSize = cfg.BatchSize
	opts.MaxConcurrent = cfg.AIConcurrency
	policy := cfg.Policy

	result := Analyze(runCtx, AnalysisInput{
		Metadata: metadata,
		Commits:  commits,
		Provider: provider,
		Policy:   &policy,
		Options:  opts,
	})
	end := time.Now()
	result.AnalyzedAt = end.UTC()
	result.ElapsedSeconds = end.Sub(start).Seconds()

	// --- 4. Persist ---
	if cacheable(result) {
		storeResult(resultStore, key, result, end)
	} else if resultStore != nil {
		contract.LogWarn("Result not cached", fmt.Errorf("%d AI batches failed", result.TokenUsage.FailedBatches))
	}
	endTracking(analysisStore, analysisID, result, end)

	return result, nil
}

// NewAdHocCommit builds a commit for standalone scoring. parents > 1 makes it a merge.
func NewAdHocCommit(message string, additions, deletions, files, parents int) schema.Commit {
	additions, deletions = max(0, additions), max(0, deletions)
	c := schema.Commit{
		SHA:     "adhoc",
		Message: message,
		Stats: schema.CommitStats{
			Additions:    additions,
			Deletions:    deletions,
			Total:        additions + deletions,
			FilesChanged: max(0, files),
		},
	}
	for i := range max(0, parents) {
		c.ParentSHAs = append(c.ParentSHAs, fmt.Sprintf("parent%d", i+1))
	}
	return c
}
