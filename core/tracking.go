package core

import (
	"time"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
)

// beginTracking opens an analysis run. It returns 0 when tracking is off or failed.
func beginTracking(store contract.AnalysisStore, cfg *contract.Config, start time.Time) int64 {
	if store == nil {
		return 0
	}
	analysisID, err := store.BeginAnalysis(cfg.Slug(), start, cfg.Params())
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return 0
	}
	return analysisID
}

// endTracking records contributor rollups and closes the run.
func endTracking(store contract.AnalysisStore, analysisID int64, result schema.AnalysisResult, end time.Time) {
	if store == nil || analysisID <= 0 {
		return
	}
	if err := store.RecordContributorScores(analysisID, result.Contributors); err != nil {
		contract.LogWarn("Failed to record contributor scores", err)
	}
	if err := store.EndAnalysis(analysisID, end, RunSummaryOf(result)); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// RunSummaryOf extracts what the analysis store keeps about a run.
func RunSummaryOf(result schema.AnalysisResult) schema.RunSummary {
	return schema.RunSummary{
		Repository:     result.Repository.FullName,
		TotalCommits:   result.Summary.CommitCount,
		Score:          result.Summary.Score,
		HeuristicScore: result.Summary.HeuristicScore,
		AIStatus:       result.AIStatus,
		TotalTokens:    result.TokenUsage.TotalTokens,
	}
}
