package core

import (
	"context"

	"github.com/huangsam/gitgrade/core/agg"
	"github.com/huangsam/gitgrade/core/algo"
	"github.com/huangsam/gitgrade/core/semantic"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
)

// AnalysisInput is everything one repository run needs.
type AnalysisInput struct {
	Metadata schema.RepositoryMetadata
	Commits  []schema.Commit
	Provider contract.SemanticProvider // nil disables enhancement
	Policy   *schema.ScoringPolicy     // nil uses the default policy
	Options  semantic.Options
}

// Analyze runs the full scoring pipeline over one commit list.
//
// The pipeline scores every commit, rolls contributors up, detects
// anti-patterns, optionally enhances scores through the provider and then
// derives the temporal and collaboration bundles from the effective scores.
// The only suspension point is the enhancement step; cancelling ctx degrades
// the affected commits to their heuristic score. For fixed commits and fixed
// provider responses the result is identical across runs. AnalyzedAt is left
// for the caller.
func Analyze(ctx context.Context, in AnalysisInput) schema.AnalysisResult {
	policy := schema.DefaultScoringPolicy()
	if in.Policy != nil {
		policy = in.Policy.Clone()
	}
	scorer := algo.NewScorer(policy)

	commits := in.Commits
	scores := scorer.Commits(commits)
	contributors := agg.AggregateContributorsWith(policy, commits, agg.IndexScores(scores))
	antiPatterns := agg.DetectAntiPatternsWith(policy, commits)

	opts := in.Options
	opts.Policy = &policy
	enhancement := semantic.NewEnhancer(in.Provider, opts).Enhance(ctx, commits, scores)

	effective := enhancement.OverallIndex()
	if enhancement.Analyzed > 0 {
		contributors = agg.ApplyEnhancedAverages(contributors, commits, effective)
	}

	temporal := agg.AnalyzeTemporal(commits, effective)
	collaboration := agg.AnalyzeCollaboration(commits, contributors)

	return schema.AnalysisResult{
		Repository:    in.Metadata,
		Summary:       summarize(scorer, commits, scores, enhancement.Enhanced, contributors),
		Commits:       scores,
		Enhanced:      enhancement.Enhanced,
		Contributors:  contributors,
		AntiPatterns:  antiPatterns,
		Temporal:      temporal,
		Collaboration: collaboration,
		AIStatus:      enhancement.Status,
		AIProvider:    enhancement.Provider,
		AICoverage:    enhancement.Analyzed,
		TokenUsage:    enhancement.Usage,
		PolicyVersion: policy.Version,
	}
}

// summarize computes repository-wide aggregates. An empty history scores 0.
func summarize(scorer *algo.Scorer, commits []schema.Commit, scores []schema.CommitScore, enhanced []schema.EnhancedCommitScore, contributors []schema.ContributorScore) schema.RepositorySummary {
	summary := schema.RepositorySummary{
		CommitCount:      len(commits),
		ContributorCount: len(contributors),
		Category:         scorer.Category(0),
	}
	if len(commits) == 0 {
		return summary
	}

	heuristic := make([]float64, 0, len(scores))
	message := make([]float64, 0, len(scores))
	size := make([]float64, 0, len(scores))
	conventional := 0
	for _, s := range scores {
		heuristic = append(heuristic, float64(s.Overall))
		message = append(message, float64(s.MessageQuality.Total))
		size = append(size, float64(s.SizeScore.Total))
		if s.MessageQuality.IsConventional {
			conventional++
		}
	}
	effective := make([]float64, 0, len(enhanced))
	for _, e := range enhanced {
		effective = append(effective, float64(e.Overall))
	}

	merges := 0
	for _, c := range commits {
		summary.Additions += max(0, c.Stats.Additions)
		summary.Deletions += max(0, c.Stats.Deletions)
		if c.IsMerge() {
			merges++
		}
	}

	n := float64(len(commits))
	summary.HeuristicScore = algo.RoundScore(algo.Mean(heuristic))
	summary.Score = algo.RoundScore(algo.Mean(effective))
	summary.Category = scorer.Category(summary.Score)
	summary.ConventionalRatio = float64(conventional) / n
	summary.AvgMessageQuality = algo.Round1(algo.Mean(message))
	summary.AvgSizeScore = algo.Round1(algo.Mean(size))
	summary.MergeRatio = float64(merges) / n
	return summary
}

// ScoreSingleCommit scores one commit on its own, with its anti-patterns and areas.
func ScoreSingleCommit(policy schema.ScoringPolicy, c schema.Commit) schema.CommitReport {
	scorer := algo.NewScorer(policy)
	score := scorer.Commit(c)
	report := agg.DetectAntiPatternsWith(policy, []schema.Commit{c})
	return schema.CommitReport{
		Commit:        c,
		Score:         score,
		Category:      scorer.Category(score.Overall),
		Areas:         agg.InferAreas(c),
		AntiPatterns:  report.Records,
		PolicyVersion: policy.Version,
	}
}
