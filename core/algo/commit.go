// Package algo holds the pure scoring functions for single commits.
package algo

import "github.com/huangsam/gitgrade/schema"

// Scorer applies one ScoringPolicy to commits. The zero value is not usable;
// construct it with NewScorer.
type Scorer struct {
	policy schema.ScoringPolicy
}

// NewScorer binds a scorer to a policy.
func NewScorer(policy schema.ScoringPolicy) *Scorer {
	return &Scorer{policy: policy.Clone()}
}

// defaultScorer backs the package-level helpers.
var defaultScorer = NewScorer(schema.DefaultScoringPolicy())

// Policy returns a copy of the bound policy.
func (s *Scorer) Policy() schema.ScoringPolicy {
	return s.policy.Clone()
}

// Message scores a commit message.
func (s *Scorer) Message(message string) schema.MessageQualityScore {
	return scoreMessage(&s.policy, message)
}

// Size scores a commit's diff magnitude.
func (s *Scorer) Size(stats schema.CommitStats) schema.SizeScore {
	return scoreSize(&s.policy, stats)
}

// Commit scores one commit.
func (s *Scorer) Commit(c schema.Commit) schema.CommitScore {
	mq := s.Message(c.Message)
	sz := s.Size(c.Stats)
	return schema.CommitScore{
		SHA:            c.SHA,
		MessageQuality: mq,
		SizeScore:      sz,
		Overall:        WeightedPct([]int{mq.Total, sz.Total}, []int{s.policy.MessageWeight, s.policy.SizeWeight}),
	}
}

// Commits scores every commit, preserving input order.
func (s *Scorer) Commits(commits []schema.Commit) []schema.CommitScore {
	out := make([]schema.CommitScore, 0, len(commits))
	for _, c := range commits {
		out = append(out, s.Commit(c))
	}
	return out
}

// Enhanced blends a heuristic commit score with an optional semantic analysis.
// A nil analysis yields the heuristic fallback with zeroed AI components.
func (s *Scorer) Enhanced(score schema.CommitScore, analysis *schema.SemanticAnalysis) schema.EnhancedCommitScore {
	out := schema.EnhancedCommitScore{
		SHA:       score.SHA,
		Heuristic: score.Overall,
		Size:      score.SizeScore.Total,
		Overall:   score.Overall,
	}
	if analysis == nil {
		return out
	}

	p := s.policy
	out.Clarity = ClampInt(analysis.Clarity, 0, 100)
	out.Completeness = ClampInt(analysis.Completeness, 0, 100)
	out.Technical = ClampInt(analysis.TechnicalQuality, 0, 100)
	out.Intent = analysis.Intent
	out.Summary = analysis.Summary
	out.AIApplied = true
	out.Overall = WeightedPct(
		[]int{out.Heuristic, out.Clarity, out.Completeness, out.Size, out.Technical},
		[]int{p.EnhancedHeuristicWeight, p.EnhancedClarityWeight, p.EnhancedCompletenessWeight, p.EnhancedSizeWeight, p.EnhancedTechnicalWeight},
	)
	return out
}

// Category classifies an average score.
func (s *Scorer) Category(score int) schema.Category {
	return s.policy.CategoryFor(score)
}

// ScoreMessage scores a commit message with the default policy.
func ScoreMessage(message string) schema.MessageQualityScore {
	return defaultScorer.Message(message)
}

// ScoreSize scores diff magnitude with the default policy.
func ScoreSize(stats schema.CommitStats) schema.SizeScore {
	return defaultScorer.Size(stats)
}

// ScoreCommit scores one commit with the default policy.
func ScoreCommit(c schema.Commit) schema.CommitScore {
	return defaultScorer.Commit(c)
}

// ScoreCommits scores commits with the default policy, preserving order.
func ScoreCommits(commits []schema.Commit) []schema.CommitScore {
	return defaultScorer.Commits(commits)
}

// EnhanceScore blends a heuristic score with an analysis using the default policy.
func EnhanceScore(score schema.CommitScore, analysis *schema.SemanticAnalysis) schema.EnhancedCommitScore {
	return defaultScorer.Enhanced(score, analysis)
}
