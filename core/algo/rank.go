package algo

import (
	"sort"

	"github.com/huangsam/gitgrade/schema"
)

// RankContributors sorts contributors by average score in descending order
// and returns the top 'limit' entries. Ties fall back to commit count, then
// email, so the order is stable across runs. A non-positive limit keeps all.
func RankContributors(contributors []schema.ContributorScore, limit int) []schema.ContributorScore {
	ranked := make([]schema.ContributorScore, len(contributors))
	copy(ranked, contributors)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		if a.CommitCount != b.CommitCount {
			return a.CommitCount > b.CommitCount
		}
		return a.Email < b.Email
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// RankCommits returns commit scores ordered worst first, which is how
// reports surface the commits most worth reviewing.
func RankCommits(scores []schema.CommitScore, limit int) []schema.CommitScore {
	ranked := make([]schema.CommitScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Overall < ranked[j].Overall
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
