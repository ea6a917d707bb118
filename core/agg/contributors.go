// Package agg has aggregation logic over a scored commit set.
package agg

import (
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/gitgrade/core/algo"
	"github.com/huangsam/gitgrade/schema"
)

// contributorAcc accumulates per-author facts before they are finalized.
type contributorAcc struct {
	email        string
	names        map[string]int
	usernames    map[string]struct{}
	overall      []float64
	message      []float64
	size         []float64
	conventional int
	merges       int
	additions    int
	deletions    int
	first, last  time.Time
	hours        map[int]struct{}
	days         map[int]struct{}
}

// ContributorKey returns the grouping key of an author: the lowercased, trimmed email.
func ContributorKey(a schema.Author) string {
	return strings.ToLower(strings.TrimSpace(a.Email))
}

// IndexScores maps sha to commit score.
func IndexScores(scores []schema.CommitScore) map[string]schema.CommitScore {
	idx := make(map[string]schema.CommitScore, len(scores))
	for _, s := range scores {
		idx[s.SHA] = s
	}
	return idx
}

// AggregateContributors groups commits by lowercased author email and rolls up
// their scores. Commits missing from scores are scored with the default policy.
// The result is ordered by commit count descending, then email.
func AggregateContributors(commits []schema.Commit, scores map[string]schema.CommitScore) []schema.ContributorScore {
	return AggregateContributorsWith(schema.DefaultScoringPolicy(), commits, scores)
}

// AggregateContributorsWith is AggregateContributors under an explicit policy.
func AggregateContributorsWith(policy schema.ScoringPolicy, commits []schema.Commit, scores map[string]schema.CommitScore) []schema.ContributorScore {
	scorer := algo.NewScorer(policy)
	groups := make(map[string]*contributorAcc)

	for _, c := range commits {
		key := ContributorKey(c.Author)
		acc, ok := groups[key]
		if !ok {
			acc = &contributorAcc{
				email:     key,
				names:     make(map[string]int),
				usernames: make(map[string]struct{}),
				hours:     make(map[int]struct{}),
				days:      make(map[int]struct{}),
			}
			groups[key] = acc
		}

		score, ok := scores[c.SHA]
		if !ok {
			score = scorer.Commit(c)
		}
		acc.add(c, score)
	}

	out := make([]schema.ContributorScore, 0, len(groups))
	for _, acc := range groups {
		out = append(out, acc.finalize(scorer))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommitCount != out[j].CommitCount {
			return out[i].CommitCount > out[j].CommitCount
		}
		return out[i].Email < out[j].Email
	})
	return out
}

func (acc *contributorAcc) add(c schema.Commit, score schema.CommitScore) {
	if name := strings.TrimSpace(c.Author.Name); name != "" {
		acc.names[name]++
	}
	if c.Author.Username != "" {
		acc.usernames[c.Author.Username] = struct{}{}
	}
	acc.overall = append(acc.overall, float64(score.Overall))
	acc.message = append(acc.message, float64(score.MessageQuality.Total))
	acc.size = append(acc.size, float64(score.SizeScore.Total))
	if score.MessageQuality.IsConventional {
		acc.conventional++
	}
	if c.IsMerge() {
		acc.merges++
	}
	acc.additions += max(0, c.Stats.Additions)
	acc.deletions += max(0, c.Stats.Deletions)

	// Missing timestamps carry no working-pattern information.
	if c.Timestamp.IsZero() {
		return
	}
	if acc.first.IsZero() || c.Timestamp.Before(acc.first) {
		acc.first = c.Timestamp
	}
	if acc.last.IsZero() || c.Timestamp.After(acc.last) {
		acc.last = c.Timestamp
	}
	acc.hours[c.Timestamp.Hour()] = struct{}{}
	acc.days[int(c.Timestamp.Weekday())] = struct{}{}
}

func (acc *contributorAcc) finalize(scorer *algo.Scorer) schema.ContributorScore {
	count := len(acc.overall)
	avg := algo.RoundScore(algo.Mean(acc.overall))

	spanDays := acc.last.Sub(acc.first).Hours() / 24
	return schema.ContributorScore{
		Email:             acc.email,
		Name:              mostFrequent(acc.names),
		Username:          firstSorted(acc.usernames),
		CommitCount:       count,
		Additions:         acc.additions,
		Deletions:         acc.deletions,
		AvgCommitSize:     float64(acc.additions+acc.deletions) / float64(count),
		FirstCommit:       acc.first,
		LastCommit:        acc.last,
		AverageScore:      avg,
		ConsistencyScore:  algo.RoundScore(100 - algo.PopulationStdDev(acc.overall)),
		Category:          scorer.Category(avg),
		AvgMessageQuality: algo.Round1(algo.Mean(acc.message)),
		AvgSizeScore:      algo.Round1(algo.Mean(acc.size)),
		ConventionalRatio: float64(acc.conventional) / float64(count),
		MergeCount:        acc.merges,
		ActiveHours:       sortedKeys(acc.hours),
		ActiveDays:        sortedKeys(acc.days),
		Velocity:          float64(count) / max(1, spanDays),
	}
}

// ApplyEnhancedAverages returns a copy of contributors with EnhancedAverage set
// from the enhanced overall scores of their commits.
func ApplyEnhancedAverages(contributors []schema.ContributorScore, commits []schema.Commit, enhanced map[string]int) []schema.ContributorScore {
	perAuthor := make(map[string][]float64)
	for _, c := range commits {
		if v, ok := enhanced[c.SHA]; ok {
			key := ContributorKey(c.Author)
			perAuthor[key] = append(perAuthor[key], float64(v))
		}
	}
	out := slices.Clone(contributors)
	for i := range out {
		if vals := perAuthor[out[i].Email]; len(vals) > 0 {
			out[i].EnhancedAverage = algo.RoundScore(algo.Mean(vals))
		}
	}
	return out
}

// mostFrequent returns the key with the highest count; ties pick the smallest key.
func mostFrequent(counts map[string]int) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

func firstSorted(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	return slices.Sorted(maps.Keys(set))[0]
}

func sortedKeys(set map[int]struct{}) []int {
	return slices.Sorted(maps.Keys(set))
}
