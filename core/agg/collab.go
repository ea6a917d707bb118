package agg

import (
	"maps"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/huangsam/gitgrade/core/algo"
	"github.com/huangsam/gitgrade/schema"
)

const (
	// GeneralArea is the fallback area when nothing more specific is known.
	GeneralArea = "general"

	// RootArea holds files at the repository root.
	RootArea = "root"

	siloShare      = 0.8
	siloMinCommits = 3
	busFactorShare = 0.5
)

// areaKeywords is the closed vocabulary used when a commit has neither file
// paths nor a conventional scope. Order decides ties.
var areaKeywords = []struct {
	area  string
	words []string
}{
	{"api", []string{"api", "endpoint", "endpoints", "rest", "grpc", "graphql", "route", "routes", "handler"}},
	{"auth", []string{"auth", "login", "logout", "oauth", "token", "session", "password", "permission", "permissions"}},
	{"ui", []string{"ui", "css", "style", "layout", "button", "component", "page", "view", "frontend"}},
	{"database", []string{"db", "database", "sql", "migration", "migrations", "schema", "query", "queries"}},
	{"tests", []string{"test", "tests", "testing", "spec", "coverage", "mock", "mocks"}},
	{"docs", []string{"doc", "docs", "readme", "documentation", "changelog", "comment", "comments"}},
	{"build", []string{"build", "ci", "pipeline", "docker", "dockerfile", "makefile", "release", "workflow"}},
	{"deps", []string{"dep", "deps", "dependency", "dependencies", "bump", "upgrade", "vendor"}},
	{"config", []string{"config", "configuration", "settings", "env", "options"}},
	{"perf", []string{"perf", "performance", "cache", "caching", "optimize", "speed"}},
}

// InferAreas returns the distinct areas a commit touches, sorted. File paths
// give one area per top-level directory. Without paths a conventional scope,
// then the keyword vocabulary, then GeneralArea is used.
func InferAreas(c schema.Commit) []string {
	if len(c.Files) > 0 {
		set := make(map[string]struct{}, len(c.Files))
		for _, f := range c.Files {
			set[fileArea(f)] = struct{}{}
		}
		return slices.Sorted(maps.Keys(set))
	}
	return []string{messageArea(c.Message)}
}

// InferArea returns the first area of InferAreas.
func InferArea(c schema.Commit) string {
	return InferAreas(c)[0]
}

func fileArea(p string) string {
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "" || p == "." {
		return RootArea
	}
	top, _, found := strings.Cut(p, "/")
	if !found {
		return RootArea
	}
	return top
}

func messageArea(message string) string {
	subject := algo.Subject(message)
	if _, scope, _, ok := algo.ConventionalPrefix(subject); ok {
		scope = strings.ToLower(strings.TrimSpace(scope))
		if first, _, _ := strings.Cut(scope, "/"); first != "" {
			return first
		}
	}
	words := strings.FieldsFunc(strings.ToLower(subject), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, kw := range areaKeywords {
		for _, w := range words {
			if slices.Contains(kw.words, w) {
				return kw.area
			}
		}
	}
	return GeneralArea
}

// AnalyzeCollaboration derives area ownership, knowledge silos and the bus
// factor. contributors supplies commit volumes and display names.
func AnalyzeCollaboration(commits []schema.Commit, contributors []schema.ContributorScore) schema.CollaborationMetrics {
	out := schema.CollaborationMetrics{
		Areas:           []schema.AreaOwnership{},
		KnowledgeSilos:  []schema.KnowledgeSilo{},
		TopContributors: []string{},
	}

	areas := make(map[string]map[string]int)
	for _, c := range commits {
		if len(c.Files) > 0 {
			out.UsesFilePaths = true
		}
		key := ContributorKey(c.Author)
		for _, a := range InferAreas(c) {
			if areas[a] == nil {
				areas[a] = make(map[string]int)
			}
			areas[a][key]++
		}
	}

	owned := make(map[string][]string)
	for area, counts := range areas {
		own := areaOwnership(area, counts)
		out.Areas = append(out.Areas, own)
		if len(counts) > 1 {
			out.SharedAreas++
		}
		if own.Commits >= siloMinCommits && float64(counts[own.PrimaryOwner]) >= siloShare*float64(own.Commits) {
			owned[own.PrimaryOwner] = append(owned[own.PrimaryOwner], area)
		}
	}
	sort.Slice(out.Areas, func(i, j int) bool {
		if out.Areas[i].Commits != out.Areas[j].Commits {
			return out.Areas[i].Commits > out.Areas[j].Commits
		}
		return out.Areas[i].Area < out.Areas[j].Area
	})

	names := make(map[string]string, len(contributors))
	for _, c := range contributors {
		names[c.Email] = c.Name
	}
	for email, list := range owned {
		slices.Sort(list)
		out.KnowledgeSilos = append(out.KnowledgeSilos, schema.KnowledgeSilo{
			Contributor: email,
			Name:        names[email],
			Areas:       list,
			Risk:        siloRisk(len(list)),
		})
	}
	sort.Slice(out.KnowledgeSilos, func(i, j int) bool {
		a, b := out.KnowledgeSilos[i], out.KnowledgeSilos[j]
		if len(a.Areas) != len(b.Areas) {
			return len(a.Areas) > len(b.Areas)
		}
		return a.Contributor < b.Contributor
	})

	out.BusFactor, out.TopContributors = BusFactor(contributors)
	volumes := make([]float64, 0, len(contributors))
	for _, c := range contributors {
		volumes = append(volumes, float64(c.CommitCount))
	}
	out.CommitGini = algo.Gini(volumes)
	return out
}

// BusFactor returns the minimum number of contributors, taken by commit
// volume descending, whose cumulative share reaches half of all commits,
// together with their emails. It is 0 when there are no commits.
func BusFactor(contributors []schema.ContributorScore) (int, []string) {
	ranked := slices.Clone(contributors)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CommitCount != ranked[j].CommitCount {
			return ranked[i].CommitCount > ranked[j].CommitCount
		}
		return ranked[i].Email < ranked[j].Email
	})

	total := 0
	for _, c := range ranked {
		total += max(0, c.CommitCount)
	}
	top := []string{}
	if total == 0 {
		return 0, top
	}

	cumulative := 0
	for _, c := range ranked {
		cumulative += max(0, c.CommitCount)
		top = append(top, c.Email)
		if float64(cumulative) >= busFactorShare*float64(total) {
			break
		}
	}
	return len(top), top
}

func areaOwnership(area string, counts map[string]int) schema.AreaOwnership {
	own := schema.AreaOwnership{Area: area, Contributors: make(map[string]int, len(counts))}
	bestN := 0
	for email, n := range counts {
		own.Contributors[email] = n
		own.Commits += n
		if n > bestN || (n == bestN && email < own.PrimaryOwner) {
			own.PrimaryOwner, bestN = email, n
		}
	}
	if own.Commits > 0 {
		own.OwnershipPct = algo.Round1(100 * float64(bestN) / float64(own.Commits))
	}
	return own
}

func siloRisk(areas int) schema.RiskLevel {
	switch {
	case areas >= 3:
		return schema.HighRisk
	case areas >= 2:
		return schema.MediumRisk
	default:
		return schema.LowRisk
	}
}
