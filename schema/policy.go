package schema

import "slices"

// Unbounded marks a tier without an upper limit.
const Unbounded = -1

// Tier awards Points to values in [Min, Max]. Max may be Unbounded.
type Tier struct {
	Min    int `json:"min"`
	Max    int `json:"max"`
	Points int `json:"points"`
}

// Contains reports whether n falls inside the tier.
func (t Tier) Contains(n int) bool {
	return n >= t.Min && (t.Max == Unbounded || n <= t.Max)
}

// LookupTier returns the points of the first tier containing n, or 0.
func LookupTier(tiers []Tier, n int) int {
	for _, t := range tiers {
		if t.Contains(n) {
			return t.Points
		}
	}
	return 0
}

// ScoringPolicy is the versioned table of every threshold and weight used by the scorers.
// Weights are integer percentages so weighted sums round without float drift.
type ScoringPolicy struct {
	Version string `json:"version"`

	ConventionalTypes   []string `json:"conventional_types"`
	ConventionKnown     int      `json:"convention_known"`
	ConventionUnknown   int      `json:"convention_unknown"`
	LengthTiers         []Tier   `json:"length_tiers"`
	ImperativeVerbs     []string `json:"imperative_verbs"`
	ImperativeExact     int      `json:"imperative_exact"`
	ImperativeThird     int      `json:"imperative_third_person"`
	ImperativeTense     int      `json:"imperative_tense"`
	ImperativeCapital   int      `json:"imperative_capitalized"`
	ImperativeFallback  int      `json:"imperative_fallback"`
	CapitalizedMinChars int      `json:"capitalized_min_chars"`

	LineTiers      []Tier `json:"line_tiers"`
	FileTiers      []Tier `json:"file_tiers"`
	GiantThreshold int    `json:"giant_threshold"` // giant when lines > threshold
	TinyThreshold  int    `json:"tiny_threshold"`  // tiny when lines < threshold

	MessageWeight int `json:"message_weight"`
	SizeWeight    int `json:"size_weight"`

	EnhancedHeuristicWeight    int `json:"enhanced_heuristic_weight"`
	EnhancedClarityWeight      int `json:"enhanced_clarity_weight"`
	EnhancedCompletenessWeight int `json:"enhanced_completeness_weight"`
	EnhancedSizeWeight         int `json:"enhanced_size_weight"`
	EnhancedTechnicalWeight    int `json:"enhanced_technical_weight"`

	ExcellentMin int `json:"excellent_min"`
	GoodMin      int `json:"good_min"`
}

// DefaultScoringPolicy returns a fresh copy of the v1 policy.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		Version: "v1",

		ConventionalTypes: []string{"feat", "fix", "docs", "style", "refactor", "perf", "test", "build", "ci", "chore", "revert"},
		ConventionKnown:   40,
		ConventionUnknown: 20,
		LengthTiers: []Tier{
			{Min: 0, Max: 4, Points: 5},
			{Min: 5, Max: 9, Points: 15},
			{Min: 10, Max: 72, Points: 30},
			{Min: 73, Max: 100, Points: 20},
			{Min: 101, Max: Unbounded, Points: 10},
		},
		ImperativeVerbs: []string{
			"add", "adjust", "allow", "bump", "change", "clean", "configure", "convert",
			"correct", "create", "delete", "deprecate", "disable", "document", "drop", "enable",
			"ensure", "extract", "fix", "handle", "implement", "improve", "initialize", "introduce",
			"make", "merge", "move", "optimize", "prevent", "reduce", "refactor", "release",
			"remove", "rename", "replace", "resolve", "revert", "set", "simplify", "support",
			"test", "update", "upgrade", "use",
		},
		ImperativeExact:     30,
		ImperativeThird:     15,
		ImperativeTense:     10,
		ImperativeCapital:   15,
		ImperativeFallback:  5,
		CapitalizedMinChars: 10,

		LineTiers: []Tier{
			{Min: 0, Max: 0, Points: 25},
			{Min: 1, Max: 300, Points: 50},
			{Min: 301, Max: 600, Points: 35},
			{Min: 601, Max: 1000, Points: 20},
			{Min: 1001, Max: Unbounded, Points: 5},
		},
		FileTiers: []Tier{
			{Min: 0, Max: 0, Points: 25},
			{Min: 1, Max: 10, Points: 50},
			{Min: 11, Max: 20, Points: 35},
			{Min: 21, Max: 50, Points: 20},
			{Min: 51, Max: Unbounded, Points: 5},
		},
		GiantThreshold: 1000,
		TinyThreshold:  5,

		MessageWeight: 60,
		SizeWeight:    40,

		EnhancedHeuristicWeight:    30,
		EnhancedClarityWeight:      25,
		EnhancedCompletenessWeight: 20,
		EnhancedSizeWeight:         20,
		EnhancedTechnicalWeight:    5,

		ExcellentMin: 80,
		GoodMin:      60,
	}
}

// IsKnownType reports whether t is one of the recognized conventional types.
func (p ScoringPolicy) IsKnownType(t string) bool {
	return slices.Contains(p.ConventionalTypes, t)
}

// IsImperativeVerb reports whether w is in the imperative verb list.
func (p ScoringPolicy) IsImperativeVerb(w string) bool {
	return slices.Contains(p.ImperativeVerbs, w)
}

// CategoryFor classifies an average score.
func (p ScoringPolicy) CategoryFor(score int) Category {
	switch {
	case score >= p.ExcellentMin:
		return Excellent
	case score >= p.GoodMin:
		return Good
	default:
		return NeedsImprovement
	}
}

// Clone returns a deep copy of the policy.
func (p ScoringPolicy) Clone() ScoringPolicy {
	out := p
	out.ConventionalTypes = slices.Clone(p.ConventionalTypes)
	out.LengthTiers = slices.Clone(p.LengthTiers)
	out.ImperativeVerbs = slices.Clone(p.ImperativeVerbs)
	out.LineTiers = slices.Clone(p.LineTiers)
	out.FileTiers = slices.Clone(p.FileTiers)
	return out
}
