package agg

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/huangsam/gitgrade/core/algo"
	"github.com/huangsam/gitgrade/schema"
)

// vagueMessages is the closed set of subjects that say nothing about a change.
var vagueMessages = map[string]struct{}{
	"fix": {}, "fixes": {}, "fixed": {}, "fixup": {},
	"update": {}, "updates": {}, "updated": {},
	"change": {}, "changes": {}, "changed": {},
	"wip": {}, "tmp": {}, "temp": {}, "test": {}, "tests": {}, "testing": {},
	"stuff": {}, "misc": {}, "minor": {}, "tweak": {}, "tweaks": {}, "cleanup": {},
	"oops": {}, "typo": {}, "asdf": {}, "commit": {}, "save": {}, "more": {},
}

// wipRe matches work-in-progress markers as whole words anywhere in a message.
var wipRe = regexp.MustCompile(`(?i)\b(wip|work in progress|todo|fixme|temp|tmp|hack|xxx|do not merge|don'?t merge)\b`)

// IsVagueMessage reports whether a message subject is a filler word or punctuation only.
func IsVagueMessage(message string) bool {
	subject := strings.ToLower(algo.Subject(message))
	if strings.IndexFunc(subject, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) < 0 {
		return true // empty or punctuation-only
	}
	subject = strings.TrimRight(subject, ".!?")
	_, ok := vagueMessages[subject]
	return ok
}

// IsWIPMessage reports whether a message carries a work-in-progress marker.
func IsWIPMessage(message string) bool {
	return wipRe.MatchString(message)
}

// DetectAntiPatterns scans every commit independently and returns the complete
// list of anti-pattern records plus per-type counts. A commit may trigger more
// than one rule. Records follow commit order, then rule order.
func DetectAntiPatterns(commits []schema.Commit) schema.AntiPatternReport {
	return DetectAntiPatternsWith(schema.DefaultScoringPolicy(), commits)
}

// DetectAntiPatternsWith is DetectAntiPatterns under an explicit policy.
func DetectAntiPatternsWith(policy schema.ScoringPolicy, commits []schema.Commit) schema.AntiPatternReport {
	report := schema.AntiPatternReport{
		Records: []schema.AntiPatternRecord{},
		Counts:  make(map[schema.AntiPatternType]int, len(schema.AllAntiPatternTypes)),
	}
	for _, t := range schema.AllAntiPatternTypes {
		report.Counts[t] = 0
	}

	add := func(t schema.AntiPatternType, c schema.Commit, desc string) {
		report.Records = append(report.Records, schema.AntiPatternRecord{
			Type:        t,
			SHA:         c.SHA,
			Message:     algo.Subject(c.Message),
			Description: desc,
		})
		report.Counts[t]++
	}

	for _, c := range commits {
		lines := c.Stats.Lines()
		if lines > policy.GiantThreshold {
			add(schema.GiantCommit, c, fmt.Sprintf("Changes %d lines across %d files; consider splitting it", lines, c.Stats.FilesChanged))
		}
		if lines < policy.TinyThreshold && IsVagueMessage(c.Message) {
			add(schema.TinyCommit, c, fmt.Sprintf("Changes %d lines with a vague message; consider squashing it", lines))
		}
		if IsWIPMessage(c.Message) {
			add(schema.WIPCommit, c, "Message marks unfinished work")
		}
		if c.IsMerge() {
			add(schema.MergeCommit, c, fmt.Sprintf("Merge commit with %d parents", len(c.ParentSHAs)))
		}
	}
	return report
}
