package algo

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/huangsam/gitgrade/schema"
)

// conventionalRe matches `type(scope)!:` at the start of a subject.
var conventionalRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)(?:\(([^()]*)\))?!?:`)

// Subject returns the first line of a commit message with surrounding whitespace removed.
func Subject(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}

// Body returns everything after the subject line, trimmed.
func Body(message string) string {
	_, rest, found := strings.Cut(message, "\n")
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}

// ConventionalPrefix parses a conventional-commit prefix from a subject.
// It returns the raw type, the scope and the remaining description.
func ConventionalPrefix(subject string) (typ, scope, rest string, ok bool) {
	m := conventionalRe.FindStringSubmatchIndex(subject)
	if m == nil {
		return "", "", subject, false
	}
	typ = subject[m[2]:m[3]]
	if m[4] >= 0 {
		scope = strings.TrimSpace(subject[m[4]:m[5]])
	}
	return typ, scope, strings.TrimSpace(subject[m[1]:]), true
}

// scoreMessage scores a commit message against the policy.
func scoreMessage(p *schema.ScoringPolicy, message string) schema.MessageQualityScore {
	subject := Subject(message)
	var out schema.MessageQualityScore

	desc := subject
	if typ, scope, rest, ok := ConventionalPrefix(subject); ok {
		desc = rest
		out.CommitType = strings.ToLower(typ)
		out.Scope = strings.ToLower(scope)
		if p.IsKnownType(out.CommitType) {
			out.Convention = p.ConventionKnown
			out.IsConventional = true
		} else {
			out.Convention = p.ConventionUnknown
		}
	}

	out.Length = schema.LookupTier(p.LengthTiers, utf8.RuneCountInString(subject))
	out.Imperative = scoreImperative(p, desc)
	out.Total = ClampInt(out.Convention+out.Length+out.Imperative, 0, 100)
	return out
}

// scoreImperative grades the mood of the first word of a description.
func scoreImperative(p *schema.ScoringPolicy, desc string) int {
	fields := strings.Fields(desc)
	if len(fields) == 0 {
		return p.ImperativeFallback
	}
	word := strings.ToLower(strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
	if word == "" {
		return p.ImperativeFallback
	}

	switch {
	case p.IsImperativeVerb(word):
		return p.ImperativeExact
	case strings.HasSuffix(word, "es") && p.IsImperativeVerb(strings.TrimSuffix(word, "es")),
		strings.HasSuffix(word, "s") && p.IsImperativeVerb(strings.TrimSuffix(word, "s")):
		return p.ImperativeThird
	case strings.HasSuffix(word, "ed"), strings.HasSuffix(word, "ing"):
		return p.ImperativeTense
	}

	first, _ := utf8.DecodeRuneInString(desc)
	if unicode.IsUpper(first) && utf8.RuneCountInString(desc) >= p.CapitalizedMinChars {
		return p.ImperativeCapital
	}
	return p.ImperativeFallback
}
