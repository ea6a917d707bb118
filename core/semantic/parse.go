package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/huangsam/gitgrade/schema"
)

// Parse failures. Every failure means "no analysis for this commit".
var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrMissingEntry      = errors.New("no entry for commit")
	ErrInvalidEntry      = errors.New("invalid entry")
)

// minShortSHA is the shortest abbreviated sha accepted from a model.
const minShortSHA = 7

// ParseOutcome is the tagged result of parsing one commit's analysis:
// exactly one of Analysis and Err is set.
type ParseOutcome struct {
	Analysis *schema.SemanticAnalysis
	Err      error
}

// OK reports whether the outcome carries an analysis.
func (o ParseOutcome) OK() bool {
	return o.Err == nil && o.Analysis != nil
}

// rawAnalysis mirrors what a model returns before validation.
type rawAnalysis struct {
	SHA                   string   `json:"sha"`
	Intent                string   `json:"intent"`
	Clarity               *float64 `json:"clarity"`
	Completeness          *float64 `json:"completeness"`
	TechnicalQuality      *float64 `json:"technicalQuality"`
	TechnicalQualitySnake *float64 `json:"technical_quality"`
	Summary               string   `json:"summary"`
}

// ParseBatchResponse parses and validates model output for one batch. The
// result has an outcome for every sha in batch. Content may be a JSON array
// of entries or an object wrapping it under "results", "analyses" or
// "commits", optionally inside a Markdown code fence.
func ParseBatchResponse(content string, batch []schema.SemanticItem) map[string]ParseOutcome {
	out := make(map[string]ParseOutcome, len(batch))

	entries, err := decodeEntries(content)
	if err != nil {
		for _, item := range batch {
			out[item.SHA] = ParseOutcome{Err: err}
		}
		return out
	}

	for _, item := range batch {
		out[item.SHA] = ParseOutcome{Err: ErrMissingEntry}
	}
	for _, e := range entries {
		sha, ok := matchSHA(e.SHA, batch)
		if !ok {
			continue
		}
		if out[sha].OK() {
			continue // first valid entry wins
		}
		analysis, err := validate(e)
		if err != nil {
			out[sha] = ParseOutcome{Err: err}
			continue
		}
		out[sha] = ParseOutcome{Analysis: analysis}
	}
	return out
}

func decodeEntries(content string) ([]rawAnalysis, error) {
	body := stripFence(strings.TrimSpace(content))
	if body == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	var entries []rawAnalysis
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return entries, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, key := range []string{"results", "analyses", "commits"} {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, key, err)
		}
		return entries, nil
	}
	return nil, fmt.Errorf("%w: no results array", ErrMalformedResponse)
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// matchSHA resolves a returned sha against the batch. Abbreviated shas of at
// least seven characters match when exactly one batch item has that prefix.
func matchSHA(sha string, batch []schema.SemanticItem) (string, bool) {
	sha = strings.ToLower(strings.TrimSpace(sha))
	if sha == "" {
		return "", false
	}
	var match string
	for _, item := range batch {
		full := strings.ToLower(item.SHA)
		if full == sha {
			return item.SHA, true
		}
		if len(sha) >= minShortSHA && strings.HasPrefix(full, sha) {
			if match != "" {
				return "", false
			}
			match = item.SHA
		}
	}
	return match, match != ""
}

func validate(e rawAnalysis) (*schema.SemanticAnalysis, error) {
	intent := schema.Intent(strings.ToLower(strings.TrimSpace(e.Intent)))
	if _, ok := schema.ValidIntents[intent]; !ok {
		return nil, fmt.Errorf("%w: unknown intent %q", ErrInvalidEntry, e.Intent)
	}
	technical := e.TechnicalQuality
	if technical == nil {
		technical = e.TechnicalQualitySnake
	}

	clarity, err := scoreField("clarity", e.Clarity)
	if err != nil {
		return nil, err
	}
	completeness, err := scoreField("completeness", e.Completeness)
	if err != nil {
		return nil, err
	}
	tq, err := scoreField("technicalQuality", technical)
	if err != nil {
		return nil, err
	}
	return &schema.SemanticAnalysis{
		Intent:           intent,
		Clarity:          clarity,
		Completeness:     completeness,
		TechnicalQuality: tq,
		Summary:          strings.TrimSpace(e.Summary),
	}, nil
}

func scoreField(name string, v *float64) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidEntry, name)
	}
	if math.IsNaN(*v) || *v < 0 || *v > 100 {
		return 0, fmt.Errorf("%w: %s out of range: %v", ErrInvalidEntry, name, *v)
	}
	return int(math.Round(*v)), nil
}
