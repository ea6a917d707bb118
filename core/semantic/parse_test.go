package semantic

import (
	"testing"

	"github.com/huangsam/gitgrade/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseBatch = []schema.SemanticItem{
	{SHA: "abcdef1234567890", Message: "feat: a"},
	{SHA: "1234567abcdef000", Message: "fix: b"},
}

func TestParseBatchResponseArray(t *testing.T) {
	content := `[
		{"sha": "abcdef1234567890", "intent": "Feature", "clarity": 80, "completeness": 70.4, "technicalQuality": 60, "summary": " adds a "},
		{"sha": "1234567", "intent": "bugfix", "clarity": 50, "completeness": 50, "technical_quality": 40.5, "summary": "fixes b"}
	]`
	got := ParseBatchResponse(content, parseBatch)
	require.Len(t, got, 2)

	a := got["abcdef1234567890"]
	require.True(t, a.OK())
	assert.Equal(t, schema.FeatureIntent, a.Analysis.Intent)
	assert.Equal(t, 80, a.Analysis.Clarity)
	assert.Equal(t, 70, a.Analysis.Completeness)
	assert.Equal(t, "adds a", a.Analysis.Summary)

	b := got["1234567abcdef000"]
	require.True(t, b.OK(), "abbreviated sha and snake_case field are accepted")
	assert.Equal(t, 41, b.Analysis.TechnicalQuality)
}

func TestParseBatchResponseWrappedAndFenced(t *testing.T) {
	content := "```json\n{\"results\": [{\"sha\": \"abcdef1234567890\", \"intent\": \"refactor\", \"clarity\": 90, \"completeness\": 90, \"technicalQuality\": 90, \"summary\": \"x\"}]}\n```"
	got := ParseBatchResponse(content, parseBatch)
	assert.True(t, got["abcdef1234567890"].OK())
	assert.ErrorIs(t, got["1234567abcdef000"].Err, ErrMissingEntry)
}

func TestParseBatchResponseFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", ErrMalformedResponse},
		{"not json", "I cannot help with that", ErrMalformedResponse},
		{"object without results", `{"foo": []}`, ErrMalformedResponse},
		{"results not array", `{"results": "nope"}`, ErrMalformedResponse},
		{"truncated", `[{"sha": "abcdef1234567890", "intent": "feature"`, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBatchResponse(tt.content, parseBatch)
			require.Len(t, got, len(parseBatch))
			for _, o := range got {
				assert.False(t, o.OK())
				assert.ErrorIs(t, o.Err, tt.wantErr)
			}
		})
	}
}

func TestParseBatchResponseInvalidEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"unknown intent", `{"sha": "abcdef1234567890", "intent": "party", "clarity": 1, "completeness": 1, "technicalQuality": 1}`},
		{"missing clarity", `{"sha": "abcdef1234567890", "intent": "feature", "completeness": 1, "technicalQuality": 1}`},
		{"out of range", `{"sha": "abcdef1234567890", "intent": "feature", "clarity": 101, "completeness": 1, "technicalQuality": 1}`},
		{"negative", `{"sha": "abcdef1234567890", "intent": "feature", "clarity": 1, "completeness": -1, "technicalQuality": 1}`},
		{"string score", `{"sha": "abcdef1234567890", "intent": "feature", "clarity": "high", "completeness": 1, "technicalQuality": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBatchResponse("["+tt.entry+"]", parseBatch)
			assert.False(t, got["abcdef1234567890"].OK())
			assert.Error(t, got["abcdef1234567890"].Err)
		})
	}
}

func TestParseBatchResponseIgnoresUnknownAndShortShas(t *testing.T) {
	content := `[
		{"sha": "ffffffffffff", "intent": "feature", "clarity": 1, "completeness": 1, "technicalQuality": 1},
		{"sha": "abc", "intent": "feature", "clarity": 1, "completeness": 1, "technicalQuality": 1}
	]`
	got := ParseBatchResponse(content, parseBatch)
	assert.Len(t, got, 2)
	for _, o := range got {
		assert.ErrorIs(t, o.Err, ErrMissingEntry)
	}
}

func TestParseBatchResponseFirstValidWins(t *testing.T) {
	content := `[
		{"sha": "abcdef1234567890", "intent": "feature", "clarity": 10, "completeness": 10, "technicalQuality": 10},
		{"sha": "abcdef1234567890", "intent": "bugfix", "clarity": 99, "completeness": 99, "technicalQuality": 99}
	]`
	got := ParseBatchResponse(content, parseBatch)
	require.True(t, got["abcdef1234567890"].OK())
	assert.Equal(t, 10, got["abcdef1234567890"].Analysis.Clarity)
}
