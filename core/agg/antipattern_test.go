package agg

import (
	"testing"

	"github.com/huangsam/gitgrade/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVagueMessage(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"fix", true},
		{"Fix.", true},
		{"Update", true},
		{"...", true},
		{"", true},
		{"  \n", true},
		{"fix login redirect loop", false},
		{"feat: add button", false},
		{"typo\n\nin the readme", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVagueMessage(tt.message), "message %q", tt.message)
	}
}

func TestIsWIPMessage(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"WIP: login", true},
		{"work in progress on parser", true},
		{"add TODO markers", true},
		{"Remove temp hack", true},
		{"DO NOT MERGE", true},
		{"fix: body\n\nFIXME later", true},
		{"add temporary flag", false},
		{"feat: wipe cache on logout", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsWIPMessage(tt.message), "message %q", tt.message)
	}
}

func TestDetectAntiPatterns(t *testing.T) {
	commits := []schema.Commit{
		{SHA: "giant", Message: "feat: import vendored sdk", Stats: schema.CommitStats{Total: 1001, FilesChanged: 40}},
		{SHA: "edge", Message: "feat: large but fine", Stats: schema.CommitStats{Total: 1000, FilesChanged: 20}},
		{SHA: "tiny", Message: "fix", Stats: schema.CommitStats{Additions: 1, Deletions: 1, Total: 2, FilesChanged: 1}},
		{SHA: "small", Message: "fix(api): handle nil body", Stats: schema.CommitStats{Total: 2, FilesChanged: 1}},
		{SHA: "merge", Message: "Merge branch 'dev'", Stats: schema.CommitStats{Total: 20}, ParentSHAs: []string{"p1", "p2"}},
		{SHA: "single", Message: "chore: bump", Stats: schema.CommitStats{Total: 20}, ParentSHAs: []string{"p1"}},
	}

	got := DetectAntiPatterns(commits)
	assert.Equal(t, 1, got.Counts[schema.GiantCommit])
	assert.Equal(t, 1, got.Counts[schema.TinyCommit])
	assert.Equal(t, 0, got.Counts[schema.WIPCommit])
	assert.Equal(t, 1, got.Counts[schema.MergeCommit])

	require.Len(t, got.Records, 3)
	assert.Equal(t, "giant", got.Records[0].SHA)
	assert.Equal(t, "tiny", got.Records[1].SHA)
	assert.Equal(t, schema.TinyCommit, got.Records[1].Type)
	assert.Equal(t, "merge", got.Records[2].SHA)
	assert.NotEmpty(t, got.Records[0].Description)
}

func TestDetectAntiPatternsMultipleRules(t *testing.T) {
	commits := []schema.Commit{{SHA: "x", Message: "wip", Stats: schema.CommitStats{Total: 1}, ParentSHAs: []string{"a", "b"}}}
	got := DetectAntiPatterns(commits)
	require.Len(t, got.Records, 3)
	assert.Equal(t, []schema.AntiPatternType{schema.TinyCommit, schema.WIPCommit, schema.MergeCommit},
		[]schema.AntiPatternType{got.Records[0].Type, got.Records[1].Type, got.Records[2].Type})
	assert.Len(t, got.ByType(schema.WIPCommit), 1)
}

func TestDetectAntiPatternsCompleteList(t *testing.T) {
	var commits []schema.Commit
	for range 50 {
		commits = append(commits, schema.Commit{Message: "tmp", Stats: schema.CommitStats{Total: 1}})
	}
	got := DetectAntiPatterns(commits)
	assert.Equal(t, 50, got.Counts[schema.TinyCommit])
	assert.Equal(t, 50, got.Counts[schema.WIPCommit])
	assert.Len(t, got.Records, 100)
}

func TestDetectAntiPatternsEmpty(t *testing.T) {
	got := DetectAntiPatterns(nil)
	assert.NotNil(t, got.Records)
	assert.Empty(t, got.Records)
	for _, typ := range schema.AllAntiPatternTypes {
		count, ok := got.Counts[typ]
		assert.True(t, ok, "count present for %s", typ)
		assert.Zero(t, count)
	}
}
