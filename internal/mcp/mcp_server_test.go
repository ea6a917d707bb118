package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/gitgrade/internal/contract"
	mcp_internal "github.com/huangsam/gitgrade/internal/mcp"
	"github.com/huangsam/gitgrade/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *server.MCPServer {
	baseCfg := &contract.Config{
		Source:   schema.GitHubSource,
		Owner:    "octo",
		Repo:     "hello",
		Limit:    contract.DefaultCommitLimit,
		Provider: schema.NoProvider,
		Policy:   schema.DefaultScoringPolicy(),
	}
	// The manager is never reached by these requests
	var mgr contract.CacheManager
	return mcp_internal.NewMCPServer(baseCfg, mgr, "test")
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"analyze bad limit", "analyze_repository", map[string]any{"limit": 5000.0}, "limit must be greater than 0"},
		{"analyze bad source", "analyze_repository", map[string]any{"source": "svn"}, "invalid source"},
		{"analyze bad provider", "analyze_repository", map[string]any{"ai_provider": "llama"}, "invalid ai-provider"},
		{"analyze half slug", "analyze_repository", map[string]any{"owner": "octo"}, "invalid repository"},
		{"score missing message", "score_commit", map[string]any{"additions": 3.0}, "message is required"},
		{"score negative size", "score_commit", map[string]any{"message": "fix: x", "additions": -1.0}, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestMCPServerHandlers_ScoreCommit(t *testing.T) {
	s := newTestServer()
	res := callTool(t, s, "score_commit", map[string]any{
		"message":   "feat(auth): add login flow",
		"additions": 40.0,
		"deletions": 20.0,
		"files":     3.0,
	})
	require.False(t, res.IsError)

	var report schema.CommitReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, 100, report.Score.Overall)
	assert.Equal(t, schema.Excellent, report.Category)
	assert.False(t, report.Commit.IsMerge())

	res = callTool(t, s, "score_commit", map[string]any{"message": "Merge branch 'main'", "parents": 2.0})
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.True(t, report.Commit.IsMerge())
}

func TestMCPServerHandlers_GetScoringPolicy(t *testing.T) {
	s := newTestServer()
	res := callTool(t, s, "get_scoring_policy", nil)
	require.False(t, res.IsError)

	var policy schema.ScoringPolicy
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &policy))
	assert.Equal(t, schema.DefaultScoringPolicy(), policy)
}
