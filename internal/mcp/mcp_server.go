// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the gitgrade MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"gitgrade Commit Quality Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_repository ---
	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Score the recent commit history of a repository: commit quality, contributors, anti-patterns, temporal and collaboration patterns."),
		mcp.WithString("owner", mcp.Description("Repository owner (GitHub source).")),
		mcp.WithString("repo", mcp.Description("Repository name (GitHub source).")),
		mcp.WithString("repo_path", mcp.Description("Path to a local Git repository (local source).")),
		mcp.WithNumber("limit", mcp.Description("Number of most recent commits to analyze (1-1000).")),
		mcp.WithString("source", mcp.Description("Where to read history from. Defaults to the server configuration."), mcp.Enum("github", "local")),
		mcp.WithString("ai_provider", mcp.Description("Semantic enhancement provider."), mcp.Enum("none", "openai", "gemini")),
	), h.handleAnalyzeRepository)

	// --- 2. Tool: score_commit ---
	s.AddTool(mcp.NewTool("score_commit",
		mcp.WithDescription("Score a single commit message and diff size without fetching any history."),
		mcp.WithString("message", mcp.Description("Full commit message."), mcp.Required()),
		mcp.WithNumber("additions", mcp.Description("Lines added.")),
		mcp.WithNumber("deletions", mcp.Description("Lines deleted.")),
		mcp.WithNumber("files", mcp.Description("Files changed.")),
		mcp.WithNumber("parents", mcp.Description("Parent count; more than one marks a merge. Defaults to 1.")),
	), h.handleScoreCommit)

	// --- 3. Tool: get_scoring_policy ---
	s.AddTool(mcp.NewTool("get_scoring_policy",
		mcp.WithDescription("Return the scoring policy: tiers, weights and category thresholds."),
	), h.handleGetScoringPolicy)

	return s
}

// StartMCPServer starts the gitgrade MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
