package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/gitgrade/core"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	overrides := contract.AnalysisOverrides{
		Owner:    request.GetString("owner", ""),
		Repo:     request.GetString("repo", ""),
		RepoPath: request.GetString("repo_path", ""),
		Source:   request.GetString("source", ""),
		Provider: request.GetString("ai_provider", ""),
		Limit:    request.GetInt("limit", 0),
	}
	if err := contract.RevalidateAnalysis(ctx, cfg, overrides); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid analysis parameters: %v", err)), nil
	}

	result, err := core.RunAnalysis(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %s", contract.DescribeHostingError(err))), nil
	}
	return jsonResult(result), nil
}

func (h *toolHandler) handleScoreCommit(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := request.GetString("message", "")
	if message == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	additions := request.GetInt("additions", 0)
	deletions := request.GetInt("deletions", 0)
	files := request.GetInt("files", 0)
	parents := request.GetInt("parents", 1)
	if additions < 0 || deletions < 0 || files < 0 || parents < 0 {
		return mcp.NewToolResultError("additions, deletions, files and parents must not be negative"), nil
	}

	commit := core.NewAdHocCommit(message, additions, deletions, files, parents)
	return jsonResult(core.ScoreSingleCommit(h.baseCfg.Policy, commit)), nil
}

func (h *toolHandler) handleGetScoringPolicy(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.baseCfg.Policy), nil
}

// jsonResult wraps a value as an indented JSON text result.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}
