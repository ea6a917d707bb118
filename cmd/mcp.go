package cmd

import (
	"github.com/huangsam/gitgrade/internal/iocache"
	"github.com/huangsam/gitgrade/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [owner/repo | path]",
	Short: "Start the gitgrade MCP server",
	Long: `Launch an MCP server over stdio so AI agents can grade repositories and
commits through standard tools.

Tools:
  analyze_repository - grade the recent commits of a repository
  score_commit       - grade one commit message and size
  get_scoring_policy - return the active scoring tables

The optional positional argument and the analyze flags become the defaults of
analyze_repository. Each tool call may override the repository, limit, source
and AI provider.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: mcpSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager, version)
	},
}

// mcpSetup runs sharedSetup without requiring a default repository.
func mcpSetup(cmd *cobra.Command, args []string) error {
	input.OptionalRepo = true
	return sharedSetup(rootCtx, cmd, args)
}
