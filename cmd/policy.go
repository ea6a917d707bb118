package cmd

import (
	"github.com/huangsam/gitgrade/core"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/spf13/cobra"
)

// policyCmd prints the scoring tables.
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show the active scoring policy.",
	Long: `Print every table used to grade commits: message rules, size tiers,
the heuristic and enhanced weights and the category thresholds.

The policy is versioned. Cached results are keyed by the policy version, so a
policy change never serves stale grades.

Examples:
  gitgrade policy
  gitgrade policy --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: outputSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePolicy(rootCtx, cfg, nil); err != nil {
			contract.LogFatal("Cannot print scoring policy", err)
		}
	},
}
