package cmd

import (
	"errors"

	"github.com/huangsam/gitgrade/core"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/internal/iocache"
	"github.com/spf13/cobra"
)

// analyzeCmd grades the recent history of one repository.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <owner/repo | path>",
	Short: "Grade the recent commits of a repository.",
	Long: `Fetch the most recent commits of a repository and grade them.

Every commit gets a heuristic score from its message and its size. Scores are
rolled up per contributor and for the whole repository, together with:
- Anti-pattern counts (giant commits, vague messages, WIP commits)
- Temporal habits (peak hour and weekday, late-night and weekend work)
- Collaboration (bus factor, knowledge silos, shared areas)
- Weekly velocity

With --ai-provider set, batches of commits are sent to an LLM and the
heuristic scores are blended with semantic ratings.

Examples:
  # Grade the last 100 commits of a GitHub repository
  gitgrade analyze golang/go

  # Grade a local clone without any network access
  gitgrade analyze --source local ~/src/project

  # Blend in OpenAI ratings (key from OPENAI_API_KEY)
  gitgrade analyze spf13/cobra --ai-provider openai --limit 200

  # Export contributor rows for spreadsheets
  gitgrade analyze spf13/cobra --output csv --output-file grades.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, iocache.Manager); err != nil {
			contract.LogFatal("Cannot run analysis", errors.New(contract.DescribeHostingError(err)))
		}
	},
}
