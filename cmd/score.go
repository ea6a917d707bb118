package cmd

import (
	"github.com/huangsam/gitgrade/core"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// scoreCmd grades a single commit described on the command line.
var scoreCmd = &cobra.Command{
	Use:   `score "<message>"`,
	Short: "Grade one commit message and size without fetching anything.",
	Long: `Score a single commit from its message and diff size.

Prints the message and size sub-scores, the combined score, the category and
any anti-patterns the commit trips. Useful in commit hooks and for checking a
message before pushing.

Examples:
  # A focused conventional commit
  gitgrade score "fix(api): handle empty pagination cursor" --additions 12 --deletions 3 --files 2

  # A merge commit
  gitgrade score "Merge pull request #42 from fork/feature" --parents 2

  # Machine-readable output
  gitgrade score "wip" --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: outputSetup,
	Run: func(_ *cobra.Command, args []string) {
		c := core.NewAdHocCommit(
			args[0],
			viper.GetInt("additions"),
			viper.GetInt("deletions"),
			viper.GetInt("files"),
			viper.GetInt("parents"),
		)
		if err := core.ExecuteScore(rootCtx, cfg, c); err != nil {
			contract.LogFatal("Cannot score commit", err)
		}
	},
}
