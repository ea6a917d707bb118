// Package cmd defines the command-line interface for gitgrade.
package cmd

import (
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("top", contract.DefaultTop, "Number of anti-pattern examples to display")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Fetching and AI flags are shared by analyze and mcp. They are bound to
	// Viper in sharedSetup, once the running command is known.
	for _, c := range []*cobra.Command{analyzeCmd, mcpCmd} {
		c.Flags().String("source", string(schema.GitHubSource), "Commit source: github or local")
		c.Flags().IntP("limit", "l", contract.DefaultCommitLimit, "Number of most recent commits to analyze")
		c.Flags().Int("workers", contract.DefaultWorkers, "Number of concurrent commit fetches")
		c.Flags().String("timeout", contract.DefaultTimeout.String(), "Upper bound for a whole analysis run")
		c.Flags().String("github-token", "", "GitHub token (defaults to GITHUB_TOKEN)")
		c.Flags().String("github-api-url", "", "GitHub Enterprise API base URL")
		c.Flags().String("ai-provider", string(schema.NoProvider), "AI enhancement provider: none or openai or gemini")
		c.Flags().String("ai-model", "", "Model name for the AI provider")
		c.Flags().String("ai-base-url", "", "Override the AI provider endpoint")
		c.Flags().String("ai-api-key", "", "AI provider key (defaults to OPENAI_API_KEY or GEMINI_API_KEY)")
		c.Flags().Int("batch-size", contract.DefaultBatchSize, "Commits per AI request")
		c.Flags().Int("ai-concurrency", contract.DefaultAIConcurrency, "Concurrent AI requests")
		c.Flags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long a cached result stays fresh")
		c.Flags().Bool("no-cache", false, "Ignore cached results and recompute")
	}

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().Int("additions", 0, "Lines added by the commit")
	scoreCmd.Flags().Int("deletions", 0, "Lines deleted by the commit")
	scoreCmd.Flags().Int("files", 1, "Files changed by the commit")
	scoreCmd.Flags().Int("parents", 1, "Parent count (2 or more marks a merge)")
	if err := viper.BindPFlags(scoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding score flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
