package contract

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/gitgrade/schema"
)

// headerOut is where progress headers go; stdout is reserved for results.
var headerOut io.Writer = os.Stderr

// LogAnalysisHeader prints a concise, 2-line header for a repository run.
func LogAnalysisHeader(cfg *Config) {
	source := cfg.Slug()
	if cfg.Source == schema.LocalSource {
		source = cfg.RepoPath
	}
	_, _ = fmt.Fprintf(headerOut, "🔎 Repo: %s (Source: %s, Limit: %d)\n", source, cfg.Source, cfg.Limit)

	if cfg.Provider == schema.NoProvider {
		reason := cfg.AIDisabledReason
		if reason == "" {
			reason = "disabled"
		}
		_, _ = fmt.Fprintf(headerOut, "🤖 AI: off (%s)\n", reason)
		return
	}
	_, _ = fmt.Fprintf(headerOut, "🤖 AI: %s/%s (batch %d, concurrency %d)\n", cfg.Provider, cfg.AIModel, cfg.BatchSize, cfg.AIConcurrency)
}

// LogCacheHit prints a one-line notice that a cached result is being shown.
func LogCacheHit(cfg *Config, age string) {
	_, _ = fmt.Fprintf(headerOut, "📦 Using cached result for %s (%s old)\n", cfg.Slug(), age)
}
