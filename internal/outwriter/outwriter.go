// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAnalysis prints a repository analysis using the configured output format.
func (ow *OutWriter) WriteAnalysis(result schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return WriteAnalysisResult(result, cfg, duration)
}

// WriteCommitReport prints a single-commit score breakdown using the configured output format.
func (ow *OutWriter) WriteCommitReport(report schema.CommitReport, cfg *contract.Config) error {
	return WriteCommitReport(report, cfg)
}

// WritePolicy prints the scoring policy using the configured output format.
func (ow *OutWriter) WritePolicy(policy schema.ScoringPolicy, cfg *contract.Config) error {
	return WritePolicy(policy, cfg)
}
