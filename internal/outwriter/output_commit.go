package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/gitgrade/core/algo"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
)

// WriteCommitReport outputs one ad-hoc commit score, dispatching based on the output format configured.
func WriteCommitReport(report schema.CommitReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommitReportCSV(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("%s output is not supported for commit scoring", cfg.Output)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommitReportText(w, report, cfg)
		}, "Wrote report")
	}
}

var commitReportCSVHeader = []string{
	"subject",
	"overall",
	"category",
	"message_total",
	"convention",
	"length",
	"imperative",
	"conventional",
	"commit_type",
	"scope",
	"size_total",
	"lines_score",
	"files_score",
	"giant",
	"tiny",
	"anti_patterns",
}

func writeCommitReportCSV(w io.Writer, report schema.CommitReport) error {
	mq, sz := report.Score.MessageQuality, report.Score.SizeScore
	var patterns []string
	for _, rec := range report.AntiPatterns {
		patterns = append(patterns, string(rec.Type))
	}
	return writeCSVWithHeader(w, commitReportCSVHeader, func(csvWriter *csv.Writer) error {
		return csvWriter.Write([]string{
			algo.Subject(report.Commit.Message),
			strconv.Itoa(report.Score.Overall),
			string(report.Category),
			strconv.Itoa(mq.Total),
			strconv.Itoa(mq.Convention),
			strconv.Itoa(mq.Length),
			strconv.Itoa(mq.Imperative),
			strconv.FormatBool(mq.IsConventional),
			mq.CommitType,
			mq.Scope,
			strconv.Itoa(sz.Total),
			strconv.Itoa(sz.Lines),
			strconv.Itoa(sz.Files),
			strconv.FormatBool(sz.IsGiant),
			strconv.FormatBool(sz.IsTiny),
			strings.Join(patterns, "|"),
		})
	})
}

func writeCommitReportText(w io.Writer, report schema.CommitReport, cfg *contract.Config) error {
	out := &textWriter{w: w}
	mq, sz := report.Score.MessageQuality, report.Score.SizeScore
	stats := report.Commit.Stats

	out.heading(cfg, "📝", "Commit: "+contract.Truncate(algo.Subject(report.Commit.Message), getMaxSubjectWidth(cfg)))
	out.printf("Score: %d %s (policy %s)\n", report.Score.Overall, categoryLabel(cfg, report.Category), report.PolicyVersion)

	out.printf("\nMessage quality: %d/100\n", mq.Total)
	out.printf("  Convention:  %2d/40", mq.Convention)
	if mq.IsConventional {
		out.printf("  (%s", mq.CommitType)
		if mq.Scope != "" {
			out.printf(", scope %s", mq.Scope)
		}
		out.printf(")")
	}
	out.printf("\n  Length:      %2d/30\n", mq.Length)
	out.printf("  Imperative:  %2d/30\n", mq.Imperative)

	out.printf("\nSize: %d/100 (+%d/-%d across %d files)\n", sz.Total, stats.Additions, stats.Deletions, stats.FilesChanged)
	out.printf("  Lines:       %2d/50\n", sz.Lines)
	out.printf("  Files:       %2d/50\n", sz.Files)

	if len(report.Areas) > 0 {
		out.printf("\nAreas: %s\n", strings.Join(report.Areas, ", "))
	}
	if len(report.AntiPatterns) == 0 {
		out.printf("Anti-patterns: none\n")
		return out.err
	}
	out.printf("Anti-patterns:\n")
	for _, rec := range report.AntiPatterns {
		out.printf("  %s: %s\n", rec.Type, rec.Description)
	}
	return out.err
}
