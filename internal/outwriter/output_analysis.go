package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitgrade/core/algo"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/internal/parquet"
	"github.com/huangsam/gitgrade/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteAnalysisResult outputs a repository analysis, dispatching based on the output format configured.
func WriteAnalysisResult(result schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPct := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContributorsCSV(w, result, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeAnalysisParquet(result, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable report
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisText(w, result, cfg, fmtFloat, fmtPct, duration)
		}, "Wrote report")
	}
	return nil
}

// writeAnalysisParquet writes contributor and commit rows next to each other.
func writeAnalysisParquet(result schema.AnalysisResult, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	contributorsFile := outputFile + ".contributors.parquet"
	commitsFile := outputFile + ".commits.parquet"
	if err := parquet.WriteContributorsParquet(parquet.ContributorRowsOf(result), contributorsFile); err != nil {
		return err
	}
	if err := parquet.WriteCommitsParquet(parquet.CommitRowsOf(result), commitsFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s and %s\n", contributorsFile, commitsFile)
	return nil
}

// contributorCSVHeader lists the columns of the contributor CSV export.
var contributorCSVHeader = []string{
	"rank",
	"email",
	"name",
	"username",
	"commits",
	"additions",
	"deletions",
	"average_score",
	"enhanced_average",
	"consistency",
	"category",
	"avg_message_quality",
	"avg_size_score",
	"conventional_ratio",
	"merge_count",
	"velocity",
	"first_commit",
	"last_commit",
}

// writeContributorsCSV writes one row per contributor.
func writeContributorsCSV(w io.Writer, result schema.AnalysisResult, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, contributorCSVHeader, func(csvWriter *csv.Writer) error {
		for i, c := range result.Contributors {
			record := []string{
				strconv.Itoa(i + 1),
				c.Email,
				c.Name,
				c.Username,
				strconv.Itoa(c.CommitCount),
				strconv.Itoa(c.Additions),
				strconv.Itoa(c.Deletions),
				strconv.Itoa(c.AverageScore),
				strconv.Itoa(c.EnhancedAverage),
				strconv.Itoa(c.ConsistencyScore),
				string(c.Category),
				fmtFloat(c.AvgMessageQuality),
				fmtFloat(c.AvgSizeScore),
				fmtFloat(c.ConventionalRatio),
				strconv.Itoa(c.MergeCount),
				fmtFloat(c.Velocity),
				c.FirstCommit.UTC().Format(time.RFC3339),
				c.LastCommit.UTC().Format(time.RFC3339),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeAnalysisText renders the human-readable report.
func writeAnalysisText(w io.Writer, result schema.AnalysisResult, cfg *contract.Config, fmtFloat, fmtPct func(float64) string, duration time.Duration) error {
	out := &textWriter{w: w}
	writeSummarySection(out, result, cfg, fmtPct)
	if out.err != nil {
		return out.err
	}
	if result.Summary.CommitCount == 0 {
		out.printf("No commits to analyze.\n")
		return out.err
	}

	out.heading(cfg, "👥", "Contributors")
	if err := writeContributorTable(w, result, cfg, fmtPct); err != nil {
		return err
	}
	writeLowestCommitsSection(out, result.Commits, cfg)
	writeAntiPatternSection(out, result, cfg)
	writeTemporalSection(out, result.Temporal, cfg, fmtFloat, fmtPct)
	writeCollaborationSection(out, result.Collaboration, cfg, fmtFloat)
	if out.err != nil {
		return out.err
	}
	if len(result.Temporal.WeeklyVelocity) > 0 {
		out.heading(cfg, "📈", "Weekly Velocity")
		if out.err != nil {
			return out.err
		}
		if err := writeVelocityTable(w, result.Temporal.WeeklyVelocity, fmtFloat); err != nil {
			return err
		}
	}

	out.printf("\nAnalysis completed in %v (cached: %t, policy %s)\n", duration.Round(time.Millisecond), result.FromCache, result.PolicyVersion)
	return out.err
}

func writeSummarySection(out *textWriter, result schema.AnalysisResult, cfg *contract.Config, fmtPct func(float64) string) {
	repo := result.Repository
	name := repo.FullName
	if name == "" {
		name = repo.Name
	}
	out.heading(cfg, "📊", "Repository: "+name)
	if repo.Description != "" {
		out.printf("%s\n", repo.Description)
	}
	if repo.Language != "" || repo.Stars > 0 {
		out.printf("Language: %s  Stars: %d  Forks: %d\n", valueOr(repo.Language, "unknown"), repo.Stars, repo.Forks)
	}

	s := result.Summary
	out.printf("Score: %d %s (heuristic %d)\n", s.Score, categoryLabel(cfg, s.Category), s.HeuristicScore)
	switch {
	case result.AIStatus == schema.AIDisabled && result.AIProvider == "":
		out.printf("AI enhancement: disabled\n")
	case result.AIStatus == schema.AIDisabled:
		u := result.TokenUsage
		out.printf("AI enhancement: disabled, %s returned no analyses (%d tokens in %d requests, %d failed batches)\n",
			result.AIProvider, u.TotalTokens, u.Requests, u.FailedBatches)
	default:
		u := result.TokenUsage
		out.printf("AI enhancement: %s via %s (%d/%d commits, %d tokens in %d requests, %d failed batches)\n",
			result.AIStatus, result.AIProvider, result.AICoverage, s.CommitCount, u.TotalTokens, u.Requests, u.FailedBatches)
	}
	out.printf("Commits: %d  Contributors: %d  Lines: +%d/-%d\n", s.CommitCount, s.ContributorCount, s.Additions, s.Deletions)
	out.printf("Conventional: %s  Merges: %s  Avg message: %.0f  Avg size: %.0f\n",
		fmtPct(s.ConventionalRatio), fmtPct(s.MergeRatio), s.AvgMessageQuality, s.AvgSizeScore)
}

func writeContributorTable(w io.Writer, result schema.AnalysisResult, cfg *contract.Config, fmtPct func(float64) string) error {
	enhanced := result.AIStatus != schema.AIDisabled
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Contributor", "Commits", "Score"}
	if enhanced {
		headers = append(headers, "Enhanced")
	}
	headers = append(headers, "Category", "Consistency", "Conventional", "Lines")
	table.Header(headers)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, c := range algo.RankContributors(result.Contributors, 0) {
		row := []string{
			strconv.Itoa(i + 1),
			contract.Truncate(contributorName(c), 32),
			strconv.Itoa(c.CommitCount),
			strconv.Itoa(c.AverageScore),
		}
		if enhanced {
			row = append(row, strconv.Itoa(c.EnhancedAverage))
		}
		row = append(row,
			categoryLabel(cfg, c.Category),
			strconv.Itoa(c.ConsistencyScore),
			fmtPct(c.ConventionalRatio),
			fmt.Sprintf("+%d/-%d", c.Additions, c.Deletions),
		)
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeLowestCommitsSection lists the worst heuristic scores, capped by cfg.Top.
func writeLowestCommitsSection(out *textWriter, scores []schema.CommitScore, cfg *contract.Config) {
	if len(scores) == 0 {
		return
	}
	out.heading(cfg, "📉", "Lowest-Scoring Commits")
	for _, s := range algo.RankCommits(scores, cfg.Top) {
		kind := valueOr(s.MessageQuality.CommitType, "-")
		out.printf("  %s  score %3d  message %3d  size %3d  type %s\n",
			shortSHA(s.SHA), s.Overall, s.MessageQuality.Total, s.SizeScore.Total, kind)
	}
}

func writeAntiPatternSection(out *textWriter, result schema.AnalysisResult, cfg *contract.Config) {
	report := result.AntiPatterns
	out.heading(cfg, "🚩", "Anti-patterns")
	if len(report.Records) == 0 {
		out.printf("None detected\n")
		return
	}
	var counts []string
	for _, t := range schema.AllAntiPatternTypes {
		counts = append(counts, fmt.Sprintf("%s: %d", t, report.Counts[t]))
	}
	out.printf("%s\n", strings.Join(counts, "  "))

	width := getMaxSubjectWidth(cfg)
	for _, t := range schema.AllAntiPatternTypes {
		records := report.ByType(t)
		for i, rec := range records {
			if i == cfg.Top {
				out.printf("  %-13s ... %d more\n", t, len(records)-cfg.Top)
				break
			}
			out.printf("  %-13s %s %s\n", t, shortSHA(rec.SHA), contract.Truncate(algo.Subject(rec.Message), width))
		}
	}
}

func writeTemporalSection(out *textWriter, t schema.TemporalPattern, cfg *contract.Config, fmtFloat, fmtPct func(float64) string) {
	out.heading(cfg, "🕒", "Temporal Patterns")
	if t.PeakHour >= 0 && t.PeakDay >= 0 {
		out.printf("Peak hour: %02d:00  Peak day: %s\n", t.PeakHour, time.Weekday(t.PeakDay))
	} else {
		out.printf("Peak hour: n/a  Peak day: n/a\n")
	}
	out.printf("Working hours: %s  Night: %s  Early: %s  Weekend: %s\n",
		fmtPct(t.WorkingHoursRatio), fmtPct(t.NightRatio), fmtPct(t.EarlyRatio), fmtPct(t.WeekendRatio))

	var flags []string
	if t.NightOwl {
		flags = append(flags, "night owl")
	}
	if t.EarlyBird {
		flags = append(flags, "early bird")
	}
	if t.WeekendCommitter {
		flags = append(flags, "weekend committer")
	}
	if len(flags) > 0 {
		out.printf("Habits: %s\n", strings.Join(flags, ", "))
	}
	out.printf("Score correlation: hour %s, weekday %s", fmtFloat(t.HourScoreCorrelation), fmtFloat(t.DayScoreCorrelation))
	if t.QualityVariesByTime {
		out.printf(" (quality varies by time)")
	}
	out.printf("\nAverage commits per week: %s\n", fmtFloat(t.AverageCommitsPerWeek))
}

func writeCollaborationSection(out *textWriter, c schema.CollaborationMetrics, cfg *contract.Config, fmtFloat func(float64) string) {
	out.heading(cfg, "🤝", "Collaboration")
	out.printf("Bus factor: %d (%s)\n", c.BusFactor, strings.Join(c.TopContributors, ", "))
	basis := "commit subjects"
	if c.UsesFilePaths {
		basis = "file paths"
	}
	out.printf("Areas: %d (%d shared, from %s)  Commit Gini: %s\n", len(c.Areas), c.SharedAreas, basis, fmtFloat(c.CommitGini))
	if len(c.KnowledgeSilos) == 0 {
		out.printf("Knowledge silos: none\n")
		return
	}
	out.printf("Knowledge silos:\n")
	for _, s := range c.KnowledgeSilos {
		out.printf("  %s %s: %s\n", riskLabel(cfg, s.Risk), valueOr(s.Name, s.Contributor), strings.Join(s.Areas, ", "))
	}
}

func writeVelocityTable(w io.Writer, weeks []schema.WeekBucket, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Week", "Commits", "Lines", "Avg Score"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, wk := range weeks {
		data = append(data, []string{
			wk.Label,
			strconv.Itoa(wk.Commits),
			strconv.Itoa(wk.LinesChanged),
			fmtFloat(wk.AverageScore),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// contributorName prefers "Name <email>" and falls back to the email.
func contributorName(c schema.ContributorScore) string {
	if c.Name == "" {
		return c.Email
	}
	return fmt.Sprintf("%s <%s>", c.Name, c.Email)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
