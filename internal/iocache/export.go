package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/internal/parquet"
)

// ExportAnalysis writes the tracked runs and contributor scores of store to
// two Parquet files named after outputFile, reporting progress to w.
func ExportAnalysis(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total contributor records: %d\n", status.TableSizes[contributorScoresTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	scores, err := store.GetAllContributorScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve contributor scores: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	scoresFile := outputFile + ".contributor_scores.parquet"
	if err := parquet.WriteContributorScoresParquet(parquet.ConvertContributorScoreRecords(scores), scoresFile); err != nil {
		return fmt.Errorf("failed to write contributor scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d contributor records to: %s\n", len(scores), scoresFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Spark, Arrow or pandas.")
	return nil
}
