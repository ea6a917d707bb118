// Package parquet provides row types and writers for exporting gitgrade data
// to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitgrade/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single tracked analysis run.
// This struct maps to the gitgrade_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// Repository is the owner/repo slug
	Repository string `parquet:"repository,snappy"`

	// StartTime is when the analysis began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalCommits   int32  `parquet:"total_commits,snappy"`
	Score          int32  `parquet:"score,snappy"`
	HeuristicScore int32  `parquet:"heuristic_score,snappy"`
	AIStatus       string `parquet:"ai_status,snappy"`
	TotalTokens    int32  `parquet:"total_tokens,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ContributorScore is one contributor rollup of a tracked run.
// This struct maps to the gitgrade_contributor_scores database table.
type ContributorScore struct {
	AnalysisID       int64   `parquet:"analysis_id,snappy"`
	Email            string  `parquet:"email,snappy"`
	Name             string  `parquet:"name,snappy"`
	CommitCount      int32   `parquet:"commit_count,snappy"`
	AverageScore     int32   `parquet:"average_score,snappy"`
	ConsistencyScore int32   `parquet:"consistency_score,snappy"`
	Category         string  `parquet:"category,snappy"`
	Velocity         float64 `parquet:"velocity,snappy"`
}

// CommitRow is the flattened score of one commit in an analysis result.
type CommitRow struct {
	Repository     string    `parquet:"repository,snappy"`
	SHA            string    `parquet:"sha,snappy"`
	MessageScore   int32     `parquet:"message_score,snappy"`
	SizeScore      int32     `parquet:"size_score,snappy"`
	HeuristicScore int32     `parquet:"heuristic_score,snappy"`
	EnhancedScore  int32     `parquet:"enhanced_score,snappy"`
	IsConventional bool      `parquet:"is_conventional,snappy"`
	IsGiant        bool      `parquet:"is_giant,snappy"`
	IsTiny         bool      `parquet:"is_tiny,snappy"`
	CommitType     *string   `parquet:"commit_type,optional,snappy"`
	Intent         *string   `parquet:"intent,optional,snappy"`
	AIApplied      bool      `parquet:"ai_applied,snappy"`
	PolicyVersion  string    `parquet:"policy_version,snappy"`
	AnalyzedAt     time.Time `parquet:"analyzed_at,snappy"`
}

// ContributorRow is the flattened rollup of one contributor in an analysis result.
type ContributorRow struct {
	Repository        string    `parquet:"repository,snappy"`
	Email             string    `parquet:"email,snappy"`
	Name              string    `parquet:"name,snappy"`
	CommitCount       int32     `parquet:"commit_count,snappy"`
	Additions         int32     `parquet:"additions,snappy"`
	Deletions         int32     `parquet:"deletions,snappy"`
	AverageScore      int32     `parquet:"average_score,snappy"`
	EnhancedAverage   *int32    `parquet:"enhanced_average,optional,snappy"`
	ConsistencyScore  int32     `parquet:"consistency_score,snappy"`
	Category          string    `parquet:"category,snappy"`
	ConventionalRatio float64   `parquet:"conventional_ratio,snappy"`
	MergeCount        int32     `parquet:"merge_count,snappy"`
	Velocity          float64   `parquet:"velocity,snappy"`
	FirstCommit       time.Time `parquet:"first_commit,snappy"`
	LastCommit        time.Time `parquet:"last_commit,snappy"`
}

// writeRows writes a slice of rows to a Parquet file. The schema is derived
// from the struct tags of T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		_ = file.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteContributorScoresParquet writes tracked contributor scores to a Parquet file.
func WriteContributorScoresParquet(data []ContributorScore, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteCommitsParquet writes per-commit rows to a Parquet file.
func WriteCommitsParquet(data []CommitRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteContributorsParquet writes per-contributor rows to a Parquet file.
func WriteContributorsParquet(data []ContributorRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:     record.AnalysisID,
			Repository:     record.Repository,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			TotalCommits:   record.TotalCommits,
			Score:          record.Score,
			HeuristicScore: record.HeuristicScore,
			AIStatus:       record.AIStatus,
			TotalTokens:    record.TotalTokens,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertContributorScoreRecords converts schema.ContributorScoreRecord to ContributorScore for Parquet export.
func ConvertContributorScoreRecords(records []schema.ContributorScoreRecord) []ContributorScore {
	result := make([]ContributorScore, len(records))
	for i, r := range records {
		result[i] = ContributorScore(r)
	}
	return result
}

// CommitRowsOf flattens an analysis result into one row per scored commit.
func CommitRowsOf(result schema.AnalysisResult) []CommitRow {
	enhanced := make(map[string]schema.EnhancedCommitScore, len(result.Enhanced))
	for _, e := range result.Enhanced {
		enhanced[e.SHA] = e
	}

	rows := make([]CommitRow, len(result.Commits))
	for i, s := range result.Commits {
		row := CommitRow{
			Repository:     result.Repository.FullName,
			SHA:            s.SHA,
			MessageScore:   int32(s.MessageQuality.Total),
			SizeScore:      int32(s.SizeScore.Total),
			HeuristicScore: int32(s.Overall),
			EnhancedScore:  int32(s.Overall),
			IsConventional: s.MessageQuality.IsConventional,
			IsGiant:        s.SizeScore.IsGiant,
			IsTiny:         s.SizeScore.IsTiny,
			PolicyVersion:  result.PolicyVersion,
			AnalyzedAt:     result.AnalyzedAt,
		}
		if s.MessageQuality.CommitType != "" {
			row.CommitType = ptr(s.MessageQuality.CommitType)
		}
		if e, ok := enhanced[s.SHA]; ok {
			row.EnhancedScore = int32(e.Overall)
			row.AIApplied = e.AIApplied
			if e.Intent != "" {
				row.Intent = ptr(string(e.Intent))
			}
		}
		rows[i] = row
	}
	return rows
}

// ContributorRowsOf flattens the contributor rollups of an analysis result.
func ContributorRowsOf(result schema.AnalysisResult) []ContributorRow {
	rows := make([]ContributorRow, len(result.Contributors))
	for i, c := range result.Contributors {
		rows[i] = ContributorRow{
			Repository:        result.Repository.FullName,
			Email:             c.Email,
			Name:              c.Name,
			CommitCount:       int32(c.CommitCount),
			Additions:         int32(c.Additions),
			Deletions:         int32(c.Deletions),
			AverageScore:      int32(c.AverageScore),
			ConsistencyScore:  int32(c.ConsistencyScore),
			Category:          string(c.Category),
			ConventionalRatio: c.ConventionalRatio,
			MergeCount:        int32(c.MergeCount),
			Velocity:          c.Velocity,
			FirstCommit:       c.FirstCommit,
			LastCommit:        c.LastCommit,
		}
		if c.EnhancedAverage > 0 {
			rows[i].EnhancedAverage = ptr(int32(c.EnhancedAverage))
		}
	}
	return rows
}

func ptr[T any](v T) *T {
	return &v
}
