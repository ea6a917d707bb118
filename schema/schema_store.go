package schema

import "time"

// RunSummary is what the analysis store keeps about a finished run.
type RunSummary struct {
	Repository     string
	TotalCommits   int
	Score          int
	HeuristicScore int
	AIStatus       AIStatus
	TotalTokens    int
}

// AnalysisRunRecord represents a row from the gitgrade_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID     int64
	Repository     string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalCommits   int32
	Score          int32
	HeuristicScore int32
	AIStatus       string
	TotalTokens    int32
	ConfigParams   *string
}

// ContributorScoreRecord represents a row from the gitgrade_contributor_scores table.
type ContributorScoreRecord struct {
	AnalysisID       int64
	Email            string
	Name             string
	CommitCount      int32
	AverageScore     int32
	ConsistencyScore int32
	Category         string
	Velocity         float64
}
