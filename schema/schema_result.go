package schema

import "time"

// RepositorySummary holds repository-wide aggregates.
type RepositorySummary struct {
	Score             int      `json:"score"`           // effective score, enhanced when AI ran
	HeuristicScore    int      `json:"heuristic_score"` // mean of heuristic overall scores
	Category          Category `json:"category"`
	CommitCount       int      `json:"commit_count"`
	ContributorCount  int      `json:"contributor_count"`
	Additions         int      `json:"additions"`
	Deletions         int      `json:"deletions"`
	ConventionalRatio float64  `json:"conventional_ratio"`
	AvgMessageQuality float64  `json:"avg_message_quality"`
	AvgSizeScore      float64  `json:"avg_size_score"`
	MergeRatio        float64  `json:"merge_ratio"`
}

// AnalysisResult is the immutable snapshot produced by one analysis run.
type AnalysisResult struct {
	Repository     RepositoryMetadata    `json:"repository"`
	Summary        RepositorySummary     `json:"summary"`
	Commits        []CommitScore         `json:"commits"`
	Enhanced       []EnhancedCommitScore `json:"enhanced"`
	Contributors   []ContributorScore    `json:"contributors"`
	AntiPatterns   AntiPatternReport     `json:"anti_patterns"`
	Temporal       TemporalPattern       `json:"temporal"`
	Collaboration  CollaborationMetrics  `json:"collaboration"`
	AIStatus       AIStatus              `json:"ai_status"`
	AIProvider     string                `json:"ai_provider,omitempty"`
	AICoverage     int                   `json:"ai_coverage"` // commits with a semantic analysis
	TokenUsage     TokenUsage            `json:"token_usage"`
	PolicyVersion  string                `json:"policy_version"`
	AnalyzedAt     time.Time             `json:"analyzed_at"` // set by the caller, not the pipeline
	FromCache      bool                  `json:"from_cache"`
	ElapsedSeconds float64               `json:"elapsed_seconds,omitempty"`
}

// CommitReport is the standalone scoring of one commit, outside any repository run.
type CommitReport struct {
	Commit        Commit              `json:"commit"`
	Score         CommitScore         `json:"score"`
	Category      Category            `json:"category"`
	Areas         []string            `json:"areas"`
	AntiPatterns  []AntiPatternRecord `json:"anti_patterns"`
	PolicyVersion string              `json:"policy_version"`
}
