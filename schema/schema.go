// Package schema has models, enums and the scoring policy for all parts of gitgrade.
package schema

import "time"

// Author identifies who wrote a commit.
type Author struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"` // platform login when known
}

// CommitStats holds the diff magnitude of a commit.
type CommitStats struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	Total        int `json:"total"`
	FilesChanged int `json:"files_changed"`
}

// Lines returns the total lines changed. A zero Total with non-zero
// additions or deletions falls back to their sum.
func (s CommitStats) Lines() int {
	if s.Total > 0 {
		return s.Total
	}
	return max(0, s.Additions) + max(0, s.Deletions)
}

// Commit is the immutable fact record handed over by a hosting client.
type Commit struct {
	SHA        string      `json:"sha"`
	Message    string      `json:"message"`
	Author     Author      `json:"author"`
	Timestamp  time.Time   `json:"timestamp"`
	Stats      CommitStats `json:"stats"`
	ParentSHAs []string    `json:"parent_shas"`
	Files      []string    `json:"files,omitempty"` // changed paths when the source provides them
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.ParentSHAs) > 1
}

// RepositoryMetadata describes the analyzed repository.
type RepositoryMetadata struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Language      string `json:"language,omitempty"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	Private       bool   `json:"private"`
	URL           string `json:"url,omitempty"`
}

// MessageQualityScore is the heuristic score of a commit message.
type MessageQualityScore struct {
	Convention     int    `json:"convention"` // 0-40
	Length         int    `json:"length"`     // 0-30
	Imperative     int    `json:"imperative"` // 0-30
	Total          int    `json:"total"`      // 0-100
	IsConventional bool   `json:"is_conventional"`
	CommitType     string `json:"commit_type,omitempty"`
	Scope          string `json:"scope,omitempty"`
}

// SizeScore is the heuristic score of a commit's diff magnitude.
type SizeScore struct {
	Lines   int  `json:"lines"` // 0-50
	Files   int  `json:"files"` // 0-50
	Total   int  `json:"total"` // 0-100
	IsGiant bool `json:"is_giant"`
	IsTiny  bool `json:"is_tiny"`
}

// CommitScore combines message and size scores for one commit.
type CommitScore struct {
	SHA            string              `json:"sha"`
	MessageQuality MessageQualityScore `json:"message_quality"`
	SizeScore      SizeScore           `json:"size_score"`
	Overall        int                 `json:"overall"`
}

// ContributorScore aggregates the commit scores of one author identity.
type ContributorScore struct {
	Email             string    `json:"email"` // lowercased grouping key
	Name              string    `json:"name"`
	Username          string    `json:"username,omitempty"`
	CommitCount       int       `json:"commit_count"`
	Additions         int       `json:"additions"`
	Deletions         int       `json:"deletions"`
	AvgCommitSize     float64   `json:"avg_commit_size"`
	FirstCommit       time.Time `json:"first_commit"`
	LastCommit        time.Time `json:"last_commit"`
	AverageScore      int       `json:"average_score"`
	ConsistencyScore  int       `json:"consistency_score"`
	Category          Category  `json:"category"`
	AvgMessageQuality float64   `json:"avg_message_quality"`
	AvgSizeScore      float64   `json:"avg_size_score"`
	ConventionalRatio float64   `json:"conventional_ratio"`
	MergeCount        int       `json:"merge_count"`
	ActiveHours       []int     `json:"active_hours"` // distinct hours of day, ascending
	ActiveDays        []int     `json:"active_days"`  // distinct weekdays (0=Sunday), ascending
	Velocity          float64   `json:"velocity"`     // commits per day over the active span
	EnhancedAverage   int       `json:"enhanced_average,omitempty"`
}

// AntiPatternRecord is one detected anti-pattern occurrence.
type AntiPatternRecord struct {
	Type        AntiPatternType `json:"type"`
	SHA         string          `json:"sha"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
}

// AntiPatternReport is the complete output of anti-pattern detection.
type AntiPatternReport struct {
	Records []AntiPatternRecord     `json:"records"`
	Counts  map[AntiPatternType]int `json:"counts"`
}

// ByType returns the records of one type, preserving detection order.
func (r AntiPatternReport) ByType(t AntiPatternType) []AntiPatternRecord {
	var out []AntiPatternRecord
	for _, rec := range r.Records {
		if rec.Type == t {
			out = append(out, rec)
		}
	}
	return out
}
