package schema

import "time"

// HourBucket is one hour-of-day histogram bin.
type HourBucket struct {
	Hour         int     `json:"hour"`
	Commits      int     `json:"commits"`
	AverageScore float64 `json:"average_score"`
}

// DayBucket is one day-of-week histogram bin (0=Sunday).
type DayBucket struct {
	Day          int     `json:"day"`
	Name         string  `json:"name"`
	Commits      int     `json:"commits"`
	AverageScore float64 `json:"average_score"`
}

// WeekBucket is one ISO-week point of the velocity series.
type WeekBucket struct {
	Label        string    `json:"label"` // e.g. 2024-W05
	Year         int       `json:"year"`
	Week         int       `json:"week"`
	Start        time.Time `json:"start"` // Monday of the ISO week, UTC
	Commits      int       `json:"commits"`
	LinesChanged int       `json:"lines_changed"`
	AverageScore float64   `json:"average_score"`
}

// TemporalPattern summarizes when commits happen and how quality varies with time.
type TemporalPattern struct {
	Hourly                [24]HourBucket `json:"hourly"`
	Daily                 [7]DayBucket   `json:"daily"`
	PeakHour              int            `json:"peak_hour"`
	PeakDay               int            `json:"peak_day"`
	NightOwl              bool           `json:"night_owl"`
	EarlyBird             bool           `json:"early_bird"`
	WeekendCommitter      bool           `json:"weekend_committer"`
	NightRatio            float64        `json:"night_ratio"`
	EarlyRatio            float64        `json:"early_ratio"`
	WeekendRatio          float64        `json:"weekend_ratio"`
	WorkingHoursRatio     float64        `json:"working_hours_ratio"`
	HourScoreCorrelation  float64        `json:"hour_score_correlation"`
	DayScoreCorrelation   float64        `json:"day_score_correlation"`
	QualityVariesByTime   bool           `json:"quality_varies_by_time"`
	WeeklyVelocity        []WeekBucket   `json:"weekly_velocity"`
	AverageCommitsPerWeek float64        `json:"average_commits_per_week"`
}

// AreaOwnership is the ownership summary of one pseudo-file area.
type AreaOwnership struct {
	Area         string         `json:"area"`
	Commits      int            `json:"commits"`
	PrimaryOwner string         `json:"primary_owner"` // lowercased email
	OwnershipPct float64        `json:"ownership_pct"` // 0-100
	Contributors map[string]int `json:"contributors"`
}

// KnowledgeSilo is a contributor dominating one or more areas.
type KnowledgeSilo struct {
	Contributor string    `json:"contributor"` // lowercased email
	Name        string    `json:"name"`
	Areas       []string  `json:"areas"`
	Risk        RiskLevel `json:"risk"`
}

// CollaborationMetrics summarizes knowledge distribution across contributors.
type CollaborationMetrics struct {
	BusFactor       int             `json:"bus_factor"`
	Areas           []AreaOwnership `json:"areas"`
	SharedAreas     int             `json:"shared_areas"`
	KnowledgeSilos  []KnowledgeSilo `json:"knowledge_silos"`
	CommitGini      float64         `json:"commit_gini"` // 0 = evenly spread
	UsesFilePaths   bool            `json:"uses_file_paths"`
	TopContributors []string        `json:"top_contributors"` // bus-factor set, by volume
}
