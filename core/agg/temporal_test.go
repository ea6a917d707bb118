package agg

import (
	"testing"
	"time"

	"github.com/huangsam/gitgrade/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sha string, ts time.Time, lines int) schema.Commit {
	return schema.Commit{SHA: sha, Timestamp: ts, Stats: schema.CommitStats{Total: lines}}
}

func TestAnalyzeTemporal(t *testing.T) {
	commits := []schema.Commit{
		at("c1", time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), 10),  // Monday night
		at("c2", time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC), 20), // Tuesday night
		at("c3", time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), 30),  // Saturday
		at("c4", time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), 40),  // next Monday
		{SHA: "undated", Stats: schema.CommitStats{Total: 99}},
	}
	scores := map[string]int{"c1": 50, "c2": 60, "c3": 90, "c4": 80, "undated": 10}

	got := AnalyzeTemporal(commits, scores)

	assert.Equal(t, 2, got.Hourly[23].Commits)
	assert.Equal(t, 55.0, got.Hourly[23].AverageScore)
	assert.Equal(t, 2, got.Hourly[10].Commits)
	assert.Equal(t, 85.0, got.Hourly[10].AverageScore)
	assert.Equal(t, 2, got.Daily[time.Monday].Commits)
	assert.Equal(t, "Monday", got.Daily[time.Monday].Name)
	assert.Equal(t, 65.0, got.Daily[time.Monday].AverageScore)

	assert.Equal(t, 10, got.PeakHour, "ties pick the earliest hour")
	assert.Equal(t, int(time.Monday), got.PeakDay)

	assert.Equal(t, 0.5, got.NightRatio)
	assert.True(t, got.NightOwl)
	assert.Zero(t, got.EarlyRatio)
	assert.False(t, got.EarlyBird)
	assert.Equal(t, 0.25, got.WeekendRatio)
	assert.False(t, got.WeekendCommitter)
	assert.Equal(t, 0.25, got.WorkingHoursRatio)

	assert.Less(t, got.HourScoreCorrelation, -0.9)
	assert.True(t, got.QualityVariesByTime)

	require.Len(t, got.WeeklyVelocity, 2)
	w1, w2 := got.WeeklyVelocity[0], got.WeeklyVelocity[1]
	assert.Equal(t, "2024-W01", w1.Label)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w1.Start)
	assert.Equal(t, 3, w1.Commits)
	assert.Equal(t, 60, w1.LinesChanged)
	assert.Equal(t, 66.7, w1.AverageScore)
	assert.Equal(t, "2024-W02", w2.Label)
	assert.Equal(t, 1, w2.Commits)
	assert.Equal(t, 2.0, got.AverageCommitsPerWeek)
}

func TestAnalyzeTemporalIsoYearBoundary(t *testing.T) {
	// 2020-12-31 falls in ISO week 53 of 2020; 2021-01-04 opens week 1 of 2021.
	commits := []schema.Commit{
		at("b", time.Date(2021, 1, 4, 12, 0, 0, 0, time.UTC), 1),
		at("a", time.Date(2020, 12, 31, 12, 0, 0, 0, time.UTC), 1),
	}
	got := AnalyzeTemporal(commits, nil)
	require.Len(t, got.WeeklyVelocity, 2)
	assert.Equal(t, "2020-W53", got.WeeklyVelocity[0].Label)
	assert.Equal(t, time.Date(2020, 12, 28, 0, 0, 0, 0, time.UTC), got.WeeklyVelocity[0].Start)
	assert.Equal(t, "2021-W01", got.WeeklyVelocity[1].Label)
	assert.Zero(t, got.HourScoreCorrelation, "no scores means no correlation")
	assert.False(t, got.QualityVariesByTime)
}

func TestAnalyzeTemporalSparseWeeks(t *testing.T) {
	commits := []schema.Commit{
		at("a", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), 1),
		at("b", time.Date(2024, 1, 29, 12, 0, 0, 0, time.UTC), 1),
	}
	got := AnalyzeTemporal(commits, nil)
	assert.Len(t, got.WeeklyVelocity, 2)
	assert.Equal(t, 0.4, got.AverageCommitsPerWeek, "two commits over a five-week span")
}

func TestAnalyzeTemporalFlags(t *testing.T) {
	sat := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC) // Saturday early morning
	commits := []schema.Commit{at("1", sat, 1), at("2", sat.Add(time.Hour), 1), at("3", sat.AddDate(0, 0, 2).Add(8*time.Hour), 1)}
	got := AnalyzeTemporal(commits, nil)
	assert.True(t, got.EarlyBird)
	assert.True(t, got.WeekendCommitter)
	assert.False(t, got.NightOwl)
	assert.InDelta(t, 1.0/3, got.WorkingHoursRatio, 1e-9)
}

func TestAnalyzeTemporalEmpty(t *testing.T) {
	got := AnalyzeTemporal(nil, nil)
	assert.Equal(t, -1, got.PeakHour)
	assert.Equal(t, -1, got.PeakDay)
	assert.NotNil(t, got.WeeklyVelocity)
	assert.Empty(t, got.WeeklyVelocity)
	assert.Zero(t, got.NightRatio)
	assert.Equal(t, 23, got.Hourly[23].Hour)
	assert.Equal(t, "Saturday", got.Daily[6].Name)
}
