package agg

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/huangsam/gitgrade/core/algo"
	"github.com/huangsam/gitgrade/schema"
)

// Temporal thresholds are fractions of dated commits.
const (
	nightOwlShare       = 0.25
	earlyBirdShare      = 0.25
	weekendShare        = 0.30
	correlationFlag     = 0.3
	minCorrelationPoint = 3
)

// isNightHour covers 22:00 through 03:59.
func isNightHour(h int) bool { return h >= 22 || h < 4 }

// isEarlyHour covers 05:00 through 08:59.
func isEarlyHour(h int) bool { return h >= 5 && h <= 8 }

// isWorkingHour covers Monday to Friday, 09:00 through 17:59.
func isWorkingHour(day time.Weekday, h int) bool {
	return day != time.Saturday && day != time.Sunday && h >= 9 && h <= 17
}

type weekKey struct{ year, week int }

type weekAcc struct {
	start   time.Time
	commits int
	lines   int
	scores  []float64
}

// AnalyzeTemporal builds hour, weekday and ISO-week histograms from commit
// timestamps in their recorded zone. Commits without a timestamp are skipped.
// scores maps sha to the overall score used for the average columns and the
// correlation; commits missing from it count towards volumes only.
func AnalyzeTemporal(commits []schema.Commit, scores map[string]int) schema.TemporalPattern {
	var out schema.TemporalPattern
	hourScores := make([][]float64, 24)
	dayScores := make([][]float64, 7)
	for h := range 24 {
		out.Hourly[h].Hour = h
	}
	for d := range 7 {
		out.Daily[d].Day = d
		out.Daily[d].Name = time.Weekday(d).String()
	}

	var (
		dated, night, early, weekend, working int
		xsHour, xsDay, ys                     []float64
	)
	weeks := make(map[weekKey]*weekAcc)

	for _, c := range commits {
		if c.Timestamp.IsZero() {
			continue
		}
		dated++
		h := c.Timestamp.Hour()
		wd := c.Timestamp.Weekday()
		out.Hourly[h].Commits++
		out.Daily[wd].Commits++

		if isNightHour(h) {
			night++
		}
		if isEarlyHour(h) {
			early++
		}
		if wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
		if isWorkingHour(wd, h) {
			working++
		}

		year, week := c.Timestamp.ISOWeek()
		k := weekKey{year, week}
		acc, ok := weeks[k]
		if !ok {
			acc = &weekAcc{start: isoWeekStart(c.Timestamp)}
			weeks[k] = acc
		}
		acc.commits++
		acc.lines += c.Stats.Lines()

		score, ok := scores[c.SHA]
		if !ok {
			continue
		}
		s := float64(score)
		hourScores[h] = append(hourScores[h], s)
		dayScores[wd] = append(dayScores[wd], s)
		acc.scores = append(acc.scores, s)
		xsHour = append(xsHour, float64(h))
		xsDay = append(xsDay, float64(wd))
		ys = append(ys, s)
	}

	for h := range 24 {
		out.Hourly[h].AverageScore = algo.Round1(algo.Mean(hourScores[h]))
	}
	for d := range 7 {
		out.Daily[d].AverageScore = algo.Round1(algo.Mean(dayScores[d]))
	}

	out.PeakHour, out.PeakDay = -1, -1
	out.WeeklyVelocity = []schema.WeekBucket{}
	if dated == 0 {
		return out
	}

	out.PeakHour = peakIndex(out.Hourly[:], func(b schema.HourBucket) int { return b.Commits })
	out.PeakDay = peakIndex(out.Daily[:], func(b schema.DayBucket) int { return b.Commits })

	n := float64(dated)
	out.NightRatio = float64(night) / n
	out.EarlyRatio = float64(early) / n
	out.WeekendRatio = float64(weekend) / n
	out.WorkingHoursRatio = float64(working) / n
	out.NightOwl = out.NightRatio > nightOwlShare
	out.EarlyBird = out.EarlyRatio > earlyBirdShare
	out.WeekendCommitter = out.WeekendRatio > weekendShare

	if len(ys) >= minCorrelationPoint {
		out.HourScoreCorrelation = algo.Pearson(xsHour, ys)
		out.DayScoreCorrelation = algo.Pearson(xsDay, ys)
	}
	out.QualityVariesByTime = math.Abs(out.HourScoreCorrelation) >= correlationFlag ||
		math.Abs(out.DayScoreCorrelation) >= correlationFlag

	out.WeeklyVelocity = weeklySeries(weeks)
	first, last := out.WeeklyVelocity[0].Start, out.WeeklyVelocity[len(out.WeeklyVelocity)-1].Start
	spanWeeks := int(last.Sub(first).Hours()/(24*7)) + 1
	out.AverageCommitsPerWeek = algo.Round1(n / float64(spanWeeks))
	return out
}

func weeklySeries(weeks map[weekKey]*weekAcc) []schema.WeekBucket {
	series := make([]schema.WeekBucket, 0, len(weeks))
	for k, acc := range weeks {
		series = append(series, schema.WeekBucket{
			Label:        fmt.Sprintf("%04d-W%02d", k.year, k.week),
			Year:         k.year,
			Week:         k.week,
			Start:        acc.start,
			Commits:      acc.commits,
			LinesChanged: acc.lines,
			AverageScore: algo.Round1(algo.Mean(acc.scores)),
		})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Year != series[j].Year {
			return series[i].Year < series[j].Year
		}
		return series[i].Week < series[j].Week
	})
	return series
}

// isoWeekStart returns midnight UTC of the Monday opening t's ISO week,
// computed on t's wall-clock date.
func isoWeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0
	return day.AddDate(0, 0, -offset)
}

// peakIndex returns the index with the largest count; ties pick the lowest index.
func peakIndex[T any](buckets []T, count func(T) int) int {
	best, bestN := 0, -1
	for i, b := range buckets {
		if n := count(b); n > bestN {
			best, bestN = i, n
		}
	}
	return best
}
