// Package aggregate holds pure functions over an in-memory snapshot of
// diary entries. Nothing here touches storage; malformed rows were
// already filtered during load.
package aggregate

import (
	"sort"
	"time"

	"github.com/pchalerm/moodlog/internal/domain"
)

// WeekBucket is one calendar week's average classifier score
type WeekBucket struct {
	WeekStart time.Time `json:"week_start"`
	AvgScore  float64   `json:"avg_score"`
}

// DayPoint is one day's average mood level (neg 1, neu 2, pos 3)
type DayPoint struct {
	Day      time.Time `json:"day"`
	AvgLevel float64   `json:"avg_level"`
}

// WeekStart returns the Monday on or before t
func WeekStart(t time.Time) time.Time {
	t = domain.Midnight(t)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return t.AddDate(0, 0, -offset)
}

// WeeklyAverageScore groups entries into Monday-start calendar weeks
// and averages the classifier score within each. Weeks with no entries
// are absent. Buckets come back in chronological order.
func WeeklyAverageScore(entries []domain.Entry) []WeekBucket {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, e := range entries {
		ws := WeekStart(e.Date)
		sums[ws] += e.Score
		counts[ws]++
	}

	buckets := make([]WeekBucket, 0, len(sums))
	for ws, sum := range sums {
		buckets = append(buckets, WeekBucket{
			WeekStart: ws,
			AvgScore:  sum / float64(counts[ws]),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].WeekStart.Before(buckets[j].WeekStart)
	})
	return buckets
}

// Rolling7Start returns the start of a rolling window covering the
// seven calendar days up to and including today.
func Rolling7Start(today time.Time) time.Time {
	return domain.Midnight(today).AddDate(0, 0, -6)
}

// ISOWeekStart returns the most recent Monday on or before today
func ISOWeekStart(today time.Time) time.Time {
	return WeekStart(today)
}

// RecentWindow filters entries with date >= start
func RecentWindow(entries []domain.Entry, start time.Time) []domain.Entry {
	start = domain.Midnight(start)
	var out []domain.Entry
	for _, e := range entries {
		if !e.Date.Before(start) {
			out = append(out, e)
		}
	}
	return out
}

// ScaledSentimentAverage averages the categorical sentiment weights
// (pos 1.0, neu 0.5, neg 0.0) over entries. This is distinct from the
// classifier score, which is a confidence, not a polarity. Returns 0
// for an empty input.
func ScaledSentimentAverage(entries []domain.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Sentiment.Weight()
	}
	return sum / float64(len(entries))
}

// CalendarMoodMap lays out a month as Monday-first weeks and fills
// each day cell with the emoji of that day's entry. Cells outside the
// month or without an entry are empty strings.
func CalendarMoodMap(entries []domain.Entry, year int, month time.Month) [][7]string {
	byDate := make(map[time.Time]string)
	for _, e := range entries {
		// Later entries win, matching last-entry-per-date semantics.
		byDate[domain.Midnight(e.Date)] = e.Emoji
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) + 6) % 7 // Monday-first column offset

	var grid [][7]string
	var week [7]string
	col := lead
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		week[col] = byDate[date]
		col++
		if col == 7 {
			grid = append(grid, week)
			week = [7]string{}
			col = 0
		}
	}
	if col > 0 {
		grid = append(grid, week)
	}
	return grid
}

// MoodTrend averages the mood level per calendar day, in chronological
// order. The uniqueness invariant makes each day a single entry in
// practice, but duplicates in the snapshot are still averaged.
func MoodTrend(entries []domain.Entry) []DayPoint {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, e := range entries {
		d := domain.Midnight(e.Date)
		sums[d] += float64(e.Sentiment.MoodLevel())
		counts[d]++
	}

	points := make([]DayPoint, 0, len(sums))
	for d, sum := range sums {
		points = append(points, DayPoint{Day: d, AvgLevel: sum / float64(counts[d])})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Day.Before(points[j].Day)
	})
	return points
}

// Latest returns the most recent entry and false when entries is empty
func Latest(entries []domain.Entry) (domain.Entry, bool) {
	if len(entries) == 0 {
		return domain.Entry{}, false
	}
	latest := entries[0]
	for _, e := range entries[1:] {
		if e.Date.After(latest.Date) {
			latest = e
		}
	}
	return latest, true
}
