package aggregate

import (
	"testing"
	"time"

	"github.com/pchalerm/moodlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(day string, s domain.Sentiment, score float64) domain.Entry {
	d, ok := domain.ParseDate(day)
	if !ok {
		panic("bad test date: " + day)
	}
	return domain.Entry{
		ID:        "id-" + day,
		Date:      d,
		Text:      "text",
		Sentiment: s,
		Score:     score,
		Emoji:     s.Emoji(),
	}
}

func day(s string) time.Time {
	d, _ := domain.ParseDate(s)
	return d
}

func TestWeekStart(t *testing.T) {
	// 2024-01-01 is a Monday.
	assert.Equal(t, day("2024-01-01"), WeekStart(day("2024-01-01")))
	assert.Equal(t, day("2024-01-01"), WeekStart(day("2024-01-04")))
	assert.Equal(t, day("2024-01-01"), WeekStart(day("2024-01-07"))) // Sunday
	assert.Equal(t, day("2024-01-08"), WeekStart(day("2024-01-08")))
}

func TestWeeklyAverageScore(t *testing.T) {
	entries := []domain.Entry{
		entry("2024-01-01", domain.Positive, 0.8),
		entry("2024-01-02", domain.Positive, 0.6),
	}

	buckets := WeeklyAverageScore(entries)
	require.Len(t, buckets, 1)
	assert.Equal(t, day("2024-01-01"), buckets[0].WeekStart)
	assert.InDelta(t, 0.7, buckets[0].AvgScore, 1e-9)
}

func TestWeeklyAverageScoreChronological(t *testing.T) {
	entries := []domain.Entry{
		entry("2024-01-10", domain.Neutral, 0.5),
		entry("2024-01-01", domain.Positive, 0.9),
		entry("2024-01-22", domain.Negative, 0.4),
	}

	buckets := WeeklyAverageScore(entries)
	require.Len(t, buckets, 3)
	assert.Equal(t, day("2024-01-01"), buckets[0].WeekStart)
	assert.Equal(t, day("2024-01-08"), buckets[1].WeekStart)
	assert.Equal(t, day("2024-01-22"), buckets[2].WeekStart)
}

func TestWindowPolicies(t *testing.T) {
	// 2024-01-18 is a Thursday.
	today := day("2024-01-18")

	assert.Equal(t, day("2024-01-12"), Rolling7Start(today))
	assert.Equal(t, day("2024-01-15"), ISOWeekStart(today))
}

func TestRecentWindow(t *testing.T) {
	entries := []domain.Entry{
		entry("2024-01-10", domain.Neutral, 0.5),
		entry("2024-01-15", domain.Positive, 0.9),
		entry("2024-01-18", domain.Negative, 0.7),
	}

	recent := RecentWindow(entries, day("2024-01-15"))
	require.Len(t, recent, 2)
	assert.Equal(t, day("2024-01-15"), recent[0].Date)
	assert.Equal(t, day("2024-01-18"), recent[1].Date)
}

func TestScaledSentimentAverage(t *testing.T) {
	entries := []domain.Entry{
		entry("2024-01-01", domain.Positive, 0.9),
		entry("2024-01-02", domain.Positive, 0.9),
		entry("2024-01-03", domain.Negative, 0.9),
		entry("2024-01-04", domain.Neutral, 0.9),
	}

	assert.InDelta(t, 0.625, ScaledSentimentAverage(entries), 1e-9)
	assert.Equal(t, 0.0, ScaledSentimentAverage(nil))
}

func TestCalendarMoodMap(t *testing.T) {
	entries := []domain.Entry{
		entry("2024-01-15", domain.Positive, 0.9),
	}

	grid := CalendarMoodMap(entries, 2024, time.January)
	// January 2024 starts on a Monday and spans 5 week rows.
	require.Len(t, grid, 5)

	for wi, week := range grid {
		for di, cell := range week {
			// Day 15 is the Monday of the third row.
			if wi == 2 && di == 0 {
				assert.Equal(t, "😊", cell)
			} else {
				assert.Empty(t, cell)
			}
		}
	}
}

func TestCalendarMoodMapLeadingOffset(t *testing.T) {
	// March 2024 starts on a Friday.
	entries := []domain.Entry{
		entry("2024-03-01", domain.Negative, 0.8),
	}

	grid := CalendarMoodMap(entries, 2024, time.March)
	require.NotEmpty(t, grid)
	assert.Equal(t, "😢", grid[0][4])
	assert.Empty(t, grid[0][0])
}

func TestMoodTrend(t *testing.T) {
	entries := []domain.Entry{
		entry("2024-01-03", domain.Positive, 0.9),
		entry("2024-01-01", domain.Negative, 0.8),
		entry("2024-01-02", domain.Neutral, 0.5),
	}

	points := MoodTrend(entries)
	require.Len(t, points, 3)

	// Chronological, not insertion, order.
	assert.Equal(t, day("2024-01-01"), points[0].Day)
	assert.Equal(t, 1.0, points[0].AvgLevel)
	assert.Equal(t, 2.0, points[1].AvgLevel)
	assert.Equal(t, 3.0, points[2].AvgLevel)
}

func TestMoodTrendAveragesDuplicateDays(t *testing.T) {
	dup := entry("2024-01-01", domain.Positive, 0.9)
	entries := []domain.Entry{
		entry("2024-01-01", domain.Negative, 0.8),
		dup,
	}

	points := MoodTrend(entries)
	require.Len(t, points, 1)
	assert.Equal(t, 2.0, points[0].AvgLevel)
}

func TestLatest(t *testing.T) {
	_, ok := Latest(nil)
	assert.False(t, ok)

	entries := []domain.Entry{
		entry("2024-01-03", domain.Positive, 0.9),
		entry("2024-01-10", domain.Negative, 0.8),
		entry("2024-01-05", domain.Neutral, 0.5),
	}

	last, ok := Latest(entries)
	require.True(t, ok)
	assert.Equal(t, day("2024-01-10"), last.Date)
}
