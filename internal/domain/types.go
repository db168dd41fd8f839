package domain

import (
	"strings"
	"time"
)

// Sentiment is the normalized polarity of a diary entry
type Sentiment string

const (
	Positive Sentiment = "pos"
	Neutral  Sentiment = "neu"
	Negative Sentiment = "neg"
)

// NormalizeLabel canonicalizes a classifier-native label into a Sentiment.
// Matching is a case-insensitive prefix check; anything unrecognized
// (including the empty string) degrades to Neutral.
func NormalizeLabel(raw string) Sentiment {
	label := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(label, "pos"):
		return Positive
	case strings.HasPrefix(label, "neg"):
		return Negative
	default:
		return Neutral
	}
}

// Emoji returns the display glyph for a sentiment
func (s Sentiment) Emoji() string {
	switch s {
	case Positive:
		return "😊"
	case Negative:
		return "😢"
	default:
		return "😐"
	}
}

// Weight maps a sentiment to its scaled-average weight
func (s Sentiment) Weight() float64 {
	switch s {
	case Positive:
		return 1.0
	case Negative:
		return 0.0
	default:
		return 0.5
	}
}

// MoodLevel maps a sentiment to its trend-chart level (neg 1, neu 2, pos 3)
func (s Sentiment) MoodLevel() int {
	switch s {
	case Positive:
		return 3
	case Negative:
		return 1
	default:
		return 2
	}
}

// Entry represents one diary record for a single calendar date
type Entry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
	Score     float64   `json:"score"`
	Emoji     string    `json:"emoji"`
}

// DateLayout is the canonical on-disk date format
const DateLayout = "2006-01-02"

// dateLayouts are accepted on load; legacy files carry timestamps.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate parses a calendar date, truncating any time component to
// midnight UTC. Returns false if no known layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Midnight(t), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date in the canonical layout
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates t to midnight UTC
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
