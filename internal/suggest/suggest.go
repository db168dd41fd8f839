// Package suggest picks a short wellbeing message for an analyzed
// entry. Selection within a pool is random on purpose; callers that
// need determinism inject a seeded source.
package suggest

import (
	"math/rand"

	"github.com/pchalerm/moodlog/internal/domain"
)

// strongNegative is the confidence at which a negative entry draws
// from the comfort pool instead of the general negative one.
const strongNegative = 0.6

var positivePool = []string{
	"Write down a gratitude list to hold on to this feeling.",
	"Share today's good news with someone you care about.",
	"Take a moment to note what made today work, so you can repeat it.",
}

var neutralPool = []string{
	"Take a short walk outside, nature helps reset the mind.",
	"Try a five-minute stretch break between tasks.",
	"Put on a song you like and do nothing else for its length.",
}

var negativePool = []string{
	"Listen to some calm music and let yourself unwind.",
	"Write one more line about what weighed on you, then close the book.",
	"A warm drink and an early night can do more than it sounds.",
}

var comfortPool = []string{
	"That sounds heavy. Listen to something soothing and be gentle with yourself.",
	"Consider reaching out to a friend tonight, you don't have to carry this alone.",
	"Step away from screens for a while and breathe slowly for a minute.",
}

// Suggester selects messages using an injected randomness source
type Suggester struct {
	rng *rand.Rand
}

// New creates a Suggester drawing from rng
func New(rng *rand.Rand) *Suggester {
	return &Suggester{rng: rng}
}

// For returns a message for the given analyzed sentiment and score.
// Output is not repeatable for the same input.
func (s *Suggester) For(sentiment domain.Sentiment, score float64) string {
	pool := Pool(sentiment, score)
	return pool[s.rng.Intn(len(pool))]
}

// Pool returns the candidate messages For draws from, so tests can
// assert membership instead of exact output.
func Pool(sentiment domain.Sentiment, score float64) []string {
	switch {
	case sentiment == domain.Negative && score >= strongNegative:
		return comfortPool
	case sentiment == domain.Negative:
		return negativePool
	case sentiment == domain.Positive:
		return positivePool
	default:
		return neutralPool
	}
}
