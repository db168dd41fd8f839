package classifier

import "context"

// Result holds the classifier-native output for one text: the raw
// label (not pre-normalized) and the model's confidence for it.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier scores a text for sentiment polarity. Implementations are
// synchronous and may be slow (model inference); they should be
// constructed once per process and reused.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
