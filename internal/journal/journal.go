// Package journal composes the entry store with the sentiment
// classifier. It is the only write path into the diary.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pchalerm/moodlog/internal/classifier"
	"github.com/pchalerm/moodlog/internal/domain"
	"github.com/pchalerm/moodlog/internal/store"
)

// ErrEmptyText rejects a save of empty or whitespace-only text
var ErrEmptyText = errors.New("entry text is empty")

// Journal owns analyze-and-save. The classifier is injected once at
// construction; model initialization is expensive and must not repeat
// per request.
type Journal struct {
	store *store.Store
	clf   classifier.Classifier
}

// New creates a Journal over the given store and classifier
func New(s *store.Store, clf classifier.Classifier) *Journal {
	return &Journal{store: s, clf: clf}
}

// AnalyzeAndSave classifies text, normalizes the label and upserts the
// entry for date. A second save for the same date replaces the entry
// in place, keeping its id.
func (j *Journal) AnalyzeAndSave(ctx context.Context, date time.Time, text string) (domain.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Entry{}, ErrEmptyText
	}

	res, err := j.clf.Classify(ctx, text)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("classify entry: %w", err)
	}

	sentiment := domain.NormalizeLabel(res.Label)
	entry, err := j.store.Upsert(date, text, sentiment, res.Score, sentiment.Emoji())
	if err != nil {
		return domain.Entry{}, fmt.Errorf("save entry: %w", err)
	}
	return entry, nil
}
