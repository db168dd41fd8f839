package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pchalerm/moodlog/internal/domain"
)

// header is the on-disk schema, one row per entry.
var header = []string{"id", "date", "text", "sentiment", "score", "emoji"}

// Store handles persistence of diary entries in a flat CSV table.
// Every operation reads the whole file; every mutation rewrites it.
// There is no cross-process locking: two processes racing on a save
// are last-writer-wins at the file level.
type Store struct {
	path string
}

// New creates a Store backed by the CSV file at path
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// LoadAll reads every entry from the table. A missing file is created
// empty with the schema header. Malformed rows are recovered
// best-effort: an unparsable date drops the row, an unparsable score
// defaults to 0.0, a blank id is repaired with a fresh one. If any row
// was repaired the file is rewritten immediately so the new identity
// survives a restart.
func (s *Store) LoadAll() ([]domain.Entry, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		if err := s.writeAll(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate short and long rows
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	var entries []domain.Entry
	repaired := false
	for i, rec := range records {
		if i == 0 && isHeader(rec) {
			continue
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}

		date, ok := domain.ParseDate(rec[1])
		if !ok {
			continue // bad date, drop the row
		}

		id := rec[0]
		if id == "" {
			id = uuid.New().String()
			repaired = true
		}

		score, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			score = 0.0
		}
		score = clamp01(score)

		// Legacy files hold raw classifier labels like "POSITIVE".
		sentiment := domain.NormalizeLabel(rec[3])
		emoji := rec[5]
		if emoji == "" {
			emoji = sentiment.Emoji()
		}

		entries = append(entries, domain.Entry{
			ID:        id,
			Date:      date,
			Text:      rec[2],
			Sentiment: sentiment,
			Score:     score,
			Emoji:     emoji,
		})
	}

	if repaired {
		if err := s.writeAll(entries); err != nil {
			return nil, fmt.Errorf("persist repaired ids: %w", err)
		}
	}

	return entries, nil
}

// Upsert inserts or replaces the entry for date. An existing entry
// keeps its id and gets new text, sentiment, score and emoji; a new
// date appends with a fresh id. The full table is rewritten.
func (s *Store) Upsert(date time.Time, text string, sentiment domain.Sentiment, score float64, emoji string) (domain.Entry, error) {
	entries, err := s.LoadAll()
	if err != nil {
		return domain.Entry{}, err
	}

	date = domain.Midnight(date)
	updated := domain.Entry{
		Date:      date,
		Text:      text,
		Sentiment: sentiment,
		Score:     clamp01(score),
		Emoji:     emoji,
	}

	found := false
	for i, e := range entries {
		if e.Date.Equal(date) {
			updated.ID = e.ID
			entries[i] = updated
			found = true
			break
		}
	}
	if !found {
		updated.ID = uuid.New().String()
		entries = append(entries, updated)
	}

	if err := s.writeAll(entries); err != nil {
		return domain.Entry{}, err
	}
	return updated, nil
}

// DeleteByID removes the entry with the given id and rewrites the
// table. An unknown id is a no-op, not an error.
func (s *Store) DeleteByID(id string) error {
	entries, err := s.LoadAll()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}

	return s.writeAll(kept)
}

// writeAll rewrites the whole table through a temp file and rename,
// so a single process cannot tear its own file mid-write.
func (s *Store) writeAll(entries []domain.Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".moodlog-*.csv")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		rec := []string{
			e.ID,
			domain.FormatDate(e.Date),
			e.Text,
			string(e.Sentiment),
			strconv.FormatFloat(e.Score, 'f', -1, 64),
			e.Emoji,
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp table: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && rec[0] == "id"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
