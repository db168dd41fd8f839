package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pchalerm/moodlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "diary_records.csv"))
}

func date(s string) time.Time {
	d, ok := domain.ParseDate(s)
	if !ok {
		panic("bad test date: " + s)
	}
	return d
}

func TestLoadAllCreatesMissingFile(t *testing.T) {
	s := testStore(t)

	entries, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The file now exists with just the header.
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "id,date,text,sentiment,score,emoji\n", string(data))
}

func TestUpsertInsertThenReplace(t *testing.T) {
	s := testStore(t)
	d := date("2024-03-10")

	first, err := s.Upsert(d, "rough day", domain.Negative, 0.9, domain.Negative.Emoji())
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	// Same date replaces in place, keeping the id.
	second, err := s.Upsert(d, "better by evening", domain.Positive, 0.7, domain.Positive.Emoji())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	entries, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "better by evening", entries[0].Text)
	assert.Equal(t, domain.Positive, entries[0].Sentiment)
	assert.Equal(t, 0.7, entries[0].Score)
	assert.Equal(t, "😊", entries[0].Emoji)
}

func TestUpsertDistinctDates(t *testing.T) {
	s := testStore(t)

	_, err := s.Upsert(date("2024-03-10"), "one", domain.Neutral, 0.5, "😐")
	require.NoError(t, err)
	_, err = s.Upsert(date("2024-03-11"), "two", domain.Neutral, 0.5, "😐")
	require.NoError(t, err)

	entries, err := s.LoadAll()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRoundTripUnicodeAndNewlines(t *testing.T) {
	s := testStore(t)
	text := "วันนี้ฝนตก\nbut I stayed in, \"cozy\" — café day ☕"

	saved, err := s.Upsert(date("2024-03-12"), text, domain.Positive, 0.81, "😊")
	require.NoError(t, err)

	entries, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, saved, entries[0])
}

func TestDeleteByIDIdempotent(t *testing.T) {
	s := testStore(t)

	e, err := s.Upsert(date("2024-03-10"), "bye", domain.Neutral, 0.5, "😐")
	require.NoError(t, err)

	require.NoError(t, s.DeleteByID(e.ID))
	entries, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Deleting again, and deleting an unknown id, are no-ops.
	require.NoError(t, s.DeleteByID(e.ID))
	require.NoError(t, s.DeleteByID("no-such-id"))
}

func writeRaw(t *testing.T, s *Store, rows [][]string) {
	t.Helper()
	f, err := os.Create(s.Path())
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())
}

func TestLoadAllDropsBadDates(t *testing.T) {
	s := testStore(t)
	writeRaw(t, s, [][]string{
		{"id", "date", "text", "sentiment", "score", "emoji"},
		{"a1", "2024-03-10", "kept", "pos", "0.8", "😊"},
		{"a2", "garbage", "dropped", "pos", "0.8", "😊"},
	})

	entries, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Text)
}

func TestLoadAllDefaultsBadScore(t *testing.T) {
	s := testStore(t)
	writeRaw(t, s, [][]string{
		{"id", "date", "text", "sentiment", "score", "emoji"},
		{"a1", "2024-03-10", "x", "pos", "not-a-number", "😊"},
		{"a2", "2024-03-11", "y", "pos", "1.7", "😊"},
	})

	entries, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 0.0, entries[0].Score)
	// Out-of-range scores clamp into [0,1].
	assert.Equal(t, 1.0, entries[1].Score)
}

func TestLoadAllRepairsMissingIDAndPersists(t *testing.T) {
	s := testStore(t)
	writeRaw(t, s, [][]string{
		{"id", "date", "text", "sentiment", "score", "emoji"},
		{"", "2024-03-10", "legacy row", "POSITIVE", "0.9", ""},
	})

	entries, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotEmpty(t, entries[0].ID)

	// Legacy raw labels normalize and the glyph is filled in.
	assert.Equal(t, domain.Positive, entries[0].Sentiment)
	assert.Equal(t, "😊", entries[0].Emoji)

	// The repaired id was written back: a second load sees the same id.
	again, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, entries[0].ID, again[0].ID)
}

func TestLoadAllToleratesShortRows(t *testing.T) {
	s := testStore(t)
	writeRaw(t, s, [][]string{
		{"id", "date", "text", "sentiment", "score", "emoji"},
		{"a1", "2024-03-10", "short row"},
	})

	entries, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.Neutral, entries[0].Sentiment)
	assert.Equal(t, 0.0, entries[0].Score)
}

func TestFreshLoadMatchesInMemoryState(t *testing.T) {
	s := testStore(t)

	want := make(map[string]domain.Entry)
	for _, day := range []string{"2024-03-10", "2024-03-11", "2024-03-12"} {
		e, err := s.Upsert(date(day), "entry for "+day, domain.Positive, 0.6, "😊")
		require.NoError(t, err)
		want[e.ID] = e
	}

	// A brand-new Store over the same file sees identical entries.
	fresh := New(s.Path())
	entries, err := fresh.LoadAll()
	require.NoError(t, err)
	require.Len(t, entries, len(want))
	for _, e := range entries {
		assert.Equal(t, want[e.ID], e)
	}
}
