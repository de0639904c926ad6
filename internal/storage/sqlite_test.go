package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "kotae.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogSuggestion(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	record := &models.SuggestionRecord{
		ID:               "req-1",
		Question:         "보증금은 왜 필요한가요?",
		TopIntentID:      "deposit_info",
		TopConfidencePct: 91,
		Verdict:          models.VerdictStrong,
		Source:           "baseline",
		RemoteStatus:     models.RemoteSkipped,
		QueryTime:        12,
	}
	if err := s.LogSuggestion(ctx, record); err != nil {
		t.Fatalf("LogSuggestion: %v", err)
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt should be filled in")
	}

	count, err := s.CountSuggestions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count: %d", count)
	}
}

func TestRecentSuggestions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, q := range []string{"첫번째 질문", "두번째 질문", "세번째 질문"} {
		record := &models.SuggestionRecord{
			ID:           string(rune('a' + i)),
			Question:     q,
			TopIntentID:  "deposit_info",
			Verdict:      models.VerdictNormal,
			Source:       "gemini",
			RemoteStatus: models.RemoteOK,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.LogSuggestion(ctx, record); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		records, err := s.RecentSuggestions(ctx, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records", len(records))
		}
		if records[0].Question != "세번째 질문" {
			t.Errorf("first record: %s", records[0].Question)
		}
		if records[0].Verdict != models.VerdictNormal || records[0].RemoteStatus != models.RemoteOK {
			t.Errorf("record fields: %+v", records[0])
		}
	})

	t.Run("limit respected", func(t *testing.T) {
		records, err := s.RecentSuggestions(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 {
			t.Errorf("got %d records", len(records))
		}
	})

	t.Run("non-positive limit uses default", func(t *testing.T) {
		records, err := s.RecentSuggestions(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 3 {
			t.Errorf("got %d records", len(records))
		}
	})
}

func TestRecentSuggestions_Empty(t *testing.T) {
	s := newTestStorage(t)

	records, err := s.RecentSuggestions(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records", len(records))
	}
}
