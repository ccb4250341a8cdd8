package history_test

import (
	"context"
	"testing"
	"time"

	"dubdeck/internal/config"
	"dubdeck/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := config.Default()
	cfg.History.Dir = t.TempDir()
	store, err := history.Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.Append(ctx, history.Record{
		ProjectID:       "p-1",
		Title:           "첫 번째",
		SourceType:      "file",
		SourceRef:       "clip.mp4",
		TargetLanguages: []string{"en", "ja"},
		Outcome:         history.OutcomeCompleted,
		CreatedAt:       time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first <= 0 {
		t.Fatalf("row id = %d", first)
	}

	if _, err := store.Append(ctx, history.Record{
		ProjectID:  "p-2",
		Title:      "두 번째",
		SourceType: "youtube",
		SourceRef:  "https://youtu.be/abc",
		Outcome:    history.OutcomeFailed,
		Detail:     "업로드 중 오류가 발생했습니다.",
		CreatedAt:  time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("append second: %v", err)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].ProjectID != "p-2" || records[1].ProjectID != "p-1" {
		t.Fatalf("order = %q, %q", records[0].ProjectID, records[1].ProjectID)
	}
	if got := records[1].TargetLanguages; len(got) != 2 || got[0] != "en" {
		t.Fatalf("targets = %v", got)
	}
	if records[0].Detail != "업로드 중 오류가 발생했습니다." {
		t.Fatalf("detail = %q", records[0].Detail)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Append(ctx, history.Record{
			ProjectID:  "p",
			Title:      "t",
			SourceType: "file",
			Outcome:    history.OutcomeCompleted,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d", len(records))
	}
}

func TestCountByOutcome(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	outcomes := []string{
		history.OutcomeCompleted,
		history.OutcomeCompleted,
		history.OutcomeFailed,
	}
	for _, outcome := range outcomes {
		if _, err := store.Append(ctx, history.Record{
			ProjectID:  "p",
			Title:      "t",
			SourceType: "file",
			Outcome:    outcome,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	completed, err := store.CountByOutcome(ctx, history.OutcomeCompleted)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if completed != 2 {
		t.Fatalf("completed = %d", completed)
	}
}

func TestSecondSessionIsRejected(t *testing.T) {
	cfg := config.Default()
	cfg.History.Dir = t.TempDir()

	first, err := history.Open(&cfg)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	defer first.Close()

	if _, err := history.Open(&cfg); err == nil {
		t.Fatal("expected lock conflict for second session")
	}
}
