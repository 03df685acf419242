package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"artfiler/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := history.Entry{
		Pipeline:   "download",
		Link:       "https://www.artstation.com/artwork/abc",
		Author:     "jane",
		SourcePath: "/tmp/stage/pic.png",
		FinalPath:  "/library/jane_artstation/pic.png",
		SHA256:     "deadbeef",
		Outcome:    "moved",
	}
	if err := store.Record(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := first
	second.FinalPath = "/library/jane_artstation/pic_1.png"
	second.Outcome = "duplicate"
	if err := store.Record(ctx, second); err != nil {
		t.Fatal(err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Outcome != "duplicate" {
		t.Fatalf("newest first expected, got %q", entries[0].Outcome)
	}
	if entries[1].Author != "jane" {
		t.Fatalf("author = %q", entries[1].Author)
	}
	if entries[0].OccurredAt.IsZero() {
		t.Fatal("occurred_at not populated")
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry := history.Entry{
			Pipeline:   "move",
			SourcePath: "/src",
			FinalPath:  "/dst",
			Outcome:    "moved",
			OccurredAt: time.Now().UTC(),
		}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
}

func TestReopenSurvivesRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(context.Background(), history.Entry{Pipeline: "download", SourcePath: "/a", FinalPath: "/b", Outcome: "moved"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := history.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	entries, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries after reopen, want 1", len(entries))
	}
}
