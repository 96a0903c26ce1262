package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreAppendAndRecall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	turns := []Turn{
		{SessionID: "s1", UserID: "u1", Role: "user", Content: "how is RUHSM001 doing", CreatedAt: base},
		{SessionID: "s1", UserID: "u1", Role: "assistant", Content: "RUHSM001 looks healthy", CreatedAt: base.Add(time.Second)},
		{SessionID: "s2", UserID: "u1", Role: "user", Content: "city totals for 2025-11-14", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, turn := range turns {
		if err := store.AppendTurn(ctx, turn); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	got, err := store.RecentTurns(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 turns for s1, got %d", len(got))
	}
	if got[0].Content != "how is RUHSM001 doing" {
		t.Errorf("expected oldest turn first, got %q", got[0].Content)
	}

	got, err = store.RecentTurns(ctx, "s2", 0)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 turn for s2, got %d", len(got))
	}
}

func TestFileStoreCapsStoredTurns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 40; i++ {
		turn := Turn{
			SessionID: "s1",
			UserID:    "u1",
			Role:      "user",
			Content:   fmt.Sprintf("question %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendTurn(ctx, turn); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	got, err := store.RecentTurns(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(got) != maxStoredTurns {
		t.Fatalf("expected %d turns after cap, got %d", maxStoredTurns, len(got))
	}
	if got[0].Content != "question 25" {
		t.Errorf("expected oldest surviving turn to be question 25, got %q", got[0].Content)
	}
	if got[len(got)-1].Content != "question 39" {
		t.Errorf("expected newest turn to be question 39, got %q", got[len(got)-1].Content)
	}
}

func TestFileStoreLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		turn := Turn{
			SessionID: "s1",
			Role:      "user",
			Content:   fmt.Sprintf("question %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendTurn(ctx, turn); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	got, err := store.RecentTurns(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(got))
	}
	if got[0].Content != "question 7" || got[2].Content != "question 9" {
		t.Errorf("expected the 3 newest turns oldest first, got %q .. %q", got[0].Content, got[2].Content)
	}
}

func TestFileStoreNonPositiveLimitUsesCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	for i := 0; i < maxStoredTurns+5; i++ {
		turn := Turn{
			SessionID: "s1",
			Role:      "user",
			Content:   fmt.Sprintf("question %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendTurn(ctx, turn); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	for _, limit := range []int{0, -1} {
		got, err := store.RecentTurns(ctx, "s1", limit)
		if err != nil {
			t.Fatalf("RecentTurns(%d) failed: %v", limit, err)
		}
		if len(got) != maxStoredTurns {
			t.Errorf("RecentTurns(%d) returned %d turns, want %d", limit, len(got), maxStoredTurns)
		}
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	turn := Turn{
		SessionID: "s1",
		Role:      "user",
		Content:   "trips for 7612ABC",
		CreatedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
	}
	if err := store.AppendTurn(context.Background(), turn); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}
	store.Close()

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.RecentTurns(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(got) != 1 || got[0].Content != "trips for 7612ABC" {
		t.Fatalf("expected persisted turn after reopen, got %+v", got)
	}
}

func TestFileStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file failed: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore on corrupt file failed: %v", err)
	}
	defer store.Close()

	got, err := store.RecentTurns(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty store after corrupt load, got %d turns", len(got))
	}
}
