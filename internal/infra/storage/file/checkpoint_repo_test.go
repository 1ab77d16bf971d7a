package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vietddude/watermark/internal/infra/storage"
)

func newTestRepo(t *testing.T) *CheckpointRepo {
	t.Helper()
	return NewCheckpointRepo(filepath.Join(t.TempDir(), "checkpoint.txt"))
}

func TestLoadMissingFile(t *testing.T) {
	repo := newTestRepo(t)

	ts, err := repo.Load(context.Background(), "default")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ts != nil {
		t.Errorf("expected no checkpoint, got %v", ts)
	}
}

func TestLoadBlankFile(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.WriteFile(repo.Path(), []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ts, err := repo.Load(context.Background(), "default")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ts != nil {
		t.Errorf("expected no checkpoint, got %v", ts)
	}
}

func TestLoadNaiveTimestamp(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.WriteFile(repo.Path(), []byte("2025-10-26T11:00:00"), 0o644); err != nil {
		t.Fatal(err)
	}

	ts, err := repo.Load(context.Background(), "default")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := time.Date(2025, 10, 26, 11, 0, 0, 0, time.UTC)
	if ts == nil || !ts.Equal(want) {
		t.Errorf("Load = %v, want %v", ts, want)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.WriteFile(repo.Path(), []byte("not-a-time"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := repo.Load(context.Background(), "default")
	if !errors.Is(err, storage.ErrCheckpointParse) {
		t.Fatalf("expected ErrCheckpointParse, got %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := time.Date(2025, 10, 25, 10, 0, 0, 0, time.UTC)
	second := time.Date(2025, 10, 26, 11, 0, 0, 0, time.UTC)

	if err := repo.Save(ctx, "default", first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, "default", second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(repo.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "2025-10-26T11:00:00Z" {
		t.Errorf("file contents = %q, want single timestamp", data)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(repo.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the checkpoint file, found %d entries", len(entries))
	}
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Clear(ctx, "default"); err != nil {
		t.Fatalf("Clear on missing file failed: %v", err)
	}
	if err := repo.Save(ctx, "default", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := repo.Clear(ctx, "default"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	ts, err := repo.Load(ctx, "default")
	if err != nil {
		t.Fatal(err)
	}
	if ts != nil {
		t.Errorf("expected no checkpoint after Clear, got %v", ts)
	}
}
