package janitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skillsenselab/audtext/storage/local"
)

func TestJanitor_Sweep(t *testing.T) {
	dir := t.TempDir()
	files, err := local.NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"uploads/old.mp3", "uploads/fresh.mp3"} {
		if err := files.Upload(ctx, name, strings.NewReader("x")); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
	}

	// Age one file past the cutoff.
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "uploads", "old.mp3"), stale, stale); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	j := New(Config{MaxAge: 24 * time.Hour}, files)
	removed := j.Sweep(ctx)

	if removed != 1 {
		t.Errorf("expected 1 file swept, got %d", removed)
	}
	if exists, _ := files.Exists(ctx, "uploads/old.mp3"); exists {
		t.Error("expected stale file removed")
	}
	if exists, _ := files.Exists(ctx, "uploads/fresh.mp3"); !exists {
		t.Error("expected fresh file kept")
	}
}

func TestJanitor_StartStop(t *testing.T) {
	files, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}

	j := New(Config{Schedule: "@every 1h"}, files)
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
