package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func testData() *model.StageData {
	return &model.StageData{
		SourcePath:     "in.md",
		RawInput:       []byte("# Title\n\nHello."),
		DetectedFormat: model.FormatMarkdown,
	}
}

// TestStoreSaveAndLoad verifies the save/load round trip.
func TestStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	cfg := config.NewConfig()

	path, err := store.Save(model.StageIngestion, testData(), nil, cfg, []string{model.StageIngestion})
	if err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected checkpoint file to exist: %v", err)
	}

	cp, err := store.Load("")
	if err != nil {
		t.Fatalf("failed to load latest checkpoint: %v", err)
	}

	if cp.Stage != model.StageIngestion {
		t.Errorf("expected stage 'ingestion', got %q", cp.Stage)
	}
	if cp.ID == "" {
		t.Error("expected a non-empty checkpoint ID")
	}
	if string(cp.Data.RawInput) != "# Title\n\nHello." {
		t.Errorf("expected raw input to round-trip, got %q", cp.Data.RawInput)
	}
	if cp.Data.DetectedFormat != model.FormatMarkdown {
		t.Errorf("expected format markdown, got %q", cp.Data.DetectedFormat)
	}
	if len(cp.StagesCompleted) != 1 || cp.StagesCompleted[0] != model.StageIngestion {
		t.Errorf("expected completed stages [ingestion], got %v", cp.StagesCompleted)
	}
}

// TestStoreLoadByID verifies loading a specific checkpoint.
func TestStoreLoadByID(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	cfg := config.NewConfig()

	if _, err := store.Save(model.StageIngestion, testData(), nil, cfg, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(model.StageExtraction, testData(), nil, cfg, nil); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 checkpoints, got %d", len(entries))
	}

	// List is newest first; load the older one by ID.
	older := entries[1]
	cp, err := store.Load(older.ID)
	if err != nil {
		t.Fatalf("failed to load by ID: %v", err)
	}
	if cp.ID != older.ID {
		t.Errorf("expected ID %q, got %q", older.ID, cp.ID)
	}
}

// TestStoreLoadNotFound verifies missing checkpoints return ErrNotFound.
func TestStoreLoadNotFound(t *testing.T) {
	t.Parallel()

	t.Run("unknown ID", func(t *testing.T) {
		t.Parallel()
		store := testStore(t)
		if _, err := store.Load("no-such-id"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty store latest", func(t *testing.T) {
		t.Parallel()
		store := testStore(t)
		if _, err := store.Load(""); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestStoreLatest verifies Latest returns the newest checkpoint or nil.
func TestStoreLatest(t *testing.T) {
	t.Parallel()

	store := testStore(t)

	cp, err := store.Latest()
	if err != nil {
		t.Fatalf("expected no error on empty store, got %v", err)
	}
	if cp != nil {
		t.Fatal("expected nil checkpoint for empty store")
	}

	cfg := config.NewConfig()
	if _, err := store.Save(model.StageIngestion, testData(), nil, cfg, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(model.StageExtraction, testData(), nil, cfg, nil); err != nil {
		t.Fatal(err)
	}

	cp, err = store.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if cp == nil || cp.Stage != model.StageExtraction {
		t.Errorf("expected latest checkpoint for extraction, got %+v", cp)
	}
}

// TestStoreForStage verifies stage-filtered lookup.
func TestStoreForStage(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	cfg := config.NewConfig()

	if _, err := store.Save(model.StageIngestion, testData(), nil, cfg, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(model.StageExtraction, testData(), nil, cfg, nil); err != nil {
		t.Fatal(err)
	}

	t.Run("existing stage", func(t *testing.T) {
		t.Parallel()
		cp, err := store.ForStage(model.StageIngestion)
		if err != nil {
			t.Fatal(err)
		}
		if cp == nil || cp.Stage != model.StageIngestion {
			t.Errorf("expected ingestion checkpoint, got %+v", cp)
		}
	})

	t.Run("missing stage returns nil", func(t *testing.T) {
		t.Parallel()
		cp, err := store.ForStage(model.StageGeneration)
		if err != nil {
			t.Fatal(err)
		}
		if cp != nil {
			t.Errorf("expected nil, got %+v", cp)
		}
	})
}

// TestStoreCleanup verifies the retention policy deletes old checkpoints.
func TestStoreCleanup(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	cfg := config.NewConfig()

	for range 5 {
		if _, err := store.Save(model.StageIngestion, testData(), nil, cfg, nil); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Cleanup(2); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 checkpoints after cleanup, got %d", len(entries))
	}

	// The surviving files must exist, the rest must be gone.
	files, err := filepath.Glob(filepath.Join(store.Dir(), "2*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 checkpoint files on disk, got %d", len(files))
	}
}

// TestLoadFileCorrupt verifies corrupted checkpoints are detected.
func TestLoadFileCorrupt(t *testing.T) {
	t.Parallel()

	t.Run("invalid JSON", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); !errors.Is(err, ErrCorrupt) {
			t.Errorf("expected ErrCorrupt, got %v", err)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "empty.json")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); !errors.Is(err, ErrCorrupt) {
			t.Errorf("expected ErrCorrupt, got %v", err)
		}
	})

	t.Run("unknown stage", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "future.json")
		payload := `{"checkpoint_id":"x","stage":"polish","stage_data":{"source_path":"in.md"}}`
		if err := os.WriteFile(path, []byte(payload), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); !errors.Is(err, ErrCorrupt) {
			t.Errorf("expected ErrCorrupt for an unrecognized stage, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

// TestDirForInput verifies per-input directory derivation is stable and
// collision-free across distinct inputs.
func TestDirForInput(t *testing.T) {
	t.Parallel()

	root := "/data/checkpoints"

	a1 := DirForInput(root, "a.md")
	a2 := DirForInput(root, "a.md")
	b := DirForInput(root, "b.md")

	if a1 != a2 {
		t.Errorf("expected stable directory for same input, got %q and %q", a1, a2)
	}
	if a1 == b {
		t.Error("expected different directories for different inputs")
	}
	if !strings.HasPrefix(filepath.Base(a1), "run-") {
		t.Errorf("expected run- prefix, got %q", filepath.Base(a1))
	}
}
