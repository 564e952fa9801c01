package checkpoint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/model"
)

// indexFileName is the name of the index file inside a store directory.
const indexFileName = "index.json"

// timestampLayout is the layout for checkpoint IDs and file names.
// Lexicographic order equals chronological order.
const timestampLayout = "20060102T150405.000000000"

// Checkpoint is a persisted snapshot of pipeline state taken after a
// successful stage. Immutable once written.
type Checkpoint struct {
	// ID uniquely identifies the checkpoint: creation timestamp plus a
	// short content hash of the serialized state.
	ID string `json:"checkpoint_id"`

	// Stage is the name of the stage that completed before this snapshot.
	Stage string `json:"stage"`

	// Timestamp is when the checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Data is the full stage data snapshot.
	Data *model.StageData `json:"stage_data"`

	// StageResults are the per-stage outcomes accumulated so far.
	StageResults []model.StageResult `json:"stage_results"`

	// Config is a snapshot of the run configuration.
	Config *config.Config `json:"config"`

	// StagesCompleted lists the names of completed stages in order.
	StagesCompleted []string `json:"stages_completed"`
}

// IndexEntry describes one checkpoint in the index file.
type IndexEntry struct {
	ID        string    `json:"checkpoint_id"`
	Stage     string    `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// Store persists checkpoints in a single directory.
//
// Design decision: One directory per run, derived from the input path
// hash (see DirForInput), so concurrently running pipelines never contend
// on the same index file and no cross-process locking is needed.
type Store struct {
	// dir is the store directory.
	dir string

	// logger is used for non-fatal store events (cleanup failures).
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore opens or creates a checkpoint store at dir.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// DirForInput derives the per-run store directory for an input path:
// root/run-<12 hex chars of SHA3-256(absolute input path)>. The hash is
// over the path, not the content, so resumed runs on the same input find
// their earlier checkpoints.
func DirForInput(root, inputPath string) string {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		abs = inputPath
	}
	sum := sha3.Sum256([]byte(abs))
	return filepath.Join(root, fmt.Sprintf("run-%x", sum[:6]))
}

// Save writes a checkpoint for the given stage and updates the index.
// Returns the checkpoint file path.
func (s *Store) Save(stage string, data *model.StageData, results []model.StageResult, cfg *config.Config, completed []string) (string, error) {
	now := time.Now().UTC()

	cp := &Checkpoint{
		Stage:           stage,
		Timestamp:       now,
		Data:            data,
		StageResults:    results,
		Config:          cfg,
		StagesCompleted: completed,
	}

	// The ID embeds a short hash of the serialized payload so two
	// checkpoints created in the same instant cannot collide.
	payload, err := json.Marshal(cp)
	if err != nil {
		return "", fmt.Errorf("failed to serialize checkpoint: %w", err)
	}
	sum := sha3.Sum256(payload)
	cp.ID = fmt.Sprintf("%s-%x", now.Format(timestampLayout), sum[:4])

	path := filepath.Join(s.dir, cp.ID+".json")

	final, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize checkpoint: %w", err)
	}
	if err := writeFileAtomic(path, final); err != nil {
		return "", fmt.Errorf("failed to write checkpoint: %w", err)
	}

	// Update the index after the checkpoint file is durable. A crash
	// between the two writes leaves an unindexed file, which cleanup
	// ignores and Load by ID still finds nothing stale.
	index, err := s.readIndex()
	if err != nil {
		return "", err
	}
	index = append(index, IndexEntry{
		ID:        cp.ID,
		Stage:     cp.Stage,
		Timestamp: cp.Timestamp,
		Path:      path,
	})
	if err := s.writeIndex(index); err != nil {
		return "", err
	}

	return path, nil
}

// Load reads a checkpoint by ID. An empty ID loads the latest checkpoint.
// Returns ErrNotFound when no matching checkpoint exists and ErrCorrupt
// when the file cannot be decoded.
func (s *Store) Load(id string) (*Checkpoint, error) {
	if id == "" {
		cp, err := s.Latest()
		if err != nil {
			return nil, err
		}
		if cp == nil {
			return nil, fmt.Errorf("%w: store is empty", ErrNotFound)
		}
		return cp, nil
	}

	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	for _, entry := range index {
		if entry.ID == id {
			return LoadFile(entry.Path)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// LoadFile reads a checkpoint directly from a file path. Used for the
// --resume-checkpoint flag, which takes a path rather than an ID.
func LoadFile(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided checkpoint path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if cp.ID == "" || cp.Stage == "" || cp.Data == nil {
		return nil, fmt.Errorf("%w: %s: missing required fields", ErrCorrupt, path)
	}
	if !model.ValidStage(cp.Stage) {
		return nil, fmt.Errorf("%w: %s: unknown stage %q", ErrCorrupt, path, cp.Stage)
	}

	return &cp, nil
}

// Latest returns the most recently created checkpoint, or nil when the
// store is empty.
func (s *Store) Latest() (*Checkpoint, error) {
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, nil
	}

	latest := index[0]
	for _, entry := range index[1:] {
		if entry.Timestamp.After(latest.Timestamp) {
			latest = entry
		}
	}
	return LoadFile(latest.Path)
}

// ForStage returns the most recent checkpoint written after the named
// stage, or nil when no such checkpoint exists.
func (s *Store) ForStage(stage string) (*Checkpoint, error) {
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}

	var best *IndexEntry
	for i := range index {
		if index[i].Stage != stage {
			continue
		}
		if best == nil || index[i].Timestamp.After(best.Timestamp) {
			best = &index[i]
		}
	}
	if best == nil {
		return nil, nil
	}
	return LoadFile(best.Path)
}

// List returns all index entries sorted by creation time, newest first.
func (s *Store) List() ([]IndexEntry, error) {
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	sort.Slice(index, func(i, j int) bool {
		return index[i].Timestamp.After(index[j].Timestamp)
	})
	return index, nil
}

// Cleanup deletes all but the keepLatest most recently created
// checkpoints. Deletion failures are logged and skipped, never fatal:
// a stale checkpoint file wastes disk space but breaks nothing.
func (s *Store) Cleanup(keepLatest int) error {
	if keepLatest < 0 {
		keepLatest = 0
	}

	index, err := s.readIndex()
	if err != nil {
		return err
	}
	if len(index) <= keepLatest {
		return nil
	}

	sort.Slice(index, func(i, j int) bool {
		return index[i].Timestamp.After(index[j].Timestamp)
	})

	kept := index[:keepLatest]
	for _, entry := range index[keepLatest:] {
		if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to delete checkpoint",
				"checkpoint", entry.ID,
				"path", entry.Path,
				"error", err,
			)
			// Keep the entry in the index so a later cleanup retries.
			kept = append(kept, entry)
		}
	}

	return s.writeIndex(kept)
}

// readIndex loads the index file. A missing index means an empty store.
func (s *Store) readIndex() ([]IndexEntry, error) {
	path := filepath.Join(s.dir, indexFileName)
	data, err := os.ReadFile(path) //nolint:gosec // Path is store-internal
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint index: %w", err)
	}

	var index []IndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: index: %v", ErrCorrupt, err)
	}
	return index, nil
}

// writeIndex persists the index file atomically.
func (s *Store) writeIndex(index []IndexEntry) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint index: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, indexFileName), data); err != nil {
		return fmt.Errorf("failed to write checkpoint index: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to path via a temp file and rename, so a
// crash mid-write never leaves a half-written checkpoint or index.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()          //nolint:errcheck // Best effort cleanup
		_ = os.Remove(tmpName)   //nolint:errcheck // Best effort cleanup
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // Best effort cleanup
		return err
	}
	return os.Rename(tmpName, path)
}
