package manifest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/deckforge/deckforge/internal/model"
)

// TestCreateProvenance verifies the provenance record is computed once.
func TestCreateProvenance(t *testing.T) {
	t.Parallel()

	tr := NewTracker("run-1")
	tr.CreateProvenance("in.md", []byte("# Hello"), model.FormatMarkdown)

	p := tr.Manifest().Provenance
	if p == nil {
		t.Fatal("expected provenance to be set")
	}
	if p.SourcePath != "in.md" {
		t.Errorf("expected source path 'in.md', got %q", p.SourcePath)
	}
	if p.SourceSize != int64(len("# Hello")) {
		t.Errorf("expected source size %d, got %d", len("# Hello"), p.SourceSize)
	}
	if p.SourceHash == "" {
		t.Error("expected a non-empty source hash")
	}
	if p.Format != "markdown" {
		t.Errorf("expected format 'markdown', got %q", p.Format)
	}
	if p.PipelineVersion != PipelineVersion {
		t.Errorf("expected pipeline version %q, got %q", PipelineVersion, p.PipelineVersion)
	}

	// A second call must not overwrite the original record.
	tr.CreateProvenance("other.md", []byte("different"), model.FormatHTML)
	if tr.Manifest().Provenance.SourcePath != "in.md" {
		t.Error("expected provenance to stay immutable after first call")
	}
}

// TestRecordStep verifies step accumulation and counter updates.
func TestRecordStep(t *testing.T) {
	t.Parallel()

	tr := NewTracker("run-1")
	tr.RecordStep(model.StageResult{
		Name:     model.StageIngestion,
		Success:  true,
		Attempts: 1,
		Warnings: []string{"w1"},
	})
	tr.RecordStep(model.StageResult{
		Name:     model.StageExtraction,
		Success:  false,
		Attempts: 3,
		Errors:   []string{"e1", "e2"},
	})

	m := tr.Manifest()
	if len(m.ProcessingSteps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(m.ProcessingSteps))
	}
	if got := m.ProcessingLog.StagesCompleted; len(got) != 1 || got[0] != model.StageIngestion {
		t.Errorf("expected only successful stages in completed list, got %v", got)
	}
	if m.ProcessingLog.Warnings != 1 {
		t.Errorf("expected 1 warning, got %d", m.ProcessingLog.Warnings)
	}
	if m.ProcessingLog.Errors != 2 {
		t.Errorf("expected 2 errors, got %d", m.ProcessingLog.Errors)
	}
	if m.ProcessingSteps[1].Attempts != 3 {
		t.Errorf("expected 3 attempts recorded, got %d", m.ProcessingSteps[1].Attempts)
	}
}

// TestRecordCollaborator verifies deduplication with stable order.
func TestRecordCollaborator(t *testing.T) {
	t.Parallel()

	tr := NewTracker("run-1")
	tr.RecordCollaborator("builtin-extractor")
	tr.RecordCollaborator("builtin-transformer")
	tr.RecordCollaborator("builtin-extractor")
	tr.RecordCollaborator("")

	got := tr.Manifest().ProcessingLog.Collaborators
	want := []string{"builtin-extractor", "builtin-transformer"}
	if len(got) != len(want) {
		t.Fatalf("expected %d collaborators, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected collaborator %d to be %q, got %q", i, want[i], got[i])
		}
	}
}

// TestSetQuality verifies the severity-weighted score.
func TestSetQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		issues []model.Issue
		want   float64
	}{
		{
			name: "clean report scores 1.0",
			want: 1.0,
		},
		{
			name: "one medium issue",
			issues: []model.Issue{
				{Severity: model.SeverityMedium},
			},
			want: 0.9,
		},
		{
			name: "mixed issues",
			issues: []model.Issue{
				{Severity: model.SeverityHigh},
				{Severity: model.SeverityLow},
			},
			want: 0.7,
		},
		{
			name: "score clamps at zero",
			issues: []model.Issue{
				{Severity: model.SeverityCritical},
				{Severity: model.SeverityCritical},
				{Severity: model.SeverityCritical},
			},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := NewTracker("run-1")
			tr.SetQuality(&model.ValidationReport{Passed: true, Issues: tt.issues})

			q := tr.Manifest().Quality
			if q == nil {
				t.Fatal("expected quality to be set")
			}
			if diff := q.Score - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected score %f, got %f", tt.want, q.Score)
			}
		})
	}
}

// TestFinalizeIdempotent verifies the second finalize is a no-op.
func TestFinalizeIdempotent(t *testing.T) {
	t.Parallel()

	tr := NewTracker("run-1")
	tr.Finalize(true, 2*time.Second)

	if !tr.Finalized() {
		t.Fatal("expected tracker to be finalized")
	}

	tr.Finalize(false, 10*time.Second)

	m := tr.Manifest()
	if !m.Success {
		t.Error("expected success verdict to survive double finalization")
	}
	if m.ProcessingLog.Duration != 2*time.Second {
		t.Errorf("expected duration 2s, got %v", m.ProcessingLog.Duration)
	}
}

// TestSaveAndLoad verifies the manifest file round trip.
func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	tr := NewTracker("run-42")
	tr.CreateProvenance("in.md", []byte("# Hi"), model.FormatMarkdown)
	tr.SetOutput("out.deck.json", 128)
	tr.SetSlidesProduced(3)
	tr.Finalize(true, time.Second)

	path := filepath.Join(t.TempDir(), "nested", "out.deck.json_manifest.json")
	if err := tr.Save(path); err != nil {
		t.Fatalf("failed to save manifest: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load manifest: %v", err)
	}

	if m.RunID != "run-42" {
		t.Errorf("expected run ID 'run-42', got %q", m.RunID)
	}
	if !m.Success {
		t.Error("expected success to be true")
	}
	if m.Output == nil || m.Output.SizeBytes != 128 {
		t.Errorf("expected output size 128, got %+v", m.Output)
	}
	if m.ProcessingLog.SlidesProduced != 3 {
		t.Errorf("expected 3 slides produced, got %d", m.ProcessingLog.SlidesProduced)
	}
}

// TestPathFor verifies the manifest naming convention.
func TestPathFor(t *testing.T) {
	t.Parallel()

	if got := PathFor("decks/out.deck.json"); got != "decks/out.deck.json_manifest.json" {
		t.Errorf("unexpected manifest path %q", got)
	}
}
