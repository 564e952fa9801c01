package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/deckforge/deckforge/internal/model"
)

func successResult() *model.PipelineResult {
	return &model.PipelineResult{
		RunID:           "run-ok",
		Success:         true,
		OutputPath:      "/tmp/out.deck.json",
		ManifestPath:    "/tmp/out_manifest.json",
		StagesCompleted: 6,
		Duration:        2 * time.Second,
		StageResults: []model.StageResult{
			{Name: "ingestion", Success: true, Attempts: 1, Duration: time.Millisecond},
			{Name: "extraction", Success: true, Attempts: 1, Duration: time.Millisecond},
			{Name: "transformation", Success: true, Attempts: 1, Duration: time.Millisecond},
			{Name: "template_selection", Success: true, Attempts: 1, Duration: time.Millisecond},
			{Name: "validation", Success: true, Attempts: 1, Duration: time.Millisecond},
			{Name: "generation", Success: true, Attempts: 1, Duration: time.Millisecond},
		},
	}
}

func degradedResult() *model.PipelineResult {
	r := successResult()
	r.RunID = "run-degraded"
	r.RecoveredFromErrors = 1
	r.StageResults[1].Degraded = true
	r.StageResults[1].Attempts = 3
	r.Warnings = []string{"extraction degraded: structure flattened to plain paragraphs"}
	return r
}

func failedResult() *model.PipelineResult {
	perr := model.NewPipelineError("generation", model.KindGeneration, "cannot write output artifact", nil).
		WithContext("output", "/tmp/out.deck.json")
	return &model.PipelineResult{
		RunID:               "run-failed",
		Success:             false,
		StagesCompleted:     5,
		LastSuccessfulStage: "validation",
		Duration:            time.Second,
		CheckpointPath:      "/tmp/checkpoints/abc.json",
		PartialResultsPath:  "/tmp/partial_results_20260829T000000",
		StageResults: []model.StageResult{
			{Name: "ingestion", Success: true, Attempts: 1},
			{Name: "generation", Success: false, Attempts: 1, Errors: []string{perr.Error()}},
		},
		Errors:           []string{perr.Error()},
		StructuredErrors: []*model.PipelineError{perr},
	}
}

// TestSimpleWriterSuccess verifies the clean-run summary.
func TestSimpleWriterSuccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewSimpleWriter(&buf).Write(successResult())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != buf.Len() {
		t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
	}

	out := buf.String()
	for _, want := range []string{
		"DECKFORGE RUN SUMMARY",
		"Status:           SUCCESS",
		"Output:           /tmp/out.deck.json",
		"Manifest:         /tmp/out_manifest.json",
		"Stages Completed: 6/6",
		"[+] ingestion",
		"[+] generation",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "FAILURE") || strings.Contains(out, "WARNINGS") {
		t.Errorf("expected no failure or warning sections\n%s", out)
	}
}

// TestSimpleWriterDegraded verifies degradation markers and warnings.
func TestSimpleWriterDegraded(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf).Write(degradedResult()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Status:           DEGRADED (recovered from 1 error(s))",
		"[~] extraction",
		"(3 attempts)",
		"WARNINGS (1)",
		"* extraction degraded: structure flattened to plain paragraphs",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

// TestSimpleWriterFailure verifies the failure diagnostics section.
func TestSimpleWriterFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf).Write(failedResult()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Status:           FAILED",
		"[x] generation",
		"FAILURE",
		"Stage:      generation",
		"Kind:       generation",
		"Problem:    cannot write output artifact",
		"Suggestion:",
		"Last successful stage: validation",
		"Partial results:       /tmp/partial_results_20260829T000000",
		"Latest checkpoint:     /tmp/checkpoints/abc.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

// TestSimpleWriterVerbose verifies per-stage detail.
func TestSimpleWriterVerbose(t *testing.T) {
	t.Parallel()

	result := degradedResult()
	result.StageResults[1].Warnings = []string{"structure flattened"}
	result.StageResults[1].Errors = []string{"parser exploded"}

	var buf bytes.Buffer
	if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(result); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "warning: structure flattened") {
		t.Errorf("expected per-stage warnings\n%s", out)
	}
	if !strings.Contains(out, "error:   parser exploded") {
		t.Errorf("expected per-stage errors\n%s", out)
	}

	// Non-verbose output omits them.
	buf.Reset()
	if _, err := NewSimpleWriter(&buf).Write(result); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(buf.String(), "parser exploded") {
		t.Error("expected stage detail hidden without verbose")
	}
}

// TestJSONWriter verifies the machine-readable format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("bare result", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(successResult()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got model.PipelineResult
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("expected valid JSON, got %v", err)
		}
		if got.RunID != "run-ok" || !got.Success {
			t.Errorf("unexpected result: %+v", got)
		}
		if buf.Bytes()[buf.Len()-1] != '\n' {
			t.Error("expected a trailing newline")
		}
	})

	t.Run("versioned wrapper", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("1.2.3"))
		if _, err := w.Write(successResult()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got struct {
			Version string                `json:"version"`
			Result  *model.PipelineResult `json:"result"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("expected valid JSON, got %v", err)
		}
		if got.Version != "1.2.3" {
			t.Errorf("expected version wrapper, got %q", got.Version)
		}
		if got.Result == nil || got.Result.RunID != "run-ok" {
			t.Errorf("unexpected wrapped result: %+v", got.Result)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})
}

// TestMarkdownWriter verifies the markdown summary structure.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(successResult()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := buf.String()
		for _, want := range []string{"run-ok", "ingestion", "generation", "pie"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected markdown to contain %q\n%s", want, out)
			}
		}
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(failedResult()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"run-failed",
			"cannot write output artifact",
			"validation",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected markdown to contain %q\n%s", want, out)
			}
		}
	})
}

// TestMultiWriter verifies fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
	if _, err := mw.Write(successResult()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("expected both writers to receive the result")
	}
	if !strings.Contains(a.String(), "DECKFORGE RUN SUMMARY") {
		t.Error("expected the simple summary in the first writer")
	}
	if !json.Valid(bytes.TrimSpace(b.Bytes())) {
		t.Error("expected valid JSON in the second writer")
	}
}
