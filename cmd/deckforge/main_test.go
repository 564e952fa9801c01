package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/manifest"
)

const sampleMarkdown = `# Test Deck

Intro paragraph.

## First Section

- point one
- point two
`

// TestNewRootCmd verifies the command tree wiring.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	if root.Use != "deckforge" {
		t.Errorf("expected use 'deckforge', got %q", root.Use)
	}

	want := map[string]bool{
		"run":         false,
		"checkpoints": false,
		"history":     false,
		"init":        false,
		"version":     false,
	}
	for _, sub := range root.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected subcommand %q", name)
		}
	}

	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("expected a persistent --verbose flag")
	}
}

// TestVersionCmd verifies the version output shape.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{"deckforge version", "commit:", "built:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

// TestBuildRunConfig verifies the flag-to-config mapping.
func TestBuildRunConfig(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()
	if err := cmd.ParseFlags([]string{
		"--theme", "mono",
		"--strict",
		"--no-checkpoints",
		"--no-retry",
		"--max-retries", "7",
		"--retry-delay", "250ms",
		"--no-partial-results",
		"--keep-checkpoints", "3",
		"--batch", "2",
		"--json",
		"--no-db",
	}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildRunConfig(cmd, []string{"a.md", "b.md", "out/"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(cfg.Inputs) != 2 || cfg.Inputs[0] != "a.md" || cfg.Inputs[1] != "b.md" {
		t.Errorf("unexpected inputs: %v", cfg.Inputs)
	}
	if cfg.OutputPath != "out/" {
		t.Errorf("expected output 'out/', got %q", cfg.OutputPath)
	}
	if cfg.Theme != "mono" || !cfg.Strict {
		t.Errorf("unexpected conversion settings: %+v", cfg)
	}
	if cfg.EnableCheckpoints || cfg.EnableRetry || cfg.SavePartialResults {
		t.Errorf("expected the opt-outs applied: %+v", cfg)
	}
	if cfg.MaxRetryAttempts != 7 || cfg.RetryDelay != 250*time.Millisecond {
		t.Errorf("unexpected retry settings: %+v", cfg)
	}
	if cfg.KeepCheckpoints != 3 || cfg.BatchSize != 2 {
		t.Errorf("unexpected checkpoint/batch settings: %+v", cfg)
	}
	if !cfg.JSONReport || cfg.MarkdownReport {
		t.Errorf("unexpected report settings: %+v", cfg)
	}
	if cfg.SaveToDB {
		t.Error("expected --no-db to disable history")
	}
}

// TestBuildRunConfigDefaults verifies defaults survive flag parsing.
func TestBuildRunConfigDefaults(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildRunConfig(cmd, []string{"in.md", "out.deck.json"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !cfg.EnableCheckpoints || !cfg.EnableRetry || !cfg.SavePartialResults {
		t.Errorf("expected resilience on by default: %+v", cfg)
	}
	if cfg.MaxRetryAttempts != config.DefaultMaxRetryAttempts {
		t.Errorf("expected default retries, got %d", cfg.MaxRetryAttempts)
	}
	if !cfg.SaveToDB {
		t.Error("expected history enabled by default")
	}
	if cfg.DocumentConfigs == nil {
		t.Error("expected an empty document config set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected a valid default config, got %v", err)
	}
}

// TestBuildRunConfigMissingConfigFile verifies explicit path handling.
func TestBuildRunConfigMissingConfigFile(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
		t.Fatal(err)
	}

	if _, err := buildRunConfig(cmd, []string{"in.md", "out.deck.json"}); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

// TestRunCmdEndToEnd drives a full conversion through the CLI.
func TestRunCmdEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "talk.md")
	if err := os.WriteFile(input, []byte(sampleMarkdown), 0600); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "talk.deck.json")
	reportFile := filepath.Join(dir, "summary.txt")

	root := NewRootCmd()
	root.SetArgs([]string{
		"run", input, output,
		"--checkpoint-dir", filepath.Join(dir, "checkpoints"),
		"--no-db",
		"--report", reportFile,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected a clean conversion, got %v", err)
	}

	if _, err := os.Stat(output); err != nil {
		t.Errorf("expected the artifact on disk, got %v", err)
	}
	if _, err := os.Stat(manifest.PathFor(output)); err != nil {
		t.Errorf("expected the manifest next to the artifact, got %v", err)
	}

	summary, err := os.ReadFile(reportFile)
	if err != nil {
		t.Fatalf("expected the report file, got %v", err)
	}
	if !strings.Contains(string(summary), "Status:           SUCCESS") {
		t.Errorf("expected a success summary\n%s", summary)
	}
}

// TestRunCmdFailureExit verifies the failure sentinel for a missing input.
func TestRunCmdFailureExit(t *testing.T) {
	dir := t.TempDir()
	root := NewRootCmd()
	root.SetArgs([]string{
		"run", filepath.Join(dir, "missing.md"), filepath.Join(dir, "out.deck.json"),
		"--checkpoint-dir", filepath.Join(dir, "checkpoints"),
		"--no-db",
		"--report", filepath.Join(dir, "summary.txt"),
	})

	if err := root.Execute(); !errors.Is(err, errConversionFailed) {
		t.Errorf("expected errConversionFailed, got %v", err)
	}
}

// TestRunCmdRequiresTwoArgs verifies positional argument validation.
func TestRunCmdRequiresTwoArgs(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetArgs([]string{"run", "only.md"})
	if err := root.Execute(); err == nil {
		t.Error("expected an error for a single positional argument")
	}
}

// TestInitCmd verifies config file scaffolding.
func TestInitCmd(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "conf", ".deckforge")

	root := NewRootCmd()
	root.SetArgs([]string{"init", "-o", target})
	if err := root.Execute(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected the config file, got %v", err)
	}
	if !strings.Contains(string(content), "documents:") {
		t.Errorf("expected the config skeleton\n%s", content)
	}

	t.Run("refuses to overwrite", func(t *testing.T) {
		again := NewRootCmd()
		again.SetArgs([]string{"init", "-o", target})
		if err := again.Execute(); err == nil {
			t.Error("expected an error without --force")
		}
	})

	t.Run("force overwrites", func(t *testing.T) {
		forced := NewRootCmd()
		forced.SetArgs([]string{"init", "-o", target, "-f"})
		if err := forced.Execute(); err != nil {
			t.Errorf("expected --force to succeed, got %v", err)
		}
	})
}

// TestConfigForDocument verifies per-document overrides.
func TestConfigForDocument(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Inputs = []string{"slides.md"}
	cfg.OutputPath = "out.deck.json"
	cfg.DocumentConfigs = &config.File{
		Documents: map[string]config.DocumentConfig{
			"slides.md": {Theme: "briefing", Strict: true, MaxBulletsPerSlide: 4},
		},
	}

	perDoc, maxBullets := configForDocument(cfg, "slides.md")
	if perDoc.Theme != "briefing" || !perDoc.Strict {
		t.Errorf("expected document settings applied, got %+v", perDoc)
	}
	if maxBullets != 4 {
		t.Errorf("expected 4 bullets per slide, got %d", maxBullets)
	}

	t.Run("CLI theme wins", func(t *testing.T) {
		t.Parallel()
		flagged := *cfg
		flagged.Theme = "mono"
		perDoc, _ := configForDocument(&flagged, "slides.md")
		if perDoc.Theme != "mono" {
			t.Errorf("expected the flag to win, got %q", perDoc.Theme)
		}
	})

	t.Run("unconfigured document keeps defaults", func(t *testing.T) {
		t.Parallel()
		perDoc, maxBullets := configForDocument(cfg, "other.md")
		if perDoc.Theme != "" || perDoc.Strict || maxBullets != 0 {
			t.Errorf("expected no overrides, got %+v / %d", perDoc, maxBullets)
		}
	})
}
