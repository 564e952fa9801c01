package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/deckforge/deckforge/internal/checkpoint"
	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/manifest"
	"github.com/deckforge/deckforge/internal/model"
)

// Orchestrator runs the pipeline for one input document. It owns the
// stage data, the manifest tracker, and the checkpoint store for the run.
// Create a fresh Orchestrator per run; it is not reusable.
type Orchestrator struct {
	cfg    *config.Config
	logger *slog.Logger
	collab Collaborators
	store  *checkpoint.Store // nil when checkpoints are disabled

	runID      string
	inputPath  string
	outputPath string
	tracker    *manifest.Tracker
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger sets a custom logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithCollaborators replaces the builtin stage implementations.
func WithCollaborators(c Collaborators) OrchestratorOption {
	return func(o *Orchestrator) {
		o.collab = c
	}
}

// NewOrchestrator creates an Orchestrator for a single input document.
// maxBullets comes from the per-document config; zero keeps the
// transformer default.
func NewOrchestrator(cfg *config.Config, inputPath, outputPath string, maxBullets int, opts ...OrchestratorOption) (*Orchestrator, error) {
	o := &Orchestrator{
		cfg:        cfg,
		runID:      uuid.NewString(),
		inputPath:  inputPath,
		outputPath: outputPath,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.collab.Extractor == nil {
		o.collab = DefaultCollaborators(o.logger, maxBullets)
	}
	o.tracker = manifest.NewTracker(o.runID)

	if cfg.EnableCheckpoints {
		dir := cfg.CheckpointDir
		if dir == "" {
			dir = checkpoint.DirForInput(config.DefaultCheckpointRoot(), inputPath)
		}
		store, err := checkpoint.NewStore(dir, checkpoint.WithLogger(o.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
		}
		o.store = store
	}

	return o, nil
}

// RunID returns the unique identifier of this run.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run executes the pipeline from the configured starting point and
// returns the terminal result. Run never returns an error for stage
// failures; those are reported through the result. The error return
// covers only context cancellation.
func (o *Orchestrator) Run(ctx context.Context) (*model.PipelineResult, error) {
	start := time.Now()

	data := &model.StageData{SourcePath: o.inputPath}
	var results []model.StageResult
	var completed []string

	startIdx := o.restoreResumeState(data, &results, &completed)

	o.logger.Info("starting pipeline run",
		"run_id", o.runID,
		"input", o.inputPath,
		"output", o.outputPath,
		"from_stage", model.StageOrder[startIdx],
	)

	stages := o.stages()
	for i := startIdx; i < len(stages); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		stage := stages[i]
		res, perr := o.executeStage(ctx, stage, data)
		results = append(results, res)
		o.tracker.RecordStep(res)

		if perr != nil {
			return o.failRun(stage, perr, data, results, completed, start), nil
		}

		completed = append(completed, stage.Name)
		o.saveCheckpoint(stage.Name, data, results, completed)
	}

	return o.finishRun(data, results, completed, start), nil
}

// executeStage runs one stage with retry and fallback handling. The
// returned error is non-nil only when the failure must abort the run.
func (o *Orchestrator) executeStage(ctx context.Context, stage Stage, data *model.StageData) (model.StageResult, *model.PipelineError) {
	res := model.StageResult{
		Name:      stage.Name,
		StartedAt: time.Now().UTC(),
	}
	if stage.InputHash != nil {
		res.InputHash = stage.InputHash(data)
	}

	o.logger.Info("executing stage", "stage", stage.Name, "run_id", o.runID)

	policy := PolicyFromConfig(o.cfg)
	attempts, err := Retry(ctx, policy, o.logger, stage.Name, func() error {
		return stage.Run(ctx, data, &res)
	})
	res.Attempts = attempts
	res.Duration = time.Since(res.StartedAt)

	if err == nil {
		res.Success = true
		if stage.OutputHash != nil {
			res.OutputHash = stage.OutputHash(data)
		}
		o.logger.Debug("stage completed",
			"stage", stage.Name,
			"attempts", attempts,
			"duration", res.Duration,
		)
		return res, nil
	}

	perr := classify(stage, err)
	res.Errors = append(res.Errors, perr.Error())

	if stage.Critical || stage.Fallback == nil {
		res.Success = false
		o.logger.Error("stage failed",
			"stage", stage.Name,
			"kind", perr.KindText,
			"attempts", attempts,
			"error", err,
		)
		return res, perr
	}

	// Non-critical failure: substitute the fallback and keep going.
	stage.Fallback(data, &res)
	res.Success = true
	res.Degraded = true
	if stage.OutputHash != nil {
		res.OutputHash = stage.OutputHash(data)
	}
	o.logger.Warn("stage degraded, continuing with fallback",
		"stage", stage.Name,
		"kind", perr.KindText,
		"error", err,
	)
	return res, nil
}

// restoreResumeState restores stage data from a checkpoint when the run
// is a resume, and returns the index of the first stage to execute. An
// unusable resume target is recoverable at this level: the problem is
// logged and the run starts from the beginning.
func (o *Orchestrator) restoreResumeState(data *model.StageData, results *[]model.StageResult, completed *[]string) int {
	var cp *checkpoint.Checkpoint

	switch {
	case o.cfg.ResumeFromCheckpoint != "":
		loaded, err := checkpoint.LoadFile(o.cfg.ResumeFromCheckpoint)
		if err != nil {
			o.logger.Warn("resume checkpoint unusable, starting from the beginning",
				"checkpoint", o.cfg.ResumeFromCheckpoint,
				"error", err,
			)
			return 0
		}
		cp = loaded

	case o.cfg.ResumeFromStage != "":
		idx := stageIndex(o.cfg.ResumeFromStage)
		if idx == 0 {
			// Resuming from the first stage is a cold start.
			return 0
		}
		if o.store == nil {
			o.logger.Warn("checkpoints disabled, resuming as a full run",
				"stage", o.cfg.ResumeFromStage,
			)
			return 0
		}
		cp = o.bestCheckpointBefore(idx)
		if cp == nil {
			o.logger.Warn("no usable checkpoint before stage, starting from the beginning",
				"stage", o.cfg.ResumeFromStage,
				"checkpoint_dir", o.store.Dir(),
			)
			return 0
		}

	default:
		return 0
	}

	*data = *cp.Data
	*results = append(*results, cp.StageResults...)
	*completed = append(*completed, cp.StagesCompleted...)
	for _, r := range cp.StageResults {
		o.tracker.RecordStep(r)
	}
	if cp.Data.RawInput != nil {
		o.tracker.CreateProvenance(cp.Data.SourcePath, cp.Data.RawInput, cp.Data.DetectedFormat)
	}

	o.logger.Info("resuming from checkpoint",
		"checkpoint", cp.ID,
		"after_stage", cp.Stage,
	)

	return stageIndex(cp.Stage) + 1
}

// bestCheckpointBefore returns the checkpoint written after the stage
// preceding the resume target, or the latest earlier one when that exact
// snapshot is missing or unreadable. Resuming from an older snapshot
// just recomputes the stages in between.
func (o *Orchestrator) bestCheckpointBefore(idx int) *checkpoint.Checkpoint {
	for i := idx - 1; i >= 0; i-- {
		cp, err := o.store.ForStage(model.StageOrder[i])
		if err != nil {
			o.logger.Warn("skipping unreadable checkpoint",
				"stage", model.StageOrder[i],
				"error", err,
			)
			continue
		}
		if cp != nil {
			return cp
		}
	}
	return nil
}

// saveCheckpoint persists state after a successful stage and applies the
// retention policy. Checkpoint failures never fail the run; the state is
// still in memory and the run proceeds without the snapshot.
func (o *Orchestrator) saveCheckpoint(stage string, data *model.StageData, results []model.StageResult, completed []string) {
	if o.store == nil {
		return
	}

	path, err := o.store.Save(stage, data, results, o.cfg, completed)
	if err != nil {
		o.logger.Warn("failed to save checkpoint",
			"stage", stage,
			"error", err,
		)
		return
	}
	o.logger.Debug("checkpoint saved", "stage", stage, "path", path)

	if err := o.store.Cleanup(o.cfg.KeepCheckpoints); err != nil {
		o.logger.Warn("checkpoint cleanup failed", "error", err)
	}
}

// finishRun builds the success result and writes the manifest.
func (o *Orchestrator) finishRun(data *model.StageData, results []model.StageResult, completed []string, start time.Time) *model.PipelineResult {
	result := &model.PipelineResult{
		RunID:           o.runID,
		Success:         true,
		OutputPath:      data.ArtifactPath,
		StagesCompleted: len(completed),
		Duration:        time.Since(start),
		StageResults:    results,
	}
	o.collectStageMessages(result, results)

	o.tracker.Finalize(true, result.Duration)
	result.ManifestPath = o.writeManifest()

	o.logger.Info("pipeline run complete",
		"run_id", o.runID,
		"output", result.OutputPath,
		"duration", result.Duration,
		"warnings", len(result.Warnings),
		"recovered", result.RecoveredFromErrors,
	)
	return result
}

// failRun builds the failure result: it finalizes the manifest, dumps
// partial results, and points at the last usable checkpoint.
func (o *Orchestrator) failRun(stage Stage, perr *model.PipelineError, data *model.StageData, results []model.StageResult, completed []string, start time.Time) *model.PipelineResult {
	result := &model.PipelineResult{
		RunID:            o.runID,
		Success:          false,
		StagesCompleted:  len(completed),
		Duration:         time.Since(start),
		StageResults:     results,
		StructuredErrors: []*model.PipelineError{perr},
	}
	if len(completed) > 0 {
		result.LastSuccessfulStage = completed[len(completed)-1]
	}
	o.collectStageMessages(result, results)

	if o.store != nil {
		if cp, err := o.store.Latest(); err == nil && cp != nil {
			result.CheckpointPath = filepath.Join(o.store.Dir(), cp.ID+".json")
		}
	}

	if o.cfg.SavePartialResults {
		if dir, err := o.dumpPartialResults(stage.Name, perr, data, results, result); err != nil {
			o.logger.Warn("failed to save partial results", "error", err)
		} else {
			result.PartialResultsPath = dir
		}
	}

	o.tracker.Finalize(false, result.Duration)
	result.ManifestPath = o.writeManifest()

	o.logger.Error("pipeline run failed",
		"run_id", o.runID,
		"stage", stage.Name,
		"kind", perr.KindText,
		"last_successful_stage", result.LastSuccessfulStage,
	)
	return result
}

// collectStageMessages aggregates warnings, errors, and the recovery
// counter from the per-stage results.
func (o *Orchestrator) collectStageMessages(result *model.PipelineResult, results []model.StageResult) {
	for _, r := range results {
		result.Warnings = append(result.Warnings, r.Warnings...)
		result.Errors = append(result.Errors, r.Errors...)
		if r.Degraded {
			result.RecoveredFromErrors++
		}
	}
}

// writeManifest persists the manifest next to the output artifact. The
// manifest is written for failed runs too; a missing manifest would hide
// exactly the runs that need investigating.
func (o *Orchestrator) writeManifest() string {
	path := manifest.PathFor(o.outputPath)
	if err := o.tracker.Save(path); err != nil {
		o.logger.Warn("failed to write manifest", "path", path, "error", err)
		return ""
	}
	return path
}

// recoveryInfo is the shape of recovery_info.json in a partial results
// dump. It tells the user where the run stopped and how to resume it.
type recoveryInfo struct {
	RunID               string               `json:"run_id"`
	FailedStage         string               `json:"failed_stage"`
	LastSuccessfulStage string               `json:"last_successful_stage,omitempty"`
	Error               *model.PipelineError `json:"error"`
	CheckpointPath      string               `json:"checkpoint_path,omitempty"`
	ResumeCommand       string               `json:"resume_command,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// dumpPartialResults writes the diagnostic dump directory next to the
// output artifact: stage_data.json, stage_results.json, and
// recovery_info.json. Returns the directory path.
func (o *Orchestrator) dumpPartialResults(failedStage string, perr *model.PipelineError, data *model.StageData, results []model.StageResult, result *model.PipelineResult) (string, error) {
	parent := filepath.Dir(o.outputPath)
	dir := filepath.Join(parent, fmt.Sprintf("partial_results_%s", time.Now().UTC().Format("20060102T150405")))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create partial results directory: %w", err)
	}

	info := recoveryInfo{
		RunID:               o.runID,
		FailedStage:         failedStage,
		LastSuccessfulStage: result.LastSuccessfulStage,
		Error:               perr,
		CheckpointPath:      result.CheckpointPath,
		CreatedAt:           time.Now().UTC(),
	}
	if result.LastSuccessfulStage != "" {
		next := stageIndex(result.LastSuccessfulStage) + 1
		if next < len(model.StageOrder) {
			info.ResumeCommand = fmt.Sprintf("deckforge run %s %s --resume-from %s",
				o.inputPath, o.outputPath, model.StageOrder[next])
		}
	}

	files := map[string]any{
		"stage_data.json":    data,
		"stage_results.json": results,
		"recovery_info.json": info,
	}
	for name, v := range files {
		payload, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to serialize %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0600); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	return dir, nil
}

// stageIndex returns the position of a stage in the fixed order, or 0
// for an unknown name. Callers validate stage names before resolving.
func stageIndex(name string) int {
	for i, s := range model.StageOrder {
		if s == name {
			return i
		}
	}
	return 0
}
