package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cathub/internal/fileutil"
	"cathub/internal/logging"
	"cathub/internal/media"
	"cathub/internal/metadata"
	"cathub/internal/services"
	"cathub/internal/services/ffmpeg"
)

const encoderLogTail = 4096

// Run performs one sync. The returned report is populated as far as the run
// got, including when an error stops it.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID:        uuid.NewString(),
		StartedAt:    time.Now(),
		InputDir:     p.inputDir,
		OutputDir:    p.outputDir,
		MetadataPath: p.metadataPath,
	}
	ctx = services.WithRunID(ctx, report.RunID)

	err := p.run(ctx, &report)
	report.FinishedAt = time.Now()
	return report, err
}

func (p *Pipeline) run(ctx context.Context, report *Report) error {
	initCtx := services.WithStage(ctx, "init")
	logger := logging.WithContext(initCtx, p.logger)

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "init", "create output directory", p.outputDir, err)
	}
	exists, err := dirExists(p.inputDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "init", "inspect input directory", p.inputDir, err)
	}
	if !exists {
		if err := os.MkdirAll(p.inputDir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, "init", "create input directory", p.inputDir, err)
		}
		report.InputCreated = true
		logger.Info("input directory was missing; created it, nothing to sync",
			logging.String(logging.FieldEventType, "input_created"),
			logging.String("input_dir", p.inputDir),
		)
		return nil
	}

	doc, err := p.loadMetadata(services.WithStage(ctx, "metadata"), report)
	if err != nil {
		return err
	}

	processCtx := services.WithStage(ctx, "process")
	items, err := p.planItems(processCtx)
	if err != nil {
		return services.Wrap(services.ErrTransient, "process", "scan input directory", p.inputDir, err)
	}

	files := make([]string, 0, len(items))
	for index, item := range items {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrTransient, "process", "sync interrupted", "", err)
		}
		p.observer.FileStarted(item, index, len(items))
		outcome, err := p.execute(services.WithFile(processCtx, item.Source), item)
		report.Outcomes = append(report.Outcomes, outcome)
		p.observer.FileFinished(outcome)
		if err != nil {
			return err
		}
		report.BytesWritten += outcome.Bytes
		if outcome.Registered {
			files = append(files, outcome.Output)
		}
	}

	pruneCtx := services.WithStage(ctx, "prune")
	pruned, err := prune(p.outputDir, toSet(files))
	report.Pruned = pruned
	for _, name := range pruned {
		logging.WithContext(pruneCtx, p.logger).Info("removed stale output",
			logging.String(logging.FieldEventType, "output_pruned"),
			logging.String("output", name),
		)
	}
	if err != nil {
		return services.Wrap(services.ErrTransient, "prune", "remove stale outputs", p.outputDir, err)
	}

	reconcileLogger := logging.WithContext(services.WithStage(ctx, "reconcile"), p.logger)
	report.Dropped = doc.Reconcile(files)
	report.Files = append([]string(nil), doc.Files...)
	for _, key := range report.Dropped {
		reconcileLogger.Info("dropped assignment for missing file",
			logging.String(logging.FieldEventType, "assignment_dropped"),
			logging.String("output", key),
		)
	}

	persistLogger := logging.WithContext(services.WithStage(ctx, "persist"), p.logger)
	if err := metadata.Save(p.metadataPath, doc); err != nil {
		return services.Wrap(services.ErrTransient, "persist", "write metadata", p.metadataPath, err)
	}
	persistLogger.Info(fmt.Sprintf("registered %d entries in %s", len(doc.Files), filepath.Base(p.metadataPath)),
		logging.String(logging.FieldEventType, "metadata_written"),
		logging.Int("files", len(doc.Files)),
		logging.Int("dropped_assignments", len(report.Dropped)),
		logging.Int("pruned_outputs", len(report.Pruned)),
	)
	return nil
}

func (p *Pipeline) loadMetadata(ctx context.Context, report *Report) (*metadata.Document, error) {
	logger := logging.WithContext(ctx, p.logger)
	loaded, err := metadata.Load(p.metadataPath, p.defaultTags)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "metadata", "load metadata", p.metadataPath, err)
	}
	report.MetadataStatus = loaded.Status
	switch loaded.Status {
	case metadata.StatusCreated:
		logger.Info("metadata file not found; starting from defaults",
			logging.String(logging.FieldEventType, "metadata_created"),
			logging.String("metadata_file", p.metadataPath),
		)
	case metadata.StatusRepaired:
		logging.WarnWithContext(logger, "metadata file unreadable; reset to defaults", "metadata_repaired",
			logging.String("metadata_file", p.metadataPath),
			logging.Error(loaded.ParseErr),
			logging.String(logging.FieldErrorHint, "restore metadata.json from backup to recover tag assignments"),
			logging.String(logging.FieldImpact, "previous tag assignments discarded"),
		)
	}
	return loaded.Document, nil
}

// execute handles one planned item. Encoder failures are reported in the
// outcome only; the returned error is reserved for filesystem failures that
// must stop the run.
func (p *Pipeline) execute(ctx context.Context, item Item) (Outcome, error) {
	logger := logging.WithContext(ctx, p.logger)
	outcome := Outcome{
		Source: item.Source,
		Output: item.Output,
		Kind:   item.Kind,
		Action: item.Action,
		Detail: item.Reason,
	}
	sourcePath := filepath.Join(p.inputDir, item.Source)
	outputPath := filepath.Join(p.outputDir, item.Output)

	switch item.Action {
	case ActionSkip:
		outcome.Status = StatusSkipped
		if item.Kind == media.KindUnsupported {
			logger.Info("skipping file",
				logging.String(logging.FieldEventType, "file_skipped"),
				logging.String("reason", item.Reason),
			)
		} else {
			logging.WarnWithContext(logger, "skipping file", "file_skipped",
				logging.String("reason", item.Reason),
				logging.String(logging.FieldErrorHint, "rename one of the sources so their outputs differ"),
				logging.String(logging.FieldImpact, "file not published"),
			)
		}
		return outcome, nil

	case ActionReuse:
		outcome.Status = StatusOK
		outcome.Registered = true
		logger.Debug("output up to date", logging.String("output", item.Output))
		return outcome, nil

	case ActionCopy:
		start := time.Now()
		written, err := fileutil.CopyPreserving(sourcePath, outputPath)
		outcome.Elapsed = time.Since(start)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Error = err.Error()
			outcome.ErrorCategory = services.Category(services.ErrTransient)
			return outcome, services.Wrap(services.ErrTransient, "process", "copy passthrough", item.Source, err)
		}
		outcome.Status = StatusOK
		outcome.Registered = true
		outcome.Bytes = written
		logger.Info("copied passthrough file",
			logging.String(logging.FieldEventType, "file_copied"),
			logging.String("output", item.Output),
			logging.Int64("bytes", written),
		)
		return outcome, nil

	case ActionEncodeVideo, ActionEncodeImage:
		logger.Info("encoding",
			logging.String(logging.FieldEventType, "encode_start"),
			logging.String("output", item.Output),
			logging.String("kind", item.Kind.String()),
		)
		var result ffmpeg.Result
		if item.Action == ActionEncodeVideo {
			result = p.encoder.TranscodeVideo(ctx, sourcePath, outputPath)
		} else {
			result = p.encoder.TranscodeImage(ctx, sourcePath, outputPath)
		}
		outcome.Elapsed = result.Elapsed
		if !result.Succeeded() {
			outcome.Status = StatusFailed
			outcome.Error = result.Err.Error()
			outcome.ErrorCategory = services.Category(result.Err)
			outcome.EncoderLog = tail(result.Log, encoderLogTail)
			logging.ErrorWithContext(logger, "encoding failed", "encode_failed",
				logging.String("output", item.Output),
				logging.Error(result.Err),
				logging.String("encoder_output", outcome.EncoderLog),
				logging.String(logging.FieldErrorHint, "check the encoder output; the file will be retried next run"),
			)
			return outcome, nil
		}
		outcome.Status = StatusOK
		outcome.Registered = true
		if info, err := os.Stat(outputPath); err == nil {
			outcome.Bytes = info.Size()
		}
		logger.Info("encoded",
			logging.String(logging.FieldEventType, "encode_complete"),
			logging.String("output", item.Output),
			logging.Duration("elapsed", result.Elapsed),
			logging.Int64("bytes", outcome.Bytes),
		)
		return outcome, nil
	}

	return outcome, fmt.Errorf("unknown action %q for %s", item.Action, item.Source)
}

func tail(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return value[len(value)-limit:]
}
