package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"cathub/internal/config"
	"cathub/internal/history"
	"cathub/internal/logging"
	"cathub/internal/pipeline"
	"cathub/internal/services/ffmpeg"
)

type syncOptions struct {
	dryRun     bool
	noProgress bool
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	opts := &syncOptions{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Encode new media, prune stale outputs and reconcile metadata.json",
		Long: `Mirror the input folder into the output folder and rewrite metadata.json.

Per-file encoder failures are logged and leave that file out of metadata.json;
the command still exits 0. Filesystem errors stop the sync and exit 1.
Do not run two syncs against the same folders at the same time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, ctx, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what a sync would do without touching any file")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func runSync(cmd *cobra.Command, ctx *commandContext, opts *syncOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pipeOpts := pipeline.OptionsFromConfig(cfg, ffmpeg.NewFromConfig(cfg), logger)
	var progress *progressObserver
	if !opts.dryRun && !opts.noProgress && shouldColorize(out) {
		progress = newProgressObserver(out)
		pipeOpts.Observer = progress
	}

	p, err := pipeline.New(pipeOpts)
	if err != nil {
		return err
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	if opts.dryRun {
		plan, err := p.Plan(runCtx)
		if err != nil {
			return err
		}
		renderPlan(out, plan)
		return nil
	}

	report, runErr := p.Run(runCtx)
	if progress != nil {
		progress.finish()
	}
	recordHistory(runCtx, cfg, logger, report, runErr)
	if runErr != nil {
		return runErr
	}
	renderReport(out, report)
	return nil
}

// recordHistory stores the run in the ledger. Failures only warn.
func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, report pipeline.Report, runErr error) {
	if !cfg.History.Enabled || report.RunID == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String("history_path", cfg.History.Path),
			logging.String(logging.FieldErrorHint, "delete the history database or set history.enabled = false"),
			logging.String(logging.FieldImpact, "this run is not recorded in cathub history"),
		)
		return
	}
	defer store.Close()
	if err := store.RecordRun(context.WithoutCancel(ctx), report, runErr); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is not recorded in cathub history"),
		)
	}
}

func renderPlan(out io.Writer, plan pipeline.Plan) {
	if plan.InputMissing {
		fmt.Fprintf(out, "Input directory %s does not exist; a sync would create it and stop.\n", plan.InputDir)
		return
	}

	rows := make([][]string, 0, len(plan.Items))
	for _, item := range plan.Items {
		rows = append(rows, []string{item.Source, item.Output, actionLabel(item.Action), item.Reason})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Source", "Output", "Action", "Note"}, rows, nil, nil))
	} else {
		fmt.Fprintln(out, "No input files.")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Dry run summary:")
	for _, action := range pipeline.Actions {
		fmt.Fprintf(out, "  %-14s %d\n", actionLabel(action)+":", plan.Count(action))
	}
	fmt.Fprintf(out, "  %-14s %s\n", "Would prune:", listOrNone(plan.Prune))
	fmt.Fprintf(out, "  %-14s %s\n", "Would drop:", listOrNone(plan.Dropped))
	fmt.Fprintf(out, "  %-14s %s\n", "Metadata:", plan.MetadataStatus)
}
