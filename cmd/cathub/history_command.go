package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cathub/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						humanize.Time(run.StartedAt),
						string(run.Status),
						fmt.Sprintf("%d", run.Encoded),
						fmt.Sprintf("%d", run.Copied),
						fmt.Sprintf("%d", run.Failed),
						fmt.Sprintf("%d", len(run.Pruned)),
						fmt.Sprintf("%d", run.Files),
					})
				}
				headers := []string{"Run", "Started", "Status", "Encoded", "Copied", "Failed", "Pruned", "Files"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
				fmt.Fprintln(out, renderTable(headers, rows, aligns, nil))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-file outcomes of a run (ID prefixes accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				results, err := store.RunOutcomes(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:        %s\n", run.ID)
				fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format(time.DateTime))
				fmt.Fprintf(out, "Duration:   %s\n", run.Duration().Round(10*time.Millisecond))
				fmt.Fprintf(out, "Status:     %s\n", run.Status)
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:      %s\n", run.ErrorMessage)
				}
				if run.MetadataStatus != "" {
					fmt.Fprintf(out, "Metadata:   %s\n", run.MetadataStatus)
				}
				fmt.Fprintf(out, "Written:    %s\n", humanize.Bytes(uint64(max(run.BytesWritten, 0))))
				fmt.Fprintf(out, "Pruned:     %s\n", listOrNone(run.Pruned))
				fmt.Fprintf(out, "Dropped:    %s\n", listOrNone(run.Dropped))
				if len(results) == 0 {
					return nil
				}

				fmt.Fprintln(out)
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					note := result.Detail
					if result.ErrorMessage != "" {
						note = strings.TrimSpace(result.ErrorCategory + ": " + result.ErrorMessage)
					}
					rows = append(rows, []string{
						result.Source,
						result.Output,
						actionLabelString(result.Action),
						result.Status,
						humanize.Bytes(uint64(max(result.Bytes, 0))),
						note,
					})
				}
				headers := []string{"Source", "Output", "Action", "Status", "Size", "Note"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
				fmt.Fprintln(out, renderTable(headers, rows, aligns, nil))
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func actionLabelString(action string) string {
	return titleCaser.String(strings.ReplaceAll(action, "_", " "))
}
