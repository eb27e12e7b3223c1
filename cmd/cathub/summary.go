package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cathub/internal/pipeline"
)

var titleCaser = cases.Title(language.English)

func actionLabel(action pipeline.Action) string {
	return titleCaser.String(strings.ReplaceAll(string(action), "_", " "))
}

func renderReport(out io.Writer, report pipeline.Report) {
	if report.InputCreated {
		fmt.Fprintf(out, "Created empty input directory %s; nothing to sync.\n", report.InputDir)
		return
	}

	rows := make([][]string, 0, len(pipeline.Actions))
	total := 0
	for _, action := range pipeline.Actions {
		count := report.Count(action)
		total += count
		rows = append(rows, []string{actionLabel(action), fmt.Sprintf("%d", count)})
	}
	footer := []string{"Total", fmt.Sprintf("%d", total)}
	fmt.Fprintln(out, renderTable([]string{"Action", "Files"}, rows, []columnAlignment{alignLeft, alignRight}, footer))

	fmt.Fprintf(out, "Run:          %s\n", report.RunID)
	fmt.Fprintf(out, "Duration:     %s\n", report.Duration().Round(10*time.Millisecond))
	fmt.Fprintf(out, "Written:      %s\n", humanize.Bytes(uint64(max(report.BytesWritten, 0))))
	fmt.Fprintf(out, "Published:    %d files\n", len(report.Files))
	fmt.Fprintf(out, "Pruned:       %s\n", listOrNone(report.Pruned))
	fmt.Fprintf(out, "Dropped tags: %s\n", listOrNone(report.Dropped))

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%d file(s) failed and were left out of metadata:\n", len(failed))
		for _, outcome := range failed {
			fmt.Fprintf(out, "  - %s: %s\n", outcome.Source, outcome.Error)
		}
	}
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
