package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cathub/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check ffmpeg and folder access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			results := preflight.RunAll(cmd.Context(), cfg)

			lines := renderSectionHeader("Configuration", colorize)
			path := ctx.configPath
			if path == "" {
				path = "(defaults)"
			}
			lines = append(lines,
				renderStatusLine("Config", statusInfo, path, colorize),
				renderStatusLine("Metadata file", statusInfo, cfg.Paths.MetadataFile, colorize),
				renderStatusLine("History", statusInfo, historyDescription(cfg.History.Enabled, cfg.History.Path), colorize),
				"",
			)
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(statuses, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Folders", colorize)...)
			lines = append(lines, preflightLines(results, colorize)...)
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			failures := 0
			for _, status := range statuses {
				if !status.Available && !status.Optional {
					failures++
				}
			}
			for _, result := range results {
				if !result.Passed {
					failures++
				}
			}
			if failures > 0 {
				return errors.New("environment check failed")
			}
			return nil
		},
	}
}

func historyDescription(enabled bool, path string) string {
	if !enabled {
		return "disabled"
	}
	return path
}
