package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)
	syncOpts := &syncOptions{}

	rootCmd := &cobra.Command{
		Use:   "cathub",
		Short: "Sync processed media into web-ready sources and metadata.json",
		Long: `cathub mirrors the input folder into the output folder: videos are encoded
to VP9/WebM, JPEG and PNG images to WebP, and GIF/WebP files are copied as-is.
Outputs no longer produced by any input are deleted and metadata.json is
reconciled so tag assignments only reference published files.

Running cathub without a subcommand performs a sync. Do not run two syncs
against the same folders at the same time; nothing prevents it and the
results are undefined.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, ctx, syncOpts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Override log format (console, json)")

	rootCmd.AddCommand(newSyncCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
