package preflight

import (
	"context"
	"path/filepath"

	"cathub/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckInputDirectory("Input directory", cfg.Paths.InputDir),
		CheckCreatableDirectory("Output directory", cfg.Paths.OutputDir),
		CheckCreatableDirectory("Metadata directory", filepath.Dir(cfg.Paths.MetadataFile)),
	}
	if cfg.History.Enabled {
		results = append(results, CheckCreatableDirectory("State directory", cfg.Paths.StateDir))
	}
	return results
}
