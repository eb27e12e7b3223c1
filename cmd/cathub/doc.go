// Package main hosts the cathub CLI entrypoint and command graph.
//
// Running cathub with no arguments performs a sync with the resolved
// configuration: processed/ is mirrored into sources/ as WebM/WebP and
// metadata.json is reconciled. Subcommands add a dry-run, environment checks,
// the run history ledger, and configuration scaffolding.
//
// Keep this package lean: behaviour belongs in internal/pipeline and its
// collaborators; commands here only resolve configuration, wire logging,
// and render results.
package main
