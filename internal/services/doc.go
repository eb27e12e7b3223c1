// Package services defines shared utilities consumed by the sync pipeline and
// the wrappers around external tools.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and the file being
//     processed so loggers can tag every line of a run.
//   - Structured error markers plus the Wrap helper that keep failures
//     classifiable with errors.Is after they cross package boundaries.
//
// External tool integrations live in subpackages (see services/ffmpeg).
package services
