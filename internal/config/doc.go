// Package config loads, normalizes, and validates cathub configuration data.
//
// It supplies repository defaults that reproduce the classic layout
// (processed/ -> sources/ with metadata.json beside them), expands user paths
// (including tilde shortcuts), reads TOML files, and canonicalizes the media
// extension tables. The Config type centralizes every knob the CLI and the
// sync pipeline need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, lowercase dotted extensions, and clear validation errors.
package config
