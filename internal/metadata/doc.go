// Package metadata reads, reconciles, and writes the metadata.json sidecar
// consumed by the web page: the tag vocabulary, per-file tag assignments, and
// the sorted list of output files currently published.
//
// Assignment values are opaque to cathub and are round-tripped untouched, as
// are unknown top-level keys. A missing or unparsable document is replaced by
// a fresh default one; callers are told which case happened so they can log
// the repair, since the previous assignments are lost.
package metadata
