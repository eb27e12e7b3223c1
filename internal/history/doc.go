// Package history keeps a SQLite ledger of sync runs and their per-file
// outcomes so operators can see what a past run encoded, copied, pruned or
// failed on.
//
// The ledger is advisory. Sync callers treat every error from this package
// as a warning; metadata.json remains the only state the web page reads.
package history
