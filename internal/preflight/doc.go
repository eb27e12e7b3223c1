// Package preflight provides readiness checks for the folders and external
// tools cathub depends on.
//
// The "cathub check" command runs them all and renders the results. A sync
// does not require them to pass: a missing ffmpeg only fails the files that
// need encoding, and a missing input folder is created by the sync itself.
package preflight
