// Package pipeline implements the cathub sync: it mirrors the input folder
// into the output folder, transcoding video to VP9/WebM and JPEG/PNG to WebP,
// copying GIF/WebP unchanged, pruning outputs no raw file produces anymore,
// and reconciling metadata.json against the resulting file list.
//
// The work is split into a read-only Plan and an executing Run. Run is
// sequential: one file at a time, one blocking encoder call per file. A
// failed encode excludes that file from the run's file list (so its output is
// pruned) but never stops the batch. Filesystem errors stop the run before
// metadata is written.
//
// Two runs against the same folders must not overlap; nothing here guards
// against it.
package pipeline
