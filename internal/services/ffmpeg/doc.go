// Package ffmpeg wraps the ffmpeg command line for the two transcodes cathub
// performs: video to VP9/WebM and still images to WebP.
//
// Each call runs one blocking subprocess with the output path as the final
// argument and "-y" so an existing output is overwritten. Combined stdout and
// stderr are captured and returned with the result so callers can log them on
// failure. A missing binary or a non-zero exit is reported through Result.Err
// and never aborts the caller's run.
package ffmpeg
