package fileutil

import (
	"fmt"
	"io"
	"os"
)

// CopyFileMode streams src to dst, setting the given file mode on dst. It
// returns the number of bytes written.
func CopyFileMode(src, dst string, mode os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	written, err := io.Copy(out, in)
	if err != nil {
		return written, err
	}
	return written, out.Close()
}

// CopyPreserving copies src to dst and carries over the permission bits and
// access/modification times, so dst compares equal to src by mtime afterwards.
func CopyPreserving(src, dst string) (int64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	written, err := CopyFileMode(src, dst, info.Mode().Perm())
	if err != nil {
		return written, err
	}

	// OpenFile only applies mode on create and is subject to umask.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return written, fmt.Errorf("preserve mode: %w", err)
	}
	if err := os.Chtimes(dst, accessTime(src, info), info.ModTime()); err != nil {
		return written, fmt.Errorf("preserve times: %w", err)
	}
	return written, nil
}
