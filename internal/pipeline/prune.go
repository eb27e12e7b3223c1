package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// pruneCandidates lists regular files in dir whose names are not in keep.
// Directories and dangling links are ignored. A missing dir has nothing to
// prune.
func pruneCandidates(dir string, keep map[string]struct{}) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	var stale []string
	for _, entry := range entries {
		name := entry.Name()
		if _, ok := keep[name]; ok {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat output %s: %w", name, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		stale = append(stale, name)
	}
	return stale, nil
}

// prune deletes the regular files in dir that are not in keep and returns
// their names in order.
func prune(dir string, keep map[string]struct{}) ([]string, error) {
	stale, err := pruneCandidates(dir, keep)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0, len(stale))
	for _, name := range stale {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("remove stale output %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
