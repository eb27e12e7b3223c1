package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadStatus reports how a document was obtained.
type LoadStatus int

const (
	// StatusLoaded means an existing document was parsed.
	StatusLoaded LoadStatus = iota
	// StatusCreated means no document existed and a default one was made.
	StatusCreated
	// StatusRepaired means the existing document could not be parsed and was
	// replaced by a default one, discarding its assignments.
	StatusRepaired
)

func (s LoadStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRepaired:
		return "repaired"
	default:
		return "loaded"
	}
}

// LoadResult is the outcome of Load.
type LoadResult struct {
	Document *Document
	Status   LoadStatus
	// ParseErr carries the decode failure when Status is StatusRepaired.
	ParseErr error
}

// Load reads the document at path. Absence and parse failures are not errors:
// they yield a default document seeded with defaultTags. Only I/O failures
// other than absence are returned.
func Load(path string, defaultTags []string) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LoadResult{Document: NewDocument(defaultTags), Status: StatusCreated}, nil
		}
		return LoadResult{}, fmt.Errorf("read metadata file: %w", err)
	}

	doc, err := Decode(data, defaultTags)
	if err != nil {
		return LoadResult{Document: NewDocument(defaultTags), Status: StatusRepaired, ParseErr: err}, nil
	}
	return LoadResult{Document: doc, Status: StatusLoaded}, nil
}

// Save writes the whole document to path via a temp file and rename.
func Save(path string, doc *Document) error {
	if doc == nil {
		return errors.New("metadata document is nil")
	}
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
