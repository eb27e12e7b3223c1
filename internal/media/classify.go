package media

import (
	"path/filepath"
	"strings"
)

// Kind is the processing class of a raw file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindVideo
	KindConvertibleImage
	KindPassthroughImage
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindConvertibleImage:
		return "convertible-image"
	case KindPassthroughImage:
		return "passthrough-image"
	default:
		return "unsupported"
	}
}

const (
	videoOutputExt = ".webm"
	imageOutputExt = ".webp"
)

// Extensions lists the dotted, lowercase extensions for each kind.
type Extensions struct {
	Video       []string
	Convertible []string
	Passthrough []string
}

// DefaultExtensions returns the built-in extension table.
func DefaultExtensions() Extensions {
	return Extensions{
		Video:       []string{".mp4", ".webm", ".mov", ".avi", ".mkv", ".mpeg", ".ts"},
		Convertible: []string{".jpg", ".jpeg", ".png"},
		Passthrough: []string{".gif", ".webp"},
	}
}

// Classifier maps file names to kinds and output names.
type Classifier struct {
	table map[string]Kind
}

// NewClassifier builds a classifier from an extension table. Entries are
// matched case-insensitively; when an extension appears under several kinds
// the first one (video, convertible, passthrough) wins.
func NewClassifier(exts Extensions) *Classifier {
	table := make(map[string]Kind)
	register := func(kind Kind, values []string) {
		for _, value := range values {
			ext := strings.ToLower(strings.TrimSpace(value))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if _, exists := table[ext]; !exists {
				table[ext] = kind
			}
		}
	}
	register(KindVideo, exts.Video)
	register(KindConvertibleImage, exts.Convertible)
	register(KindPassthroughImage, exts.Passthrough)
	return &Classifier{table: table}
}

// Classify returns the kind of the named file based on its extension.
func (c *Classifier) Classify(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return KindUnsupported
	}
	if kind, ok := c.table[ext]; ok {
		return kind
	}
	return KindUnsupported
}

// OutputName returns the artifact name produced for a raw file together with
// its kind. Unsupported files yield an empty name.
func (c *Classifier) OutputName(name string) (string, Kind) {
	kind := c.Classify(name)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	switch kind {
	case KindVideo:
		return base + videoOutputExt, kind
	case KindConvertibleImage:
		return base + imageOutputExt, kind
	case KindPassthroughImage:
		return name, kind
	default:
		return "", kind
	}
}

// IsHidden reports whether a directory entry name is hidden (dot-prefixed).
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
