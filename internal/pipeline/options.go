package pipeline

import (
	"errors"
	"log/slog"
	"strings"

	"cathub/internal/config"
	"cathub/internal/logging"
	"cathub/internal/media"
	"cathub/internal/services/ffmpeg"
)

var defaultTags = []string{"funny", "cute"}

// Options configures a Pipeline.
type Options struct {
	InputDir     string
	OutputDir    string
	MetadataPath string
	Classifier   *media.Classifier
	Encoder      ffmpeg.Encoder
	DefaultTags  []string
	Logger       *slog.Logger
	Observer     Observer
}

// OptionsFromConfig maps the loaded configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config, encoder ffmpeg.Encoder, logger *slog.Logger) Options {
	return Options{
		InputDir:     cfg.Paths.InputDir,
		OutputDir:    cfg.Paths.OutputDir,
		MetadataPath: cfg.Paths.MetadataFile,
		Classifier: media.NewClassifier(media.Extensions{
			Video:       cfg.Media.VideoExtensions,
			Convertible: cfg.Media.ImageExtensions,
			Passthrough: cfg.Media.PassthroughExtensions,
		}),
		Encoder:     encoder,
		DefaultTags: cfg.Metadata.DefaultTags,
		Logger:      logger,
	}
}

// Pipeline runs syncs for one input/output folder pair.
type Pipeline struct {
	inputDir     string
	outputDir    string
	metadataPath string
	classifier   *media.Classifier
	encoder      ffmpeg.Encoder
	defaultTags  []string
	logger       *slog.Logger
	observer     Observer
}

// New validates opts and constructs a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if strings.TrimSpace(opts.InputDir) == "" {
		return nil, errors.New("input directory required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, errors.New("output directory required")
	}
	if strings.TrimSpace(opts.MetadataPath) == "" {
		return nil, errors.New("metadata path required")
	}
	if opts.Encoder == nil {
		return nil, errors.New("encoder required")
	}

	p := &Pipeline{
		inputDir:     opts.InputDir,
		outputDir:    opts.OutputDir,
		metadataPath: opts.MetadataPath,
		classifier:   opts.Classifier,
		encoder:      opts.Encoder,
		defaultTags:  opts.DefaultTags,
		logger:       opts.Logger,
		observer:     opts.Observer,
	}
	if p.classifier == nil {
		p.classifier = media.NewClassifier(media.DefaultExtensions())
	}
	if p.defaultTags == nil {
		p.defaultTags = append([]string(nil), defaultTags...)
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	return p, nil
}
