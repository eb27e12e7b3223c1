package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		return errors.New("paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.MetadataFile) == "" {
		return errors.New("paths.metadata_file must be set")
	}
	if filepath.Clean(c.Paths.InputDir) == filepath.Clean(c.Paths.OutputDir) {
		return fmt.Errorf("paths.input_dir and paths.output_dir must differ (both %q)", c.Paths.InputDir)
	}
	if filepath.Dir(c.Paths.MetadataFile) == filepath.Clean(c.Paths.OutputDir) {
		return fmt.Errorf("paths.metadata_file %q must not live inside paths.output_dir; stale outputs there are pruned", c.Paths.MetadataFile)
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.VideoCRF < 0 || c.Encoder.VideoCRF > 63 {
		return fmt.Errorf("encoder.video_crf must be between 0 and 63, got %d", c.Encoder.VideoCRF)
	}
	if c.Encoder.ImageQuality < 0 || c.Encoder.ImageQuality > 100 {
		return fmt.Errorf("encoder.image_quality must be between 0 and 100, got %d", c.Encoder.ImageQuality)
	}
	return nil
}

func (c *Config) validateMedia() error {
	owner := make(map[string]string)
	sets := []struct {
		name string
		exts []string
	}{
		{"media.video_extensions", c.Media.VideoExtensions},
		{"media.image_extensions", c.Media.ImageExtensions},
		{"media.passthrough_extensions", c.Media.PassthroughExtensions},
	}
	for _, set := range sets {
		for _, ext := range set.exts {
			if previous, exists := owner[ext]; exists {
				return fmt.Errorf("extension %q listed in both %s and %s", ext, previous, set.name)
			}
			owner[ext] = set.name
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
