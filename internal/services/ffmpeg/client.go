package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"cathub/internal/config"
	"cathub/internal/services"
)

var commandContext = exec.CommandContext

// Result describes one transcode invocation.
type Result struct {
	Input   string
	Output  string
	Args    []string
	Elapsed time.Duration
	// Log holds the combined stdout and stderr of the subprocess.
	Log string
	Err error
}

// Succeeded reports whether the subprocess exited with status zero.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Encoder defines the transcoding behaviour the pipeline depends on.
type Encoder interface {
	TranscodeVideo(ctx context.Context, inputPath, outputPath string) Result
	TranscodeImage(ctx context.Context, inputPath, outputPath string) Result
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = strings.TrimSpace(binary)
		}
	}
}

// WithVideoSettings overrides the VP9 codec, CRF and bitrate ceiling.
func WithVideoSettings(codec string, crf int, bitrate string, stripAudio bool) Option {
	return func(c *CLI) {
		if codec != "" {
			c.videoCodec = codec
		}
		if crf >= 0 {
			c.videoCRF = crf
		}
		if bitrate != "" {
			c.videoBitrate = bitrate
		}
		c.stripAudio = stripAudio
	}
}

// WithImageSettings overrides the WebP codec and quality.
func WithImageSettings(codec string, quality int) Option {
	return func(c *CLI) {
		if codec != "" {
			c.imageCodec = codec
		}
		if quality >= 0 {
			c.imageQuality = quality
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary       string
	videoCodec   string
	videoCRF     int
	videoBitrate string
	stripAudio   bool
	imageCodec   string
	imageQuality int
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		binary:       "ffmpeg",
		videoCodec:   "libvpx-vp9",
		videoCRF:     35,
		videoBitrate: "0",
		stripAudio:   true,
		imageCodec:   "libwebp",
		imageQuality: 80,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// NewFromConfig builds a CLI client from the encoder section of cfg.
func NewFromConfig(cfg *config.Config) *CLI {
	if cfg == nil {
		return NewCLI()
	}
	enc := cfg.Encoder
	return NewCLI(
		WithBinary(cfg.FFmpegBinary()),
		WithVideoSettings(enc.VideoCodec, enc.VideoCRF, enc.VideoBitrate, enc.StripAudio),
		WithImageSettings(enc.ImageCodec, enc.ImageQuality),
	)
}

// Binary returns the configured executable.
func (c *CLI) Binary() string {
	return c.binary
}

// VideoArgs returns the argument vector used for video transcodes.
func (c *CLI) VideoArgs(inputPath, outputPath string) []string {
	args := []string{
		"-i", inputPath,
		"-vcodec", c.videoCodec,
		"-crf", strconv.Itoa(c.videoCRF),
		"-b:v", c.videoBitrate,
	}
	if c.stripAudio {
		args = append(args, "-an")
	}
	return append(args, "-y", outputPath)
}

// ImageArgs returns the argument vector used for image transcodes.
func (c *CLI) ImageArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-vcodec", c.imageCodec,
		"-q:v", strconv.Itoa(c.imageQuality),
		"-y", outputPath,
	}
}

// TranscodeVideo encodes inputPath to a VP9 WebM at outputPath.
func (c *CLI) TranscodeVideo(ctx context.Context, inputPath, outputPath string) Result {
	return c.run(ctx, "transcode_video", inputPath, outputPath, c.VideoArgs(inputPath, outputPath))
}

// TranscodeImage encodes inputPath to a WebP at outputPath.
func (c *CLI) TranscodeImage(ctx context.Context, inputPath, outputPath string) Result {
	return c.run(ctx, "transcode_image", inputPath, outputPath, c.ImageArgs(inputPath, outputPath))
}

func (c *CLI) run(ctx context.Context, operation, inputPath, outputPath string, args []string) Result {
	result := Result{Input: inputPath, Output: outputPath, Args: args}
	if strings.TrimSpace(inputPath) == "" {
		result.Err = services.Wrap(services.ErrValidation, "ffmpeg", operation, "input path required", nil)
		return result
	}
	if strings.TrimSpace(outputPath) == "" {
		result.Err = services.Wrap(services.ErrValidation, "ffmpeg", operation, "output path required", nil)
		return result
	}

	var combined bytes.Buffer
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	start := time.Now()
	err := cmd.Run()
	result.Elapsed = time.Since(start)
	result.Log = combined.String()
	if err != nil {
		result.Err = classifyRunError(ctx, operation, c.binary, err)
	}
	return result
}

func classifyRunError(ctx context.Context, operation, binary string, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrNotFound, "ffmpeg", operation, fmt.Sprintf("binary %q not found", binary), err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return services.Wrap(services.ErrTransient, "ffmpeg", operation, "interrupted", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, fmt.Sprintf("exit status %d", exitErr.ExitCode()), err)
	}
	return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, "failed to run", err)
}

var _ Encoder = (*CLI)(nil)
