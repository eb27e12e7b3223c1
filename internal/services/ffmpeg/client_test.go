package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"cathub/internal/config"
	"cathub/internal/services"
)

func stubCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string{name}, args...)
		}
		helperArgs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], helperArgs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/ffmpeg"))
	if cli.Binary() != "/opt/ffmpeg" {
		t.Fatalf("expected binary override to be applied, got %q", cli.Binary())
	}
	if NewCLI(WithBinary("  ")).Binary() != "ffmpeg" {
		t.Fatal("blank override should keep default binary")
	}
}

func TestVideoArgs(t *testing.T) {
	got := NewCLI().VideoArgs("in/cat.mp4", "out/cat.webm")
	want := []string{"-i", "in/cat.mp4", "-vcodec", "libvpx-vp9", "-crf", "35", "-b:v", "0", "-an", "-y", "out/cat.webm"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("video args = %v, want %v", got, want)
	}
}

func TestImageArgs(t *testing.T) {
	got := NewCLI().ImageArgs("in/dog.jpg", "out/dog.webp")
	want := []string{"-i", "in/dog.jpg", "-vcodec", "libwebp", "-q:v", "80", "-y", "out/dog.webp"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("image args = %v, want %v", got, want)
	}
}

func TestNewFromConfigAppliesEncoderSection(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.Binary = "/usr/local/bin/ffmpeg"
	cfg.Encoder.VideoCRF = 31
	cfg.Encoder.StripAudio = false
	cfg.Encoder.ImageQuality = 90

	cli := NewFromConfig(&cfg)
	if cli.Binary() != "/usr/local/bin/ffmpeg" {
		t.Fatalf("binary = %q", cli.Binary())
	}
	video := strings.Join(cli.VideoArgs("a", "b"), " ")
	if !strings.Contains(video, "-crf 31") || strings.Contains(video, "-an") {
		t.Fatalf("unexpected video args: %s", video)
	}
	if image := strings.Join(cli.ImageArgs("a", "b"), " "); !strings.Contains(image, "-q:v 90") {
		t.Fatalf("unexpected image args: %s", image)
	}
}

func TestTranscodeVideoSuccess(t *testing.T) {
	var captured []string
	stubCommand(t, "success", &captured)

	dir := t.TempDir()
	output := filepath.Join(dir, "cat.webm")
	result := NewCLI().TranscodeVideo(context.Background(), filepath.Join(dir, "cat.mp4"), output)
	if !result.Succeeded() {
		t.Fatalf("expected success, got %v (log %q)", result.Err, result.Log)
	}
	if captured[0] != "ffmpeg" || captured[len(captured)-1] != output {
		t.Fatalf("unexpected invocation %v", captured)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected helper to create output: %v", err)
	}
	if !strings.Contains(result.Log, "encoded") {
		t.Fatalf("expected captured log, got %q", result.Log)
	}
}

func TestTranscodeImageFailureCapturesLog(t *testing.T) {
	stubCommand(t, "fail", nil)

	dir := t.TempDir()
	result := NewCLI().TranscodeImage(context.Background(), filepath.Join(dir, "dog.png"), filepath.Join(dir, "dog.webp"))
	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if !errors.Is(result.Err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", result.Err)
	}
	if !strings.Contains(result.Log, "Invalid data found") {
		t.Fatalf("expected stderr in log, got %q", result.Log)
	}
}

func TestTranscodeMissingBinary(t *testing.T) {
	dir := t.TempDir()
	for _, binary := range []string{"cathub-no-such-ffmpeg", filepath.Join(dir, "missing", "ffmpeg")} {
		cli := NewCLI(WithBinary(binary))
		result := cli.TranscodeVideo(context.Background(), filepath.Join(dir, "a.mp4"), filepath.Join(dir, "a.webm"))
		if !errors.Is(result.Err, services.ErrNotFound) {
			t.Fatalf("binary %q: expected not found error, got %v", binary, result.Err)
		}
	}
}

func TestTranscodeRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if result := cli.TranscodeImage(context.Background(), "", "out.webp"); !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty input, got %v", result.Err)
	}
	if result := cli.TranscodeImage(context.Background(), "in.png", ""); !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty output, got %v", result.Err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "Invalid data found when processing input")
		os.Exit(1)
	default:
		if len(args) == 0 {
			os.Exit(2)
		}
		if err := os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("encoded")
		os.Exit(0)
	}
}
