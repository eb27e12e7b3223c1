package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status: %#v", results[2])
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	ffmpegPath := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(ffmpegPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{{Name: "FFmpeg", Command: "ffmpeg"}})
	if !results[0].Available || results[0].Command != ffmpegPath {
		t.Fatalf("expected resolved ffmpeg path %q, got %#v", ffmpegPath, results[0])
	}
}

const encoderListing = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 V....D libwebp              libwebp WebP image (codec webp)
 A....D aac                  AAC (Advanced Audio Coding)
`

func stubEncoders(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "DEPS_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestCheckFFmpegEncodersAvailable(t *testing.T) {
	stubEncoders(t, "list")
	status := CheckFFmpegEncoders(context.Background(), "ffmpeg", "libvpx-vp9", "libwebp")
	if !status.Available {
		t.Fatalf("expected encoders available, got detail %q", status.Detail)
	}
}

func TestCheckFFmpegEncodersMissing(t *testing.T) {
	stubEncoders(t, "list")
	status := CheckFFmpegEncoders(context.Background(), "ffmpeg", "libvpx-vp9", "libaom-av1")
	if status.Available {
		t.Fatal("expected missing encoder to be reported")
	}
	if status.Detail != "missing encoders: libaom-av1" {
		t.Fatalf("unexpected detail %q", status.Detail)
	}
}

func TestCheckFFmpegEncodersCommandFails(t *testing.T) {
	stubEncoders(t, "fail")
	status := CheckFFmpegEncoders(context.Background(), "ffmpeg", "libwebp")
	if status.Available || status.Detail == "" {
		t.Fatalf("expected failure detail, got %#v", status)
	}
}

func TestParseEncoderNamesIgnoresHeader(t *testing.T) {
	names := parseEncoderNames([]byte(encoderListing))
	if _, ok := names["Video"]; ok {
		t.Fatal("header legend parsed as encoder")
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 encoders, got %v", names)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("DEPS_HELPER_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "ffmpeg: unrecognized option")
		os.Exit(1)
	default:
		fmt.Print(encoderListing)
		os.Exit(0)
	}
}
