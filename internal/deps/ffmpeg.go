package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

const encoderProbeTimeout = 10 * time.Second

// CheckFFmpegEncoders reports whether the ffmpeg binary was built with every
// named encoder. It runs "ffmpeg -hide_banner -encoders" and scans the table
// it prints.
func CheckFFmpegEncoders(ctx context.Context, binary string, encoders ...string) Status {
	result := Status{
		Name:        "FFmpeg encoders",
		Command:     strings.TrimSpace(binary),
		Description: "Required codecs: " + strings.Join(encoders, ", "),
	}
	if result.Command == "" {
		result.Detail = "command not configured"
		return result
	}

	probeCtx, cancel := context.WithTimeout(ctx, encoderProbeTimeout)
	defer cancel()

	cmd := commandContext(probeCtx, result.Command, "-hide_banner", "-encoders") //nolint:gosec
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		result.Detail = fmt.Sprintf("list encoders: %v", err)
		return result
	}

	available := parseEncoderNames(stdout.Bytes())
	var missing []string
	for _, name := range encoders {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		result.Detail = "missing encoders: " + strings.Join(missing, ", ")
		return result
	}
	result.Available = true
	return result
}

// parseEncoderNames extracts encoder names from "ffmpeg -encoders" output.
// Each table row is "<flags> <name> <description>"; the header ends at the
// " ------" separator line.
func parseEncoderNames(output []byte) map[string]struct{} {
	names := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(output))
	inTable := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !inTable {
			if strings.HasPrefix(line, "------") {
				inTable = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		names[fields[1]] = struct{}{}
	}
	return names
}
