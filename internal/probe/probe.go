// Package probe resolves playback durations for catalog entries. Videos
// are probed with ffprobe; images use the configured slide duration.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Prober obtains the duration of a media file in seconds.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// FFProbe probes media containers with the ffprobe binary. It reads the
// container duration without decoding frames, so a probe is typically
// well under 100ms.
type FFProbe struct {
	// Binary is the ffprobe executable name or path. Empty means
	// "ffprobe" resolved via PATH.
	Binary string

	// Timeout bounds a single probe invocation.
	Timeout time.Duration
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe against path and returns the container duration.
func (p FFProbe) Probe(ctx context.Context, path string) (float64, error) {
	binary := p.Binary
	if binary == "" {
		binary = "ffprobe"
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("ffprobe timed out after %s for %s", timeout, path)
		}
		return 0, fmt.Errorf("ffprobe failed for %s: %w (%s)", path, err, bytes.TrimSpace(stderr.Bytes()))
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}
	if out.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe returned no duration for %s", path)
	}

	seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration %q for %s: %w", out.Format.Duration, path, err)
	}
	return seconds, nil
}
