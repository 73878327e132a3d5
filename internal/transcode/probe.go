package transcode

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Probe extracts container-level metadata from a source file via an
// external inspector, without decoding the media.
type Probe struct {
	bin    string
	runner Runner
}

// NewProbe constructs a Probe. bin is the inspector binary name or path.
func NewProbe(bin string, runner Runner) *Probe {
	return &Probe{bin: bin, runner: runner}
}

// Duration returns the source duration in seconds. Callers treat failure
// as "unknown": duration is cosmetic metadata and never blocks ingestion.
func (p *Probe) Duration(ctx context.Context, sourcePath string) (float64, error) {
	out, err := p.runner.Output(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		sourcePath,
	)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse probed duration %q: %w", out, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("probed negative duration %f", seconds)
	}
	return seconds, nil
}
