package transcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Executor turns one source file into segmented HLS renditions by driving
// an external encoder.
type Executor struct {
	bin    string
	runner Runner
	logger *zap.Logger
}

// NewExecutor constructs an Executor. bin is the encoder binary name or path.
func NewExecutor(bin string, runner Runner, logger *zap.Logger) *Executor {
	return &Executor{bin: bin, runner: runner, logger: logger}
}

// encodeArgs builds the encoder invocation for one rendition: scale to the
// spec's resolution, H.264/AAC at the spec's bitrates, VOD HLS output with
// zero-padded numbered segments and a rendition-level index playlist.
func encodeArgs(sourcePath string, spec RenditionSpec, outDir string) []string {
	return []string{
		"-i", sourcePath,
		"-vf", fmt.Sprintf("scale=w=%d:h=%d", spec.Width, spec.Height),
		"-c:v", "libx264",
		"-b:v", fmt.Sprintf("%dk", spec.VideoBitrateKbps),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", spec.AudioBitrateKbps),
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%d", spec.SegmentSeconds),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(outDir, "segment%03d.ts"),
		"-start_number", "0",
		filepath.Join(outDir, "index.m3u8"),
	}
}

// Encode produces a single rendition into outDir, which must already exist.
func (e *Executor) Encode(ctx context.Context, sourcePath string, spec RenditionSpec, outDir string) error {
	start := time.Now()
	if err := e.runner.Run(ctx, e.bin, encodeArgs(sourcePath, spec, outDir)...); err != nil {
		return fmt.Errorf("encode %s: %w", spec.Label, err)
	}
	e.logger.Debug("rendition encoded",
		zap.String("rendition", spec.Label),
		zap.Duration("took", time.Since(start)))
	return nil
}

// EncodeAll runs every rendition concurrently, each writing into
// {rootDir}/{label}. Renditions are independent: they read the same
// immutable source and write to disjoint directories. The first failure
// cancels the remaining encodes and fails the whole stage; a partial
// ladder is not a usable package.
func (e *Executor) EncodeAll(ctx context.Context, sourcePath string, specs []RenditionSpec, rootDir string) error {
	for _, spec := range specs {
		if err := os.MkdirAll(filepath.Join(rootDir, spec.Label), 0o755); err != nil {
			return fmt.Errorf("create rendition dir %s: %w", spec.Label, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		spec := spec
		g.Go(func() error {
			return e.Encode(gctx, sourcePath, spec, filepath.Join(rootDir, spec.Label))
		})
	}
	return g.Wait()
}
