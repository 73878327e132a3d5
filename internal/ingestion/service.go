package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/vodforge/internal/store"
	"github.com/your-org/vodforge/internal/transcode"
)

// Transcoder produces the full rendition ladder for one source file.
type Transcoder interface {
	EncodeAll(ctx context.Context, sourcePath string, specs []transcode.RenditionSpec, rootDir string) error
}

// DurationProber extracts the source duration without decoding.
type DurationProber interface {
	Duration(ctx context.Context, sourcePath string) (float64, error)
}

// ArtifactPublisher uploads local artifacts to durable object storage.
type ArtifactPublisher interface {
	PublishFile(ctx context.Context, localPath, key string) (string, error)
	PublishDirectory(ctx context.Context, root, prefix string) (map[string]string, error)
}

// VideoStore persists the catalog record. The pipeline only creates;
// reads belong to the retrieval layer.
type VideoStore interface {
	CreateVideoRecord(ctx context.Context, record *store.VideoRecord) error
}

// EventPublisher emits pipeline events. Satisfied by pkg/kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, key []byte, value []byte, headers map[string]string) error
}

// IngestRequest describes one upload to process. It lives for exactly one
// pipeline run; the local files it points at are removed on success.
type IngestRequest struct {
	SourcePath       string
	OriginalFilename string
	Title            string
	Description      string
	ThumbnailPath    string
	UserID           string
}

// Service runs the ingestion pipeline: validate, probe, transcode, build
// the master manifest, publish, persist the record, clean up.
type Service struct {
	transcoder Transcoder
	prober     DurationProber
	publisher  ArtifactPublisher
	videos     VideoStore
	events     EventPublisher
	logger     *zap.Logger
	workRoot   string
	tracer     trace.Tracer
}

type Params struct {
	Transcoder Transcoder
	Prober     DurationProber
	Publisher  ArtifactPublisher
	Videos     VideoStore
	Events     EventPublisher
	Logger     *zap.Logger
	WorkRoot   string
}

// NewService constructs the pipeline Service.
func NewService(p Params) *Service {
	return &Service{
		transcoder: p.Transcoder,
		prober:     p.Prober,
		publisher:  p.Publisher,
		videos:     p.Videos,
		events:     p.Events,
		logger:     p.Logger,
		workRoot:   p.WorkRoot,
		tracer:     otel.Tracer("vodforge/ingestion"),
	}
}

// Ingest runs the whole pipeline for one request and returns the created
// record. Concurrent calls are independent: each run owns a working
// directory keyed by its generated id.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*store.VideoRecord, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.run")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, &StageError{Stage: StageValidating, Err: err}
	}

	videoID := uuid.NewString()
	workDir := filepath.Join(s.workRoot, videoID)
	logger := s.logger.With(zap.String("video_id", videoID))
	span.SetAttributes(attribute.String("video.id", videoID))

	// Duration is cosmetic metadata: probing runs alongside the encodes
	// and its failure never aborts the run.
	durationCh := make(chan float64, 1)
	go func() {
		seconds, err := s.prober.Duration(ctx, req.SourcePath)
		if err != nil {
			logger.Warn("probe failed, recording unknown duration", zap.Error(err))
			seconds = 0
		}
		durationCh <- seconds
	}()

	specs := transcode.Plan()
	if err := s.runTranscode(ctx, req.SourcePath, specs, workDir, logger); err != nil {
		return nil, err
	}

	if err := transcode.WriteMasterPlaylist(specs, workDir); err != nil {
		return nil, &StageError{Stage: StageManifestBuilding, Err: err}
	}

	urls, thumbnailURL, err := s.runPublish(ctx, req, specs, videoID, workDir, logger)
	if err != nil {
		return nil, err
	}

	record := &store.VideoRecord{
		ID:               videoID,
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		UserID:           req.UserID,
		VideoURLs:        urls,
		ThumbnailURL:     thumbnailURL,
		OriginalFilename: req.OriginalFilename,
		DurationSeconds:  <-durationCh,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.videos.CreateVideoRecord(ctx, record); err != nil {
		logger.Error("record persist failed, published objects orphaned",
			zap.String("prefix", videoID), zap.Error(err))
		return nil, &StageError{Stage: StageRecordPersisting, Err: err}
	}

	s.emitIngested(ctx, record, logger)
	s.cleanup(req, workDir, logger)

	logger.Info("ingestion complete",
		zap.Int("renditions", len(specs)),
		zap.Float64("duration_seconds", record.DurationSeconds))
	return record, nil
}

func validate(req IngestRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.SourcePath == "" {
		return fmt.Errorf("%w: source file is required", ErrValidation)
	}
	if _, err := os.Stat(req.SourcePath); err != nil {
		return fmt.Errorf("%w: source file not readable: %v", ErrValidation, err)
	}
	return nil
}

// runTranscode executes the whole ladder; any single rendition failure
// fails the stage and removes the partial output tree.
func (s *Service) runTranscode(ctx context.Context, sourcePath string, specs []transcode.RenditionSpec, workDir string, logger *zap.Logger) error {
	ctx, span := s.tracer.Start(ctx, "ingestion.transcode")
	defer span.End()

	if err := s.transcoder.EncodeAll(ctx, sourcePath, specs, workDir); err != nil {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logger.Warn("failed to remove partial transcode output", zap.Error(rmErr))
		}
		return &StageError{Stage: StageTranscoding, Err: err}
	}
	return nil
}

// runPublish uploads the package directory and, best-effort, the thumbnail.
func (s *Service) runPublish(ctx context.Context, req IngestRequest, specs []transcode.RenditionSpec, videoID, workDir string, logger *zap.Logger) (map[string]string, *string, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.publish")
	defer span.End()

	published, err := s.publisher.PublishDirectory(ctx, workDir, videoID)
	if err != nil {
		return nil, nil, &StageError{Stage: StagePublishing, Err: err}
	}

	urls := map[string]string{"master": published["index.m3u8"]}
	for _, spec := range specs {
		urls[spec.Label] = published[spec.Label+"/index.m3u8"]
	}

	var thumbnailURL *string
	if req.ThumbnailPath != "" {
		key := path.Join(videoID, "thumbnail"+strings.ToLower(filepath.Ext(req.ThumbnailPath)))
		url, err := s.publisher.PublishFile(ctx, req.ThumbnailPath, key)
		if err != nil {
			logger.Warn("thumbnail publish failed, continuing without it", zap.Error(err))
		} else {
			thumbnailURL = &url
		}
	}
	return urls, thumbnailURL, nil
}

func (s *Service) emitIngested(ctx context.Context, record *store.VideoRecord, logger *zap.Logger) {
	if s.events == nil {
		return
	}
	event := VideoIngestedEvent{
		VideoID:         record.ID,
		UserID:          record.UserID,
		Title:           record.Title,
		MasterURL:       record.VideoURLs["master"],
		DurationSeconds: record.DurationSeconds,
		CreatedAt:       record.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn("marshal ingested event", zap.Error(err))
		return
	}
	headers := map[string]string{"event_type": "video.ingested"}
	if err := s.events.Publish(ctx, []byte(record.ID), payload, headers); err != nil {
		logger.Warn("publish ingested event", zap.Error(err))
	}
}

// cleanup removes the run's transient local state. Failures are logged
// and never change the run's outcome: the record is already persisted.
func (s *Service) cleanup(req IngestRequest, workDir string, logger *zap.Logger) {
	targets := []string{req.SourcePath, req.ThumbnailPath, workDir}
	for _, target := range targets {
		if target == "" {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			logger.Warn("cleanup failed", zap.String("path", target), zap.Error(err))
		}
	}
}
