package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPHandler exposes the ingestion endpoint. Authentication happens
// upstream; the opaque user identity arrives in the X-User-ID header.
type HTTPHandler struct {
	service      *Service
	logger       *zap.Logger
	uploadDir    string
	maxSizeBytes int64
	formMemBytes int64
	router       chi.Router
}

// NewHTTPHandler constructs the HTTP handler and wires routes.
func NewHTTPHandler(service *Service, logger *zap.Logger, uploadDir string, maxSizeBytes, formMemBytes int64) *HTTPHandler {
	h := &HTTPHandler{
		service:      service,
		logger:       logger,
		uploadDir:    uploadDir,
		maxSizeBytes: maxSizeBytes,
		formMemBytes: formMemBytes,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Post("/api/v1/videos", h.handleIngest)

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *HTTPHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > 0 && r.ContentLength > h.maxSizeBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	if err := r.ParseMultipartForm(h.formMemBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	video, videoHeader, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer video.Close()

	if videoHeader.Size > h.maxSizeBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "video exceeds max size limit")
		return
	}

	sourcePath, err := h.saveUpload(video, videoHeader.Filename)
	if err != nil {
		h.logger.Error("save uploaded video", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "video upload failed")
		return
	}

	var thumbnailPath string
	if thumb, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumb.Close()
		thumbnailPath, err = h.saveUpload(thumb, thumbHeader.Filename)
		if err != nil {
			h.logger.Warn("save uploaded thumbnail", zap.Error(err))
			thumbnailPath = ""
		}
	}

	record, err := h.service.Ingest(r.Context(), IngestRequest{
		SourcePath:       sourcePath,
		OriginalFilename: videoHeader.Filename,
		Title:            r.FormValue("title"),
		Description:      r.FormValue("description"),
		ThumbnailPath:    thumbnailPath,
		UserID:           r.Header.Get("X-User-ID"),
	})
	if err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) && errors.Is(stageErr.Err, ErrValidation) {
			writeError(w, http.StatusBadRequest, stageErr.Err.Error())
			return
		}
		// Which stage failed is an operational detail; callers get a
		// uniform failure.
		h.logger.Error("ingestion failed",
			zap.String("stage", string(FailedStage(err))), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "video upload failed")
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// saveUpload streams a multipart part to the local upload directory under
// a collision-free name, keeping the original extension.
func (h *HTTPHandler) saveUpload(src multipart.File, originalName string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), filepath.Ext(originalName))
	dstPath := filepath.Join(h.uploadDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return dstPath, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"message": msg,
	})
}
