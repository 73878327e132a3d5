package ingestion

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHandler(t *testing.T, f *fixture) *HTTPHandler {
	t.Helper()
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	return NewHTTPHandler(f.service, zaptest.NewLogger(t), uploadDir, 1<<20, 1<<20)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile(name, name+".mp4")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleIngestCreated(t *testing.T) {
	f := newFixture(t)
	handler := newTestHandler(t, f)

	body, contentType := multipartBody(t,
		map[string]string{"title": "Demo", "description": "A demo"},
		map[string][]byte{"video": []byte("mp4 bytes")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "Demo", payload["title"])
	require.Equal(t, "user-1", payload["userId"])
	urls, ok := payload["videoUrls"].(map[string]any)
	require.True(t, ok)
	require.Len(t, urls, 5)
}

func TestHandleIngestMissingVideo(t *testing.T) {
	f := newFixture(t)
	handler := newTestHandler(t, f)

	body, contentType := multipartBody(t, map[string]string{"title": "Demo"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "video file is required")
}

func TestHandleIngestMissingTitle(t *testing.T) {
	f := newFixture(t)
	handler := newTestHandler(t, f)

	body, contentType := multipartBody(t, nil, map[string][]byte{"video": []byte("mp4")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "title is required")
	require.Empty(t, f.videos.created)
}

func TestHandleIngestPipelineFailureIsOpaque(t *testing.T) {
	f := newFixture(t)
	f.transcoder.failLabel = "360p"
	handler := newTestHandler(t, f)

	body, contentType := multipartBody(t,
		map[string]string{"title": "Demo"},
		map[string][]byte{"video": []byte("mp4")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "video upload failed", payload["message"])
}

func TestHandleHealth(t *testing.T) {
	f := newFixture(t)
	handler := newTestHandler(t, f)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
