package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeStore records puts and can fail after acceptAtMost successful ones.
type fakeStore struct {
	mu           sync.Mutex
	puts         map[string]string // key -> content type
	acceptAtMost int               // negative means unlimited
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: map[string]string{}, acceptAtMost: -1}
}

func (f *fakeStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acceptAtMost >= 0 && len(f.puts) >= f.acceptAtMost {
		return "", errors.New("store unavailable")
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	f.puts[key] = contentType
	return "https://cdn.example/" + key, nil
}

func (f *fakeStore) Close() error { return nil }

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestPublishDirectoryKeySetMatchesTree(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"index.m3u8":          "#EXTM3U",
		"360p/index.m3u8":     "#EXTM3U",
		"360p/segment000.ts":  "seg",
		"360p/segment001.ts":  "seg",
		"1080p/index.m3u8":    "#EXTM3U",
		"1080p/segment000.ts": "seg",
	}
	writeTree(t, root, files)

	store := newFakeStore()
	pub := NewPublisher(store, zaptest.NewLogger(t))

	urls, err := pub.PublishDirectory(context.Background(), root, "videos/abc")
	require.NoError(t, err)

	require.Len(t, urls, len(files))
	for rel := range files {
		require.Equal(t, "https://cdn.example/videos/abc/"+rel, urls[rel])
	}
	require.Equal(t, "application/x-mpegURL", store.puts["videos/abc/index.m3u8"])
	require.Equal(t, "video/MP2T", store.puts["videos/abc/360p/segment000.ts"])
}

func TestPublishDirectoryFailFast(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.ts": "1", "b.ts": "2", "c.ts": "3", "d.ts": "4",
	})

	store := newFakeStore()
	store.acceptAtMost = 2
	pub := NewPublisher(store, zaptest.NewLogger(t))

	urls, err := pub.PublishDirectory(context.Background(), root, "videos/abc")
	require.Error(t, err)
	require.Nil(t, urls)

	// The objects uploaded before the failure stay put; no rollback.
	require.Len(t, store.puts, 2)
}

func TestPublishFile(t *testing.T) {
	dir := t.TempDir()
	thumb := filepath.Join(dir, "thumb.png")
	require.NoError(t, os.WriteFile(thumb, []byte("png"), 0o644))

	store := newFakeStore()
	pub := NewPublisher(store, zaptest.NewLogger(t))

	url, err := pub.PublishFile(context.Background(), thumb, "videos/abc/thumbnail.png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/videos/abc/thumbnail.png", url)
	require.Equal(t, "image/png", store.puts["videos/abc/thumbnail.png"])
}

func TestPublishFileMissing(t *testing.T) {
	pub := NewPublisher(newFakeStore(), zaptest.NewLogger(t))
	_, err := pub.PublishFile(context.Background(), filepath.Join(t.TempDir(), "nope.png"), "k")
	require.Error(t, err)
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"index.m3u8":    "application/x-mpegURL",
		"segment001.TS": "video/MP2T",
		"poster.JPG":    "image/jpeg",
		"poster.webp":   "image/webp",
		"video.mp4":     "video/mp4",
		"mystery.bin":   "application/octet-stream",
		"noext":         "application/octet-stream",
	}
	for name, want := range cases {
		require.Equal(t, want, ContentTypeFor(name), name)
	}
}
