package transcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMasterPlaylistContent(t *testing.T) {
	want := `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=640x360
360p/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=1400000,RESOLUTION=854x480
480p/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2800000,RESOLUTION=1280x720
720p/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080
1080p/index.m3u8
`
	require.Equal(t, want, MasterPlaylist(Plan()))
}

func TestMasterPlaylistSubsetKeepsOrder(t *testing.T) {
	specs := Plan()[:2]
	got := MasterPlaylist(specs)
	require.Contains(t, got, "360p/index.m3u8")
	require.Contains(t, got, "480p/index.m3u8")
	require.NotContains(t, got, "720p")
}

func TestWriteMasterPlaylist(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, WriteMasterPlaylist(Plan(), root))

	data, err := os.ReadFile(filepath.Join(root, "index.m3u8"))
	require.NoError(t, err)
	require.Equal(t, MasterPlaylist(Plan()), string(data))
}

func TestWriteMasterPlaylistMissingDir(t *testing.T) {
	err := WriteMasterPlaylist(Plan(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
