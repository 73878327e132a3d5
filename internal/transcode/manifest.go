package transcode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MasterPlaylist renders the top-level HLS playlist referencing every
// rendition's sub-playlist, in the ladder's ascending quality order.
func MasterPlaylist(specs []RenditionSpec) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	for _, spec := range specs {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%s\n", spec.Bandwidth(), spec.Resolution())
		fmt.Fprintf(&b, "%s/index.m3u8\n", spec.Label)
	}
	return b.String()
}

// WriteMasterPlaylist writes the master playlist to {rootDir}/index.m3u8.
// Called once per run, after every rendition encode has returned.
func WriteMasterPlaylist(specs []RenditionSpec, rootDir string) error {
	path := filepath.Join(rootDir, "index.m3u8")
	if err := os.WriteFile(path, []byte(MasterPlaylist(specs)), 0o644); err != nil {
		return fmt.Errorf("write master playlist: %w", err)
	}
	return nil
}
