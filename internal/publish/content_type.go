package publish

import (
	"path/filepath"
	"strings"
)

// contentTypes maps file extensions to the MIME types players and
// browsers expect for served artifacts.
var contentTypes = map[string]string{
	".m3u8": "application/x-mpegURL",
	".ts":   "video/MP2T",
	".mp4":  "video/mp4",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentTypeFor derives the upload content type from the file extension.
// Unknown extensions fall back to a generic binary type.
func ContentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}
