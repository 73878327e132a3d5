package transcode

import "fmt"

// RenditionSpec describes one target output of the encode ladder.
type RenditionSpec struct {
	Label            string
	Width            int
	Height           int
	VideoBitrateKbps int
	AudioBitrateKbps int
	SegmentSeconds   int
}

// Resolution renders the spec as WxH for playlist attributes.
func (r RenditionSpec) Resolution() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Bandwidth is the BANDWIDTH attribute declared in the master playlist,
// in bits per second. It matches the video bitrate passed to the encoder.
func (r RenditionSpec) Bandwidth() int {
	return r.VideoBitrateKbps * 1000
}

// segmentSeconds applies to every rung of the ladder; HLS VOD playlists
// carry the complete index up front.
const segmentSeconds = 15

var ladder = []RenditionSpec{
	{Label: "360p", Width: 640, Height: 360, VideoBitrateKbps: 800, AudioBitrateKbps: 96, SegmentSeconds: segmentSeconds},
	{Label: "480p", Width: 854, Height: 480, VideoBitrateKbps: 1400, AudioBitrateKbps: 128, SegmentSeconds: segmentSeconds},
	{Label: "720p", Width: 1280, Height: 720, VideoBitrateKbps: 2800, AudioBitrateKbps: 128, SegmentSeconds: segmentSeconds},
	{Label: "1080p", Width: 1920, Height: 1080, VideoBitrateKbps: 5000, AudioBitrateKbps: 192, SegmentSeconds: segmentSeconds},
}

// Plan returns the fixed rendition ladder, ordered lowest to highest
// quality. Every ingestion run produces the same set; changing the ladder
// means redeploying this table.
func Plan() []RenditionSpec {
	specs := make([]RenditionSpec, len(ladder))
	copy(specs, ladder)
	return specs
}
