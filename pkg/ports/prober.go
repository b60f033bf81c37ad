package ports

// MediaInfo describes the video track of a media file.
type MediaInfo struct {
	Codec       string // "h264", "hevc", "av1" or "unknown"
	Width       int
	Height      int
	FrameCount  int
	Timescale   uint32
	DurationSec float64
}

// FPS returns the average frame rate, or 0 when the duration is unknown.
func (m MediaInfo) FPS() float64 {
	if m.DurationSec <= 0 {
		return 0
	}
	return float64(m.FrameCount) / m.DurationSec
}

// MediaProber inspects media files without decoding them.
type MediaProber interface {
	// Probe reads container metadata of the first video track in path.
	Probe(path string) (MediaInfo, error)
}
