// Package mp4probe reads video track metadata from MP4 files with mp4ff.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/framestitch/pkg/ports"
)

const (
	CodecH264    = "h264"
	CodecHEVC    = "hevc"
	CodecAV1     = "av1"
	CodecUnknown = "unknown"
)

var (
	// ErrNoVideoTrack is returned when the file has no video track.
	ErrNoVideoTrack = errors.New("mp4probe: no video track found")

	// ErrNoSamples is returned when the video track holds no frames.
	ErrNoSamples = errors.New("mp4probe: video track has no samples")
)

// Prober implements ports.MediaProber for MP4 files.
type Prober struct{}

// New creates a new Prober.
func New() *Prober {
	return &Prober{}
}

// Probe opens path and reads its video track metadata.
func (p *Prober) Probe(path string) (ports.MediaInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("mp4probe: open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeReader reads video track metadata from an io.ReadSeeker.
func ProbeReader(reader io.ReadSeeker) (ports.MediaInfo, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("mp4probe: decode mp4: %w", err)
	}

	var info ports.MediaInfo
	if mp4File.IsFragmented() {
		info, err = probeFragmented(mp4File)
	} else {
		info, err = probeProgressive(mp4File)
	}
	if err != nil {
		return ports.MediaInfo{}, err
	}
	if info.FrameCount == 0 {
		return ports.MediaInfo{}, ErrNoSamples
	}
	return info, nil
}

func probeProgressive(mp4File *mp4.File) (ports.MediaInfo, error) {
	if mp4File.Moov == nil {
		return ports.MediaInfo{}, fmt.Errorf("mp4probe: no moov box found")
	}

	trak := findVideoTrack(mp4File.Moov.Traks)
	if trak == nil {
		return ports.MediaInfo{}, ErrNoVideoTrack
	}

	info := trackInfo(trak)
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil {
		return ports.MediaInfo{}, fmt.Errorf("mp4probe: no stsz box found")
	}
	info.FrameCount = int(stbl.Stsz.SampleNumber)

	if trak.Mdia.Mdhd != nil && info.Timescale > 0 {
		info.DurationSec = float64(trak.Mdia.Mdhd.Duration) / float64(info.Timescale)
	}
	return info, nil
}

func probeFragmented(mp4File *mp4.File) (ports.MediaInfo, error) {
	if mp4File.Init == nil || mp4File.Init.Moov == nil {
		return ports.MediaInfo{}, fmt.Errorf("mp4probe: no init segment found")
	}

	trak := findVideoTrack(mp4File.Init.Moov.Traks)
	if trak == nil {
		return ports.MediaInfo{}, ErrNoVideoTrack
	}
	info := trackInfo(trak)
	trackID := trak.Tkhd.TrackID

	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var totalDur uint64
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return ports.MediaInfo{}, fmt.Errorf("mp4probe: get samples: %w", err)
				}
				info.FrameCount += len(samples)
				for _, s := range samples {
					totalDur += uint64(s.Dur)
				}
			}
		}
	}

	if info.Timescale > 0 {
		info.DurationSec = float64(totalDur) / float64(info.Timescale)
	}
	return info, nil
}

// findVideoTrack returns the first track with a "vide" handler and a sample table.
func findVideoTrack(traks []*mp4.TrakBox) *mp4.TrakBox {
	for _, trak := range traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
			continue
		}
		return trak
	}
	return nil
}

func trackInfo(trak *mp4.TrakBox) ports.MediaInfo {
	info := ports.MediaInfo{Codec: CodecUnknown, Timescale: 1000}
	if trak.Mdia.Mdhd != nil {
		info.Timescale = trak.Mdia.Mdhd.Timescale
	}

	stsd := trak.Mdia.Minf.Stbl.Stsd
	if stsd == nil {
		return info
	}
	for _, child := range stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			info.Codec = CodecH264
		case "hvc1", "hev1":
			info.Codec = CodecHEVC
		case "av01":
			info.Codec = CodecAV1
		default:
			continue
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		break
	}
	return info
}

var _ ports.MediaProber = (*Prober)(nil)
