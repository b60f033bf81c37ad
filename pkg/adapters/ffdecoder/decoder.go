// Package ffdecoder serves random-access frames from an MP4 file by running
// ffmpeg with a frame-select filter and reading raw RGB from its stdout.
package ffdecoder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/user/framestitch/pkg/adapters/ffmpeg"
	"github.com/user/framestitch/pkg/adapters/mp4probe"
	"github.com/user/framestitch/pkg/ports"
)

// channels is the channel count of the rgb24 output format.
const channels = 3

// maxFilterBytes bounds one select expression. Linux rejects a single
// argument over 128 KiB, so larger requests are split across ffmpeg runs.
const maxFilterBytes = 32 << 10

var (
	// ErrHandleClosed is returned when a closed handle is used.
	ErrHandleClosed = errors.New("ffdecoder: handle closed")

	// ErrFrameOutOfRange is returned for indices outside [0, FrameCount).
	ErrFrameOutOfRange = errors.New("ffdecoder: frame index out of range")

	// ErrShortOutput is returned when ffmpeg emits fewer bytes than requested frames need.
	ErrShortOutput = errors.New("ffdecoder: short decoder output")
)

// Options configures the decoder.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string

	// Prober reads the frame count and geometry at open. Defaults to mp4probe.
	Prober ports.MediaProber
}

// Opener implements ports.DecoderOpener.
type Opener struct {
	ffmpegPath string
	prober     ports.MediaProber
}

// New locates ffmpeg and returns an Opener.
func New(opts Options) (*Opener, error) {
	bin, err := ffmpeg.Find(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	prober := opts.Prober
	if prober == nil {
		prober = mp4probe.New()
	}
	return &Opener{ffmpegPath: bin, prober: prober}, nil
}

// Open validates path and binds a handle to device.
// The file is probed at open so a corrupt artifact fails here, not on first use.
func (o *Opener) Open(path string, device ports.Device) (ports.DecoderHandle, error) {
	hwArgs, err := ffmpeg.HWAccelArgs(device)
	if err != nil {
		return nil, err
	}

	info, err := o.prober.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("ffdecoder: open %s: %w", path, err)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("ffdecoder: open %s: unknown frame size", path)
	}

	return &Handle{
		ffmpegPath: o.ffmpegPath,
		path:       path,
		hwArgs:     hwArgs,
		info:       info,
	}, nil
}

// KeepsFileOpen reports false: every GetFrames call starts ffmpeg on the path
// again, so the file must exist until the handle is closed.
func (o *Opener) KeepsFileOpen() bool {
	return false
}

// Handle is one decoding session. It is not safe for concurrent use.
type Handle struct {
	ffmpegPath string
	path       string
	hwArgs     []string
	info       ports.MediaInfo
	closed     bool
}

// Info returns the probed metadata of the bound file.
func (h *Handle) Info() ports.MediaInfo {
	return h.info
}

// GetFrames decodes the frames at indices and returns them in request order.
func (h *Handle) GetFrames(ctx context.Context, indices []int) ([]ports.Frame, error) {
	if h.closed {
		return nil, ErrHandleClosed
	}
	if len(indices) == 0 {
		return []ports.Frame{}, nil
	}

	for _, idx := range indices {
		if idx < 0 || idx >= h.info.FrameCount {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, idx, h.info.FrameCount)
		}
	}

	unique := uniqueSorted(indices)
	frameSize := h.info.Width * h.info.Height * channels
	out := make([]byte, 0, frameSize*len(unique))
	for _, r := range planRuns(unique) {
		data, err := ffmpeg.Run(ctx, h.ffmpegPath, h.args(r.filter)...)
		if err != nil {
			return nil, fmt.Errorf("ffdecoder: decode %d frames: %w", r.frames, err)
		}
		if len(data) < frameSize*r.frames {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrShortOutput, len(data), frameSize*r.frames)
		}
		out = append(out, data[:frameSize*r.frames]...)
	}

	decoded := make(map[int][]byte, len(unique))
	for i, idx := range unique {
		decoded[idx] = out[i*frameSize : (i+1)*frameSize]
	}

	frames := make([]ports.Frame, len(indices))
	for i, idx := range indices {
		frames[i] = ports.Frame{
			Index:    idx,
			Width:    h.info.Width,
			Height:   h.info.Height,
			Channels: channels,
			Pix:      decoded[idx],
		}
	}
	return frames, nil
}

// Close marks the handle closed. No process outlives a GetFrames call.
func (h *Handle) Close() error {
	h.closed = true
	return nil
}

func (h *Handle) args(filter string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	args = append(args, h.hwArgs...)
	args = append(args,
		"-i", h.path,
		"-map", "0:v:0",
		"-vf", filter,
		"-fps_mode", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	return args
}

// run is one ffmpeg invocation selecting frames frames.
type run struct {
	filter string
	frames int
}

// planRuns builds select filters for sorted unique indices. Consecutive
// indices collapse into one between() term, and terms are packed into
// filters of at most maxFilterBytes. Frames come out in stream order, so
// concatenating the runs' output follows unique.
func planRuns(unique []int) []run {
	const prefix, suffix = "select='", "'"

	var runs []run
	var b strings.Builder
	frames := 0
	flush := func() {
		if frames == 0 {
			return
		}
		b.WriteString(suffix)
		runs = append(runs, run{filter: b.String(), frames: frames})
		b.Reset()
		frames = 0
	}

	for i := 0; i < len(unique); {
		j := i
		for j+1 < len(unique) && unique[j+1] == unique[j]+1 {
			j++
		}
		term := `eq(n\,` + strconv.Itoa(unique[i]) + `)`
		if j > i {
			term = `between(n\,` + strconv.Itoa(unique[i]) + `\,` + strconv.Itoa(unique[j]) + `)`
		}

		if frames > 0 && b.Len()+1+len(term)+len(suffix) > maxFilterBytes {
			flush()
		}
		if frames == 0 {
			b.WriteString(prefix)
		} else {
			b.WriteByte('+')
		}
		b.WriteString(term)
		frames += j - i + 1
		i = j + 1
	}
	flush()
	return runs
}

func uniqueSorted(indices []int) []int {
	seen := make(map[int]bool, len(indices))
	unique := make([]int, 0, len(indices))
	for _, idx := range indices {
		if !seen[idx] {
			seen[idx] = true
			unique = append(unique, idx)
		}
	}
	sort.Ints(unique)
	return unique
}

var (
	_ ports.DecoderOpener = (*Opener)(nil)
	_ ports.FileHolder    = (*Opener)(nil)
	_ ports.DecoderHandle = (*Handle)(nil)
)
