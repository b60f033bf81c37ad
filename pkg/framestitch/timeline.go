package framestitch

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrIndexOutOfRange is returned when a source or frame index lies outside the timeline.
var ErrIndexOutOfRange = errors.New("framestitch: index out of range")

// Span is one source's place in the concatenated stream.
type Span struct {
	Path        string
	Start       int // first global frame index
	Frames      int
	DurationSec float64
	Timestamps  []float64 // requested sample times, source-local seconds
}

// End returns the global index one past the span's last frame.
func (s Span) End() int {
	return s.Start + s.Frames
}

// Timeline maps between source-local and global frame indices.
type Timeline struct {
	spans []Span
	total int
}

// NewTimeline lays spans end to end in the given order. Start fields are recomputed.
func NewTimeline(spans []Span) *Timeline {
	t := &Timeline{spans: make([]Span, len(spans))}
	for i, s := range spans {
		s.Start = t.total
		s.Timestamps = append([]float64(nil), s.Timestamps...)
		t.spans[i] = s
		t.total += s.Frames
	}
	return t
}

// Spans returns a copy of the spans.
func (t *Timeline) Spans() []Span {
	return append([]Span(nil), t.spans...)
}

// TotalFrames returns the frame count of the concatenated stream.
func (t *Timeline) TotalFrames() int {
	return t.total
}

// GlobalIndex converts a frame index local to source into a global index.
func (t *Timeline) GlobalIndex(source, local int) (int, error) {
	if source < 0 || source >= len(t.spans) {
		return 0, fmt.Errorf("%w: source %d of %d", ErrIndexOutOfRange, source, len(t.spans))
	}
	s := t.spans[source]
	if local < 0 || local >= s.Frames {
		return 0, fmt.Errorf("%w: frame %d of source %d with %d frames", ErrIndexOutOfRange, local, source, s.Frames)
	}
	return s.Start + local, nil
}

// Locate returns the source and source-local index of a global frame index.
func (t *Timeline) Locate(global int) (source, local int, err error) {
	if global < 0 || global >= t.total {
		return 0, 0, fmt.Errorf("%w: frame %d of %d", ErrIndexOutOfRange, global, t.total)
	}
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].End() > global })
	return i, global - t.spans[i].Start, nil
}

// IndexAt returns the global index of the frame shown at seconds into source,
// assuming a constant frame rate. Times outside the source are clamped.
func (t *Timeline) IndexAt(source int, seconds float64) (int, error) {
	if source < 0 || source >= len(t.spans) {
		return 0, fmt.Errorf("%w: source %d of %d", ErrIndexOutOfRange, source, len(t.spans))
	}
	s := t.spans[source]
	if s.Frames == 0 {
		return 0, fmt.Errorf("%w: source %d has no frames", ErrIndexOutOfRange, source)
	}
	local := 0
	if s.DurationSec > 0 {
		fps := float64(s.Frames) / s.DurationSec
		local = int(math.Floor(seconds*fps + 1e-9))
	}
	local = max(0, min(local, s.Frames-1))
	return s.Start + local, nil
}

// RequestedBatch returns the global indices of every recorded timestamp,
// source by source in the order they were recorded.
func (t *Timeline) RequestedBatch() (Batch, error) {
	var indices []int
	for i, s := range t.spans {
		for _, ts := range s.Timestamps {
			idx, err := t.IndexAt(i, ts)
			if err != nil {
				return Batch{}, err
			}
			indices = append(indices, idx)
		}
	}
	return NewBatch(indices...), nil
}
