package framestitch

import (
	"errors"
	"fmt"

	"github.com/user/framestitch/pkg/ports"
)

// ErrMixedGeometry is returned by Result.Tensor when frames differ in size.
var ErrMixedGeometry = errors.New("framestitch: frames differ in geometry")

// Batch is a shaped collection of frame indices, stored flat in row-major order.
type Batch struct {
	shape   []int
	indices []int
}

// NewBatch creates a one-dimensional batch.
func NewBatch(indices ...int) Batch {
	return Batch{
		shape:   []int{len(indices)},
		indices: append([]int(nil), indices...),
	}
}

// NewShapedBatch creates a batch of the given shape from row-major indices.
// An empty shape describes a scalar and takes exactly one index.
func NewShapedBatch(shape []int, indices []int) (Batch, error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return Batch{}, fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		}
		size *= d
	}
	if size != len(indices) {
		return Batch{}, fmt.Errorf("%w: shape %v holds %d indices, got %d", ErrShapeMismatch, shape, size, len(indices))
	}
	return Batch{
		shape:   append([]int{}, shape...),
		indices: append([]int(nil), indices...),
	}, nil
}

// Shape returns a copy of the batch shape.
func (b Batch) Shape() []int {
	return append([]int{}, b.shape...)
}

// Indices returns a copy of the flattened indices.
func (b Batch) Indices() []int {
	return append([]int(nil), b.indices...)
}

// Len returns the number of indices.
func (b Batch) Len() int {
	return len(b.indices)
}

// Result holds decoded frames aligned one to one with a Batch.
type Result struct {
	shape  []int
	frames []ports.Frame
}

func newResult(shape []int, frames []ports.Frame) *Result {
	return &Result{shape: shape, frames: frames}
}

// Shape returns the request shape.
func (r *Result) Shape() []int {
	return append([]int{}, r.shape...)
}

// Frames returns the frames in flattened request order.
func (r *Result) Frames() []ports.Frame {
	return r.frames
}

// Len returns the number of frames.
func (r *Result) Len() int {
	return len(r.frames)
}

// At returns the frame at a position in the request shape.
func (r *Result) At(pos ...int) (ports.Frame, error) {
	if len(pos) != len(r.shape) {
		return ports.Frame{}, fmt.Errorf("%w: position %v for shape %v", ErrShapeMismatch, pos, r.shape)
	}
	offset := 0
	for i, p := range pos {
		if p < 0 || p >= r.shape[i] {
			return ports.Frame{}, fmt.Errorf("framestitch: position %v out of range for shape %v", pos, r.shape)
		}
		offset = offset*r.shape[i] + p
	}
	return r.frames[offset], nil
}

// Tensor packs all frames into one buffer of shape Shape()+[H, W, C].
func (r *Result) Tensor() ([]byte, []int, error) {
	if len(r.frames) == 0 {
		return nil, append(r.Shape(), 0, 0, 0), nil
	}
	first := r.frames[0]
	frameSize := first.Width * first.Height * first.Channels
	buf := make([]byte, 0, frameSize*len(r.frames))
	for _, f := range r.frames {
		if f.Width != first.Width || f.Height != first.Height || f.Channels != first.Channels {
			return nil, nil, fmt.Errorf("%w: frame %d is %dx%dx%d, want %dx%dx%d", ErrMixedGeometry,
				f.Index, f.Width, f.Height, f.Channels, first.Width, first.Height, first.Channels)
		}
		if len(f.Pix) != frameSize {
			return nil, nil, fmt.Errorf("%w: frame %d has %d bytes, want %d", ErrMixedGeometry, f.Index, len(f.Pix), frameSize)
		}
		buf = append(buf, f.Pix...)
	}
	return buf, append(r.Shape(), first.Height, first.Width, first.Channels), nil
}
