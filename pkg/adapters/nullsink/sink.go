// Package nullsink provides a frame sink that discards everything.
package nullsink

import (
	"image"

	"github.com/user/framestitch/pkg/ports"
)

// Sink is a no-op implementation of ports.FrameSink.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveFrame does nothing.
func (s *Sink) SaveFrame(position int, frame ports.Frame) (string, error) {
	return "", nil
}

// SaveImage does nothing.
func (s *Sink) SaveImage(name string, img image.Image) (string, error) {
	return "", nil
}

// Ensure Sink implements ports.FrameSink
var _ ports.FrameSink = (*Sink)(nil)
