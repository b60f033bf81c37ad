package ports

import "image"

// FrameSink receives extracted frames and rendered images.
type FrameSink interface {
	// Enabled reports whether the sink writes anything.
	Enabled() bool

	// SaveFrame stores the frame found at a request position and returns its location.
	SaveFrame(position int, frame Frame) (string, error)

	// SaveImage stores an image under name (without extension) and returns its location.
	SaveImage(name string, img image.Image) (string, error)
}
