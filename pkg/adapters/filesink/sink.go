// Package filesink writes extracted frames to image files.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/framestitch/pkg/ports"
)

// Sink saves frames as image files in a directory.
type Sink struct {
	baseDir  string
	format   ports.ImageFormat
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new Sink.
func New(baseDir string, format ports.ImageFormat, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		format:   format,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// FrameName returns the file name used for the frame at a request position.
func FrameName(position, index int, format ports.ImageFormat) string {
	return fmt.Sprintf("frame-%04d-%06d.%s", position, index, format)
}

// SaveFrame encodes a decoded frame and writes it.
func (s *Sink) SaveFrame(position int, frame ports.Frame) (string, error) {
	data, err := s.renderer.EncodeImage(frame.Image(), s.format)
	if err != nil {
		return "", fmt.Errorf("encode frame %d: %w", frame.Index, err)
	}
	return s.write(FrameName(position, frame.Index, s.format), data)
}

// SaveImage encodes an image and writes it as <name>.<ext>.
func (s *Sink) SaveImage(name string, img image.Image) (string, error) {
	data, err := s.renderer.EncodeImage(img, s.format)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return s.write(name+"."+s.format.String(), data)
}

func (s *Sink) write(name string, data []byte) (string, error) {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return "", err
	}
	path := filepath.Join(s.baseDir, name)
	if err := s.fs.WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Ensure Sink implements ports.FrameSink
var _ ports.FrameSink = (*Sink)(nil)
