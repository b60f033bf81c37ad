package ports

import (
	"context"
	"image"
	"strings"
)

// Device names the compute device a decoder handle is bound to.
// Accepted forms are "cpu", "auto", or an accelerator name with an optional
// ordinal such as "cuda:1".
type Device string

const (
	DeviceCPU          Device = "cpu"
	DeviceAuto         Device = "auto"
	DeviceCUDA         Device = "cuda"
	DeviceVAAPI        Device = "vaapi"
	DeviceQSV          Device = "qsv"
	DeviceVideoToolbox Device = "videotoolbox"
)

// Kind returns the accelerator part of the device name ("cuda" for "cuda:1").
func (d Device) Kind() Device {
	kind, _, _ := strings.Cut(string(d), ":")
	if kind == "" {
		return DeviceCPU
	}
	return Device(strings.ToLower(kind))
}

// Ordinal returns the device ordinal ("1" for "cuda:1"), or "" if none was given.
func (d Device) Ordinal() string {
	_, ordinal, _ := strings.Cut(string(d), ":")
	return ordinal
}

// Frame is one decoded frame in height, width, channel (HWC) byte layout.
type Frame struct {
	Index    int // Frame index in the decoded stream
	Width    int
	Height   int
	Channels int // 3 for RGB, 4 for RGBA
	Pix      []byte
}

// Image converts the frame into an image.RGBA.
// Frames with fewer than three channels are treated as grayscale.
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	if f.Channels <= 0 || len(f.Pix) < f.Width*f.Height*f.Channels {
		return img
	}
	for i := 0; i < f.Width*f.Height; i++ {
		src := f.Pix[i*f.Channels : (i+1)*f.Channels]
		dst := img.Pix[i*4 : i*4+4]
		switch {
		case f.Channels >= 4:
			copy(dst, src[:4])
		case f.Channels == 3:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 255
		default:
			dst[0], dst[1], dst[2], dst[3] = src[0], src[0], src[0], 255
		}
	}
	return img
}

// DecoderOpener opens decoding sessions against a media file.
type DecoderOpener interface {
	// Open opens an independent decoding session on path, bound to device.
	Open(path string, device Device) (DecoderHandle, error)
}

// FileHolder is implemented by openers whose handles keep the file open for
// their whole lifetime. Only then may the path be removed while handles are
// still in use.
type FileHolder interface {
	KeepsFileOpen() bool
}

// DecoderHandle is an open, stateful decoding session.
// A handle is not safe for concurrent use.
type DecoderHandle interface {
	// GetFrames decodes the frames at the given indices and returns them
	// in the same order. Indices may repeat.
	GetFrames(ctx context.Context, indices []int) ([]Frame, error)

	// Close releases the session.
	Close() error
}
