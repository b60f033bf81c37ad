package ports

import (
	"image"
	"image/color"
)

// Renderer draws frame sheets and synthetic frames.
type Renderer interface {
	// CreateCanvas creates a drawing canvas filled with bg.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas provides drawing operations for compositing frames.
type Canvas interface {
	// DrawImage draws an image with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y int)

	// DrawRect draws a filled rectangle.
	DrawRect(x, y, w, h int, c color.Color)

	// DrawText draws text centered on (x, y).
	DrawText(text string, x, y int, c color.Color)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// ImageFormat specifies an image encoding.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatJPEG
	FormatBMP
	FormatTIFF
)

// String returns the file extension of the format without the dot.
func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "png"
	}
}

// ParseImageFormat parses a format name. Unknown names map to FormatPNG.
func ParseImageFormat(s string) ImageFormat {
	switch s {
	case "jpg", "jpeg":
		return FormatJPEG
	case "bmp":
		return FormatBMP
	case "tif", "tiff":
		return FormatTIFF
	default:
		return FormatPNG
	}
}
