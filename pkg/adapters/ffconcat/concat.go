// Package ffconcat joins media files with ffmpeg's concat demuxer using
// stream copy, so no source is re-encoded.
package ffconcat

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/framestitch/pkg/adapters/ffmpeg"
	"github.com/user/framestitch/pkg/ports"
)

// ErrConcatFailed is returned when ffmpeg cannot produce the output file.
var ErrConcatFailed = errors.New("ffconcat: concatenation failed")

// Options configures the concatenator.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
}

// Concatenator implements ports.Concatenator with ffmpeg.
type Concatenator struct {
	ffmpegPath string
}

// New locates ffmpeg and returns a Concatenator.
func New(opts Options) (*Concatenator, error) {
	bin, err := ffmpeg.Find(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	return &Concatenator{ffmpegPath: bin}, nil
}

// Concatenate runs ffmpeg -f concat on manifestPath and writes outputPath.
func (c *Concatenator) Concatenate(ctx context.Context, manifestPath, outputPath string) error {
	_, err := ffmpeg.Run(ctx, c.ffmpegPath, Args(manifestPath, outputPath)...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConcatFailed, err)
	}
	return nil
}

// Args builds the ffmpeg arguments for a stream-copy concatenation.
func Args(manifestPath, outputPath string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-map", "0:v:0",
		"-c", "copy",
		outputPath,
	}
}

var _ ports.Concatenator = (*Concatenator)(nil)
