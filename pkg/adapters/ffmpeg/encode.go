package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"os/exec"
	"strings"
)

// EncodeFrames encodes frames into an H.264 MP4 at outputPath by piping raw
// RGBA into ffmpeg. All frames are drawn at the size of the first one.
func EncodeFrames(ctx context.Context, bin, outputPath string, frames []image.Image, fps float64) error {
	if len(frames) == 0 {
		return fmt.Errorf("ffmpeg: no frames to encode")
	}
	bounds := frames[0].Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%.2f", fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-g", "1", // every frame a keyframe keeps per-frame seeks exact
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outputPath,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg: start: %w", err)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	var writeErr error
	for _, img := range frames {
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		if _, err := stdin.Write(rgba.Pix); err != nil {
			writeErr = fmt.Errorf("ffmpeg: write frame: %w", err)
			break
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %v\nstderr: %s", ErrRunFailed, err, strings.TrimSpace(stderr.String()))
	}
	return writeErr
}
