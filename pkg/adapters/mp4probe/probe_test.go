package mp4probe

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framestitch/pkg/adapters/ffmpeg"
)

func TestProbe_MissingFile(t *testing.T) {
	_, err := New().Probe(filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestProbeReader_Garbage(t *testing.T) {
	_, err := ProbeReader(bytes.NewReader([]byte("this is not an mp4 file at all")))
	if err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestProbe_EncodedClip(t *testing.T) {
	bin, err := ffmpeg.Find("")
	if err != nil {
		t.Skip("ffmpeg not available")
	}

	frames := make([]image.Image, 12)
	for i := range frames {
		frames[i] = image.NewRGBA(image.Rect(0, 0, 64, 48))
	}
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := ffmpeg.EncodeFrames(context.Background(), bin, path, frames, 12); err != nil {
		t.Fatalf("encode: %v", err)
	}

	info, err := New().Probe(path)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Codec != CodecH264 {
		t.Errorf("expected h264, got %s", info.Codec)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("expected 64x48, got %dx%d", info.Width, info.Height)
	}
	if info.FrameCount != 12 {
		t.Errorf("expected 12 frames, got %d", info.FrameCount)
	}
	if info.DurationSec < 0.9 || info.DurationSec > 1.1 {
		t.Errorf("expected ~1s duration, got %.3f", info.DurationSec)
	}
}
