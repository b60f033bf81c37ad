package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framestitch/pkg/adapters/ffmpeg"
	"github.com/user/framestitch/pkg/adapters/ggrenderer"
	"github.com/user/framestitch/pkg/config"
	"github.com/user/framestitch/pkg/ports"
)

func synthCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output MP4 file path (required)"), Category: l10n.T(catOutput)},
		&cli.IntFlag{Name: "frames", Usage: l10n.T("Number of frames"), Category: l10n.T(catOutput)},
		&cli.IntFlag{Name: "width", Usage: l10n.T("Frame width (even)"), Category: l10n.T(catOutput)},
		&cli.IntFlag{Name: "height", Usage: l10n.T("Frame height (even)"), Category: l10n.T(catOutput)},
		&cli.Float64Flag{Name: "fps", Usage: l10n.T("Frame rate"), Category: l10n.T(catOutput)},
		&cli.IntFlag{Name: "start", Usage: l10n.T("Number printed on the first frame"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "color", Value: "#4ade80", Usage: l10n.T("Accent color (hex, e.g., #4ade80)"), Category: l10n.T(catOutput)},
	)

	return &cli.Command{
		Name:   "synth",
		Usage:  l10n.T("Generate a numbered test clip"),
		Flags:  flags,
		Action: runSynth,
	}
}

func runSynth(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	s := e.cfg.Synth
	if c.IsSet("frames") {
		s.Frames = c.Int("frames")
	}
	if c.IsSet("width") {
		s.Width = c.Int("width")
	}
	if c.IsSet("height") {
		s.Height = c.Int("height")
	}
	if c.IsSet("fps") {
		s.FPS = c.Float64("fps")
	}
	if s.Frames <= 0 || s.Width <= 0 || s.Height <= 0 || s.FPS <= 0 {
		return fmt.Errorf("%w: synth needs positive frames, size and fps", config.ErrInvalid)
	}
	if s.Width%2 != 0 || s.Height%2 != 0 {
		return fmt.Errorf("%w: synth size must be even, got %dx%d", config.ErrInvalid, s.Width, s.Height)
	}

	bin, err := e.findFFmpeg()
	if err != nil {
		return err
	}

	images := numberedFrames(ggrenderer.New(), s, c.Int("start"), config.ParseColor(c.String("color")))
	out := c.String("output")
	if err := ffmpeg.EncodeFrames(c.Context, bin, out, images, s.FPS); err != nil {
		return err
	}

	e.log.Info("Synthesized %d frames to %s", len(images), out)
	return nil
}

// numberedFrames draws frames whose brightness rises with the frame number,
// each labelled with start+i and a progress bar in accent.
func numberedFrames(renderer ports.Renderer, s config.SynthConfig, start int, accent color.Color) []image.Image {
	images := make([]image.Image, s.Frames)
	barHeight := max(2, s.Height/16)
	for i := range images {
		shade := uint8(i * 255 / max(1, s.Frames-1))
		canvas := renderer.CreateCanvas(s.Width, s.Height, color.RGBA{R: shade, G: shade, B: shade, A: 255})

		label := 255 - shade
		canvas.DrawText(fmt.Sprintf("#%d", start+i), s.Width/2, s.Height/2, color.RGBA{R: label, G: label, B: label, A: 255})
		canvas.DrawRect(0, s.Height-barHeight, s.Width*(i+1)/s.Frames, barHeight, accent)

		images[i] = canvas.ToImage()
	}
	return images
}
