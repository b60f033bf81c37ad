package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framestitch/pkg/adapters/filesink"
	"github.com/user/framestitch/pkg/adapters/ggrenderer"
	"github.com/user/framestitch/pkg/framestitch"
	"github.com/user/framestitch/pkg/ports"
	"github.com/user/framestitch/pkg/sheet"
)

// maxSheetFrames bounds the automatic sampling when no frames are given.
const maxSheetFrames = 16

func sheetCommand() *cli.Command {
	flags := append(commonFlags(), serverFlags()...)
	flags = append(flags,
		&cli.StringFlag{Name: "frames", Aliases: []string{"f"}, Usage: l10n.T("Global frame indices, e.g. 0,5,10-15"), Category: l10n.T(catOutput)},
		&cli.IntFlag{Name: "every", Usage: l10n.T("Take every Nth frame when --frames is not given"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "sheet.png", Usage: l10n.T("Output image path"), Category: l10n.T(catOutput)},
		&cli.IntFlag{Name: "columns", Usage: l10n.T("Number of columns"), Category: l10n.T(catOutput)},
		&cli.IntFlag{Name: "thumb-width", Usage: l10n.T("Thumbnail width in pixels"), Category: l10n.T(catOutput)},
	)

	return &cli.Command{
		Name:      "sheet",
		Usage:     l10n.T("Render a contact sheet of frames from the joined sources"),
		ArgsUsage: "SOURCE...",
		Flags:     flags,
		Action:    runSheet,
	}
}

func runSheet(c *cli.Context) (err error) {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errNoSources
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	if c.IsSet("columns") {
		e.cfg.Sheet.Columns = c.Int("columns")
	}
	if c.IsSet("thumb-width") {
		e.cfg.Sheet.ThumbWidth = c.Int("thumb-width")
	}

	ctx := c.Context
	srv, err := e.openServer(ctx, pathsToSources(paths))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, srv.Close())
	}()

	var indices []int
	if spec := c.String("frames"); spec != "" {
		if indices, err = parseFrameSpec(spec); err != nil {
			return err
		}
	} else {
		total := srv.Timeline().TotalFrames()
		every := c.Int("every")
		if every <= 0 {
			every = (total + maxSheetFrames - 1) / maxSheetFrames
		}
		indices = everyNth(total, every)
	}

	result, err := srv.GetFrames(ctx, framestitch.NewBatch(indices...))
	if err != nil {
		return err
	}

	renderer := ggrenderer.New()
	composer := sheet.NewComposer(renderer, e.log, e.cfg.SheetOptions(), 0)
	img, err := composer.Compose(ctx, result.Frames())
	if err != nil {
		return err
	}

	out := c.String("output")
	ext := filepath.Ext(out)
	format := ports.ParseImageFormat(strings.ToLower(strings.TrimPrefix(ext, ".")))
	sink := filesink.New(filepath.Dir(out), format, e.fs, renderer)
	path, err := sink.SaveImage(strings.TrimSuffix(filepath.Base(out), ext), img)
	if err != nil {
		return err
	}

	e.log.Info("Contact sheet saved to %s", path)
	return nil
}
