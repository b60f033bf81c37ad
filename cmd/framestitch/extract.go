package main

import (
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framestitch/pkg/adapters/filesink"
	"github.com/user/framestitch/pkg/adapters/ggrenderer"
	"github.com/user/framestitch/pkg/adapters/nullsink"
	"github.com/user/framestitch/pkg/framestitch"
	"github.com/user/framestitch/pkg/ports"
)

const defaultBatchSize = 64

func extractCommand() *cli.Command {
	flags := append(commonFlags(), serverFlags()...)
	flags = append(flags,
		&cli.StringFlag{Name: "frames", Aliases: []string{"f"}, Usage: l10n.T("Global frame indices, e.g. 0,5,10-15"), Category: l10n.T(catOutput)},
		&cli.StringSliceFlag{Name: "at", Usage: l10n.T("Sample time as SOURCE:SECONDS (repeatable)"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output directory"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "format", Usage: l10n.T("Image format (png, jpg, bmp, tiff)"), Category: l10n.T(catOutput)},
		&cli.IntFlag{Name: "batch-size", Value: defaultBatchSize, Usage: l10n.T("Frames requested per decode batch"), Category: l10n.T(catServer)},
		&cli.BoolFlag{Name: "dry-run", Usage: l10n.T("Decode frames without writing images"), Category: l10n.T(catOutput)},
	)

	return &cli.Command{
		Name:      "extract",
		Usage:     l10n.T("Extract frames from the joined sources as images"),
		ArgsUsage: "SOURCE...",
		Flags:     flags,
		Action:    runExtract,
	}
}

func runExtract(c *cli.Context) (err error) {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errNoSources
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}

	sources := pathsToSources(paths)
	var indices []int
	if at := c.StringSlice("at"); len(at) > 0 {
		grouped, err := parseTimestamps(at, len(sources))
		if err != nil {
			return err
		}
		for i := range sources {
			sources[i].timestamps = grouped[i]
		}
	} else {
		indices, err = parseFrameSpec(c.String("frames"))
		if err != nil {
			return err
		}
	}

	ctx := c.Context
	srv, err := e.openServer(ctx, sources)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, srv.Close())
	}()

	if indices == nil {
		batch, err := srv.Timeline().RequestedBatch()
		if err != nil {
			return err
		}
		indices = batch.Indices()
	}

	dir := e.cfg.OutputDir
	if c.IsSet("output") {
		dir = c.String("output")
	}
	var sink ports.FrameSink = nullsink.New()
	if !c.Bool("dry-run") {
		sink = filesink.New(dir, e.cfg.Format(), e.fs, ggrenderer.New())
	}

	batchSize := c.Int("batch-size")
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	e.log.Info("Extracting %d frames from %d sources", len(indices), len(paths))
	bar := newProgressBar(len(indices), l10n.T("Extracting"), c.Bool("quiet"))
	for start := 0; start < len(indices); start += batchSize {
		end := min(start+batchSize, len(indices))
		result, err := srv.GetFrames(ctx, framestitch.NewBatch(indices[start:end]...))
		if err != nil {
			return err
		}
		for i, f := range result.Frames() {
			if _, err := sink.SaveFrame(start+i, f); err != nil {
				return fmt.Errorf("save frame %d: %w", f.Index, err)
			}
		}
		_ = bar.Add(end - start)
	}
	_ = bar.Finish()

	if sink.Enabled() {
		e.log.Info("Saved %d frames to %s", len(indices), dir)
	}
	return nil
}
