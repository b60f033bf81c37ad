package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framestitch/pkg/adapters/mp4probe"
	"github.com/user/framestitch/pkg/framestitch"
)

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Show video track information and global frame offsets"),
		ArgsUsage: "SOURCE...",
		Flags:     commonFlags(),
		Action:    runProbe,
	}
}

func runProbe(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errNoSources
	}

	prober := mp4probe.New()
	spans := make([]framestitch.Span, len(paths))
	codecs := make([]string, len(paths))
	sizes := make([]string, len(paths))
	for i, p := range paths {
		info, err := prober.Probe(p)
		if err != nil {
			return &framestitch.ProbeError{Source: i, Path: p, Err: err}
		}
		spans[i] = framestitch.Span{Path: p, Frames: info.FrameCount, DurationSec: info.DurationSec}
		codecs[i] = info.Codec
		sizes[i] = fmt.Sprintf("%dx%d@%.2f", info.Width, info.Height, info.FPS())
	}
	timeline := framestitch.NewTimeline(spans)

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\t%s\t%s\t%s\t%s\t%s\t%s\n",
		l10n.T("Source"), l10n.T("Codec"), l10n.T("Size"), l10n.T("Frames"), l10n.T("Duration"), l10n.T("Global range"))
	for i, s := range timeline.Spans() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.3fs\t[%d, %d)\n",
			i, s.Path, codecs[i], sizes[i], s.Frames, s.DurationSec, s.Start, s.End())
	}
	fmt.Fprintf(w, "\t%s\t\t\t%d\t\t\n", l10n.T("Total"), timeline.TotalFrames())
	return w.Flush()
}
