package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framestitch/pkg/adapters/ffconcat"
	"github.com/user/framestitch/pkg/adapters/ffdecoder"
	"github.com/user/framestitch/pkg/adapters/ffmpeg"
	"github.com/user/framestitch/pkg/adapters/logger"
	"github.com/user/framestitch/pkg/adapters/mp4probe"
	"github.com/user/framestitch/pkg/adapters/osfilesystem"
	"github.com/user/framestitch/pkg/adapters/tempres"
	"github.com/user/framestitch/pkg/config"
	"github.com/user/framestitch/pkg/framestitch"
	"github.com/user/framestitch/pkg/ports"
)

// Flag categories
const (
	catServer  = "Frame server"
	catOutput  = "Output"
	catLogging = "Logging"
)

// commonFlags are shared by every command.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH, then PATH)"), Category: l10n.T(catServer)},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(catLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(catLogging)},
	}
}

// serverFlags configure the frame server.
func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "parallelism", Aliases: []string{"n"}, Usage: l10n.T("Number of parallel decoders"), Category: l10n.T(catServer)},
		&cli.StringFlag{Name: "device", Aliases: []string{"d"}, Usage: l10n.T("Decode device (cpu, auto, cuda, cuda:N, vaapi, qsv, videotoolbox)"), Category: l10n.T(catServer)},
		&cli.StringFlag{Name: "temp-dir", Usage: l10n.T("Directory for the manifest and the joined video"), Category: l10n.T(catServer)},
	}
}

// env holds what every command needs.
type env struct {
	cfg config.Config
	log ports.Logger
	fs  *osfilesystem.FileSystem
}

// newEnv loads configuration and applies flag overrides.
func newEnv(c *cli.Context) (*env, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("parallelism") {
		cfg.Parallelism = c.Int("parallelism")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("temp-dir") {
		cfg.TempDir = c.String("temp-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("format") {
		cfg.OutputFormat = c.String("format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	return &env{
		cfg: cfg,
		log: log,
		fs:  osfilesystem.NewWithTempDir(cfg.TempDir),
	}, nil
}

// findFFmpeg locates ffmpeg from the configured path, the environment or PATH.
func (e *env) findFFmpeg() (string, error) {
	return ffmpeg.Find(e.cfg.FFmpegPath)
}

// source is one input video with optional sample times.
type source struct {
	path       string
	timestamps []float64
}

// openServer concatenates sources and starts a frame server over them.
func (e *env) openServer(ctx context.Context, sources []source) (*framestitch.Server, error) {
	bin, err := e.findFFmpeg()
	if err != nil {
		return nil, err
	}
	concat, err := ffconcat.New(ffconcat.Options{FFmpegPath: bin})
	if err != nil {
		return nil, err
	}
	prober := mp4probe.New()
	opener, err := ffdecoder.New(ffdecoder.Options{FFmpegPath: bin, Prober: prober})
	if err != nil {
		return nil, err
	}

	opts := e.cfg.ServerOptions(e.log)
	opts.Device = ffmpeg.ResolveDevice(ctx, bin, opts.Device)

	builder := framestitch.NewBuilder(concat, opener, tempres.New(e.fs), e.fs, framestitch.BuilderOptions{
		Server: opts,
		Prober: prober,
		Logger: e.log,
	})
	for _, s := range sources {
		if len(s.timestamps) > 0 {
			builder.AddWithTimestamps(s.path, s.timestamps)
		} else {
			builder.Add(s.path)
		}
	}
	return builder.Finalize(ctx)
}

// errNoSources is returned when a command is given no input videos.
var errNoSources = errors.New("no source videos given")

func pathsToSources(paths []string) []source {
	sources := make([]source, len(paths))
	for i, p := range paths {
		sources[i] = source{path: p}
	}
	return sources
}
