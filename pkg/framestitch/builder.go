package framestitch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/user/framestitch/pkg/adapters/logger"
	"github.com/user/framestitch/pkg/manifest"
	"github.com/user/framestitch/pkg/ports"
)

const (
	manifestPrefix = "framestitch-manifest"
	artifactPrefix = "framestitch-artifact"
)

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	Server ServerOptions

	// Prober, when set, is used to build a Timeline of the sources.
	Prober ports.MediaProber

	Logger ports.Logger
}

type source struct {
	path       string
	timestamps []float64
}

// Builder collects source videos and turns them into a Server.
type Builder struct {
	concat ports.Concatenator
	opener ports.DecoderOpener
	temp   ports.TempProvider
	fs     ports.FileSystem
	opts   BuilderOptions
	logger ports.Logger

	sources []source
}

// NewBuilder creates a Builder.
func NewBuilder(
	concat ports.Concatenator,
	opener ports.DecoderOpener,
	temp ports.TempProvider,
	fs ports.FileSystem,
	opts BuilderOptions,
) *Builder {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	if opts.Server.Logger == nil {
		opts.Server.Logger = log
	}
	return &Builder{
		concat: concat,
		opener: opener,
		temp:   temp,
		fs:     fs,
		opts:   opts,
		logger: log.WithComponent("builder"),
	}
}

// Add appends a source video. The path is not checked.
func (b *Builder) Add(path string) {
	b.sources = append(b.sources, source{path: path})
}

// AddWithTimestamps appends a source video together with the source-local
// times, in seconds, the caller wants to sample. See Timeline.RequestedBatch.
func (b *Builder) AddWithTimestamps(path string, timestamps []float64) {
	b.sources = append(b.sources, source{
		path:       path,
		timestamps: append([]float64(nil), timestamps...),
	})
}

// Sources returns the added paths in order.
func (b *Builder) Sources() []string {
	paths := make([]string, len(b.sources))
	for i, s := range b.sources {
		paths[i] = s.path
	}
	return paths
}

// Finalize concatenates the sources into a temporary artifact and returns a
// Server that owns it. The manifest is removed on every path. On failure no
// server is returned and the artifact is removed.
func (b *Builder) Finalize(ctx context.Context) (srv *Server, err error) {
	if len(b.sources) == 0 {
		return nil, ErrEmptyInput
	}

	paths := make([]string, len(b.sources))
	for i, s := range b.sources {
		abs, err := b.fs.Abs(s.path)
		if err != nil {
			return nil, fmt.Errorf("framestitch: resolve source %d: %w", i, err)
		}
		paths[i] = abs
	}

	manifestRes, err := b.temp.Acquire(manifestPrefix, ".txt")
	if err != nil {
		return nil, &TempResourceError{Op: "acquire", Err: err}
	}
	defer func() {
		rerr := manifestRes.Release()
		if rerr == nil {
			return
		}
		b.logger.Warn("Failed to remove temporary file: %s", manifestRes.Path())
		cleanup := &TempResourceError{Op: "remove", Path: manifestRes.Path(), Err: rerr}
		if err != nil {
			err = withCleanup(err, cleanup)
			return
		}
		err = withCleanup(cleanup, srv.Close())
		srv = nil
	}()

	if err := b.fs.WriteFile(manifestRes.Path(), manifest.Encode(paths)); err != nil {
		return nil, &TempResourceError{Op: "write", Path: manifestRes.Path(), Err: err}
	}
	b.logger.Debug("Manifest written to %s", manifestRes.Path())

	artifactRes, err := b.temp.Acquire(artifactPrefix, artifactExt(paths[0]))
	if err != nil {
		return nil, &TempResourceError{Op: "acquire", Err: err}
	}
	artifact := artifactFromResource(artifactRes)

	b.logger.Debug("Concatenating %d sources", len(paths))
	if err := b.concat.Concatenate(ctx, manifestRes.Path(), artifact.Path()); err != nil {
		return nil, b.discard(&ConcatenationError{Sources: len(paths), Output: artifact.Path(), Err: err}, artifact)
	}
	b.logger.Debug("Concatenated artifact at %s", artifact.Path())

	var timeline *Timeline
	if b.opts.Prober != nil {
		timeline, err = b.buildTimeline(paths)
		if err != nil {
			return nil, b.discard(err, artifact)
		}
	}

	server, err := NewServer(artifact, b.opener, b.opts.Server)
	if err != nil {
		return nil, b.discard(err, artifact)
	}
	server.timeline = timeline
	return server, nil
}

// discard releases an artifact that never reached a server.
func (b *Builder) discard(primary error, artifact *Artifact) error {
	rerr := artifact.Release()
	if rerr != nil {
		b.logger.Warn("Failed to remove temporary file: %s", artifact.Path())
	}
	return withCleanup(primary, rerr)
}

func (b *Builder) buildTimeline(paths []string) (*Timeline, error) {
	spans := make([]Span, len(paths))
	for i, p := range paths {
		info, err := b.opts.Prober.Probe(p)
		if err != nil {
			return nil, &ProbeError{Source: i, Path: p, Err: err}
		}
		b.logger.Debug("Probed source %d: %d frames, %.2fs", i, info.FrameCount, info.DurationSec)
		spans[i] = Span{
			Path:        p,
			Frames:      info.FrameCount,
			DurationSec: info.DurationSec,
			Timestamps:  b.sources[i].timestamps,
		}
	}
	return NewTimeline(spans), nil
}

func artifactExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mp4"
}
