package framestitch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/user/framestitch/pkg/adapters/logger"
	"github.com/user/framestitch/pkg/ports"
)

// DefaultParallelism is the number of decoder handles when none is configured.
const DefaultParallelism = 4

// ServerOptions configures a Server.
type ServerOptions struct {
	// Parallelism is the number of decoder handles and workers.
	Parallelism int

	// Device is passed to every Open call. Empty means cpu.
	Device ports.Device

	// ReleaseArtifactAfterOpen deletes the artifact once all handles are open.
	// The opener must implement ports.FileHolder and report true.
	ReleaseArtifactAfterOpen bool

	Logger ports.Logger
}

func (o ServerOptions) withDefaults() ServerOptions {
	if o.Parallelism <= 0 {
		o.Parallelism = DefaultParallelism
	}
	if o.Device == "" {
		o.Device = ports.DeviceCPU
	}
	if o.Logger == nil {
		o.Logger = logger.NewNoop()
	}
	return o
}

// Server serves frames of one artifact from a fixed pool of decoder handles.
//
// Worker i owns handle i and only receives work on its own task channel.
// Concurrent GetFrames calls are queued on an internal lock so the pool
// serves one batch at a time.
type Server struct {
	artifact *Artifact
	handles  []ports.DecoderHandle
	tasks    []chan task
	wg       sync.WaitGroup
	device   ports.Device
	timeline *Timeline
	logger   ports.Logger

	mu     sync.Mutex
	closed bool
}

// NewServer opens opts.Parallelism handles on the artifact and starts one
// worker per handle. If any handle fails to open, the handles opened so far
// are closed and a *DecoderOpenError is returned; the artifact then stays
// with the caller. On success the server owns the artifact.
func NewServer(artifact *Artifact, opener ports.DecoderOpener, opts ServerOptions) (*Server, error) {
	if artifact == nil {
		return nil, errors.New("framestitch: nil artifact")
	}
	opts = opts.withDefaults()
	log := opts.Logger.WithComponent("frameserver")

	if opts.ReleaseArtifactAfterOpen && !keepsFileOpen(opener) {
		return nil, ErrEarlyReleaseUnsupported
	}

	log.Debug("Opening %d decoder handles on %s (%s)", opts.Parallelism, artifact.Path(), string(opts.Device))
	handles := make([]ports.DecoderHandle, 0, opts.Parallelism)
	for i := 0; i < opts.Parallelism; i++ {
		h, err := opener.Open(artifact.Path(), opts.Device)
		if err != nil {
			log.Debug("Decoder handle %d failed to open: %s", i, err.Error())
			openErr := &DecoderOpenError{Handle: i, Path: artifact.Path(), Err: err}
			return nil, withCleanup(openErr, closeHandles(handles))
		}
		log.Debug("Decoder handle %d opened", i)
		handles = append(handles, h)
	}

	if opts.ReleaseArtifactAfterOpen {
		if err := artifact.Release(); err != nil {
			return nil, withCleanup(err, closeHandles(handles))
		}
		log.Debug("Artifact released: %s", artifact.Path())
	}

	s := &Server{
		artifact: artifact,
		handles:  handles,
		tasks:    make([]chan task, len(handles)),
		device:   opts.Device,
		logger:   log,
	}
	for i, h := range handles {
		s.tasks[i] = make(chan task, 1)
		s.wg.Add(1)
		go s.worker(h, s.tasks[i])
	}
	return s, nil
}

// GetFrames decodes every index of batch and returns the frames in the
// batch's order and shape. It fails as a whole with a *DecodeError when any
// chunk fails; the server stays usable. ctx is checked before dispatch and
// passed to the handles.
func (s *Server) GetFrames(ctx context.Context, batch Batch) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrServerClosed
	}
	if batch.Len() == 0 {
		return newResult(batch.Shape(), []ports.Frame{}), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frames, err := s.dispatch(ctx, batch.Indices())
	if err != nil {
		return nil, err
	}
	return newResult(batch.Shape(), frames), nil
}

// Close waits for an in-flight GetFrames, stops the workers, closes the
// handles and releases the artifact. Calling Close again returns nil.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.tasks {
		close(ch)
	}
	s.wg.Wait()

	err := closeHandles(s.handles)
	if rerr := s.artifact.Release(); rerr != nil {
		err = withCleanup(err, rerr)
	} else {
		s.logger.Debug("Artifact released: %s", s.artifact.Path())
	}
	s.logger.Debug("Frame server closed")
	return err
}

// Parallelism returns the number of handles.
func (s *Server) Parallelism() int {
	return len(s.handles)
}

// Device returns the device the handles are bound to.
func (s *Server) Device() ports.Device {
	return s.device
}

// Artifact returns the artifact token owned by the server.
func (s *Server) Artifact() *Artifact {
	return s.artifact
}

// Timeline returns the source timeline, or nil when none was built.
func (s *Server) Timeline() *Timeline {
	return s.timeline
}

func closeHandles(handles []ports.DecoderHandle) error {
	var errs []error
	for i, h := range handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("framestitch: close handle %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// withCleanup attaches a cleanup failure to a primary error without hiding it.
func withCleanup(primary, cleanup error) error {
	switch {
	case cleanup == nil:
		return primary
	case primary == nil:
		return cleanup
	default:
		return errors.Join(primary, cleanup)
	}
}

func keepsFileOpen(opener ports.DecoderOpener) bool {
	holder, ok := opener.(ports.FileHolder)
	return ok && holder.KeepsFileOpen()
}
