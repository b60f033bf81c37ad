package framestitch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/framestitch/pkg/adapters/ffdecoder"
	"github.com/user/framestitch/pkg/adapters/osfilesystem"
	"github.com/user/framestitch/pkg/mocks"
	"github.com/user/framestitch/pkg/ports"
)

const testArtifactPath = "/tmp/artifact.mp4"

func newTestServer(t *testing.T, opener *mocks.DecoderOpener, n int) (*Server, *mocks.FileSystem) {
	t.Helper()
	fs := mocks.NewFileSystem()
	_ = fs.WriteFile(testArtifactPath, []byte("artifact"))

	srv, err := NewServer(NewArtifact(testArtifactPath, fs), opener, ServerOptions{Parallelism: n})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv, fs
}

func frameIndices(frames []ports.Frame) []int {
	indices := make([]int, len(frames))
	for i, f := range frames {
		indices[i] = f.Index
	}
	return indices
}

func indexFrames(indices []int) []ports.Frame {
	frames := make([]ports.Frame, len(indices))
	for i, idx := range indices {
		frames[i] = ports.Frame{Index: idx, Width: 1, Height: 1, Channels: 3, Pix: []byte{byte(idx), 0, 0}}
	}
	return frames
}

// skewed makes later handles finish first.
func skewed(n int) func(handle int, indices []int) time.Duration {
	return func(handle int, indices []int) time.Duration {
		return time.Duration(n-handle) * 3 * time.Millisecond
	}
}

func TestServer_PreservesOrderUnderSkewedDelays(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	random := make([]int, 37)
	for i := range random {
		random[i] = rng.Intn(100)
	}

	batches := [][]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		{5, 3, 9, 1, 1, 0, 7},
		{42},
		random,
	}

	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			opener := &mocks.DecoderOpener{Delay: skewed(n)}
			srv, _ := newTestServer(t, opener, n)

			for _, indices := range batches {
				result, err := srv.GetFrames(context.Background(), NewBatch(indices...))
				if err != nil {
					t.Fatalf("GetFrames(%v) failed: %v", indices, err)
				}
				if result.Len() != len(indices) {
					t.Fatalf("expected %d frames, got %d", len(indices), result.Len())
				}
				if got := frameIndices(result.Frames()); !reflect.DeepEqual(got, indices) {
					t.Errorf("expected order %v, got %v", indices, got)
				}
			}
		})
	}
}

func TestServer_ChunkAssignment(t *testing.T) {
	opener := &mocks.DecoderOpener{}
	srv, _ := newTestServer(t, opener, 4)

	if _, err := srv.GetFrames(context.Background(), NewBatch(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)); err != nil {
		t.Fatalf("GetFrames failed: %v", err)
	}

	want := [][][]int{
		{{0, 1, 2}},
		{{3, 4, 5}},
		{{6, 7, 8}},
		{{9}},
	}
	for i, h := range opener.Handles() {
		if got := h.Calls(); !reflect.DeepEqual(got, want[i]) {
			t.Errorf("handle %d: expected calls %v, got %v", i, want[i], got)
		}
	}
}

func TestServer_BatchSmallerThanParallelism(t *testing.T) {
	opener := &mocks.DecoderOpener{}
	srv, _ := newTestServer(t, opener, 5)

	result, err := srv.GetFrames(context.Background(), NewBatch(7, 3, 9))
	if err != nil {
		t.Fatalf("GetFrames failed: %v", err)
	}
	if got := frameIndices(result.Frames()); !reflect.DeepEqual(got, []int{7, 3, 9}) {
		t.Errorf("expected [7 3 9], got %v", got)
	}

	handles := opener.Handles()
	for i, want := range [][]int{{7}, {3}, {9}} {
		calls := handles[i].Calls()
		if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
			t.Errorf("handle %d: expected one call with %v, got %v", i, want, calls)
		}
	}
	for i := 3; i < 5; i++ {
		if calls := handles[i].Calls(); len(calls) != 0 {
			t.Errorf("handle %d: expected no calls, got %v", i, calls)
		}
	}
}

func TestServer_EmptyBatch(t *testing.T) {
	opener := &mocks.DecoderOpener{}
	srv, _ := newTestServer(t, opener, 3)

	result, err := srv.GetFrames(context.Background(), NewBatch())
	if err != nil {
		t.Fatalf("GetFrames failed: %v", err)
	}
	if result.Len() != 0 {
		t.Errorf("expected empty result, got %d frames", result.Len())
	}
	if !reflect.DeepEqual(result.Shape(), []int{0}) {
		t.Errorf("expected shape [0], got %v", result.Shape())
	}

	shaped, _ := NewShapedBatch([]int{2, 0}, nil)
	result, err = srv.GetFrames(context.Background(), shaped)
	if err != nil {
		t.Fatalf("GetFrames failed: %v", err)
	}
	if !reflect.DeepEqual(result.Shape(), []int{2, 0}) {
		t.Errorf("expected shape [2 0], got %v", result.Shape())
	}

	for i, h := range opener.Handles() {
		if calls := h.Calls(); len(calls) != 0 {
			t.Errorf("handle %d: expected no calls, got %v", i, calls)
		}
	}
}

func TestServer_ShapedBatch(t *testing.T) {
	opener := &mocks.DecoderOpener{Delay: skewed(4)}
	srv, _ := newTestServer(t, opener, 4)

	batch, err := NewShapedBatch([]int{2, 3}, []int{10, 11, 12, 13, 14, 15})
	if err != nil {
		t.Fatalf("NewShapedBatch failed: %v", err)
	}
	result, err := srv.GetFrames(context.Background(), batch)
	if err != nil {
		t.Fatalf("GetFrames failed: %v", err)
	}

	if !reflect.DeepEqual(result.Shape(), []int{2, 3}) {
		t.Errorf("expected shape [2 3], got %v", result.Shape())
	}
	f, err := result.At(1, 2)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	if f.Index != 15 {
		t.Errorf("expected frame 15 at (1, 2), got %d", f.Index)
	}
	f, _ = result.At(0, 1)
	if f.Index != 11 {
		t.Errorf("expected frame 11 at (0, 1), got %d", f.Index)
	}

	buf, shape, err := result.Tensor()
	if err != nil {
		t.Fatalf("Tensor failed: %v", err)
	}
	if !reflect.DeepEqual(shape, []int{2, 3, 1, 1, 3}) {
		t.Errorf("expected tensor shape [2 3 1 1 3], got %v", shape)
	}
	if len(buf) != 18 || buf[0] != 10 || buf[15] != 15 {
		t.Errorf("unexpected tensor contents %v", buf)
	}
}

func TestServer_DecodeFailure(t *testing.T) {
	opener := &mocks.DecoderOpener{
		GetFramesFunc: func(handle int, indices []int) ([]ports.Frame, error) {
			for _, idx := range indices {
				if idx == 99 {
					return nil, fmt.Errorf("bad frame %d", idx)
				}
			}
			return indexFrames(indices), nil
		},
	}
	srv, _ := newTestServer(t, opener, 3)

	result, err := srv.GetFrames(context.Background(), NewBatch(0, 1, 2, 3, 99, 5, 6, 7, 8))
	if result != nil {
		t.Errorf("expected no partial result, got %d frames", result.Len())
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Chunk != 1 || decodeErr.Start != 3 || decodeErr.End != 6 {
		t.Errorf("expected chunk 1 [3, 6), got chunk %d [%d, %d)", decodeErr.Chunk, decodeErr.Start, decodeErr.End)
	}
	if !reflect.DeepEqual(decodeErr.Indices, []int{3, 99, 5}) {
		t.Errorf("expected indices [3 99 5], got %v", decodeErr.Indices)
	}

	// The server stays usable.
	result, err = srv.GetFrames(context.Background(), NewBatch(4, 5, 6))
	if err != nil {
		t.Fatalf("GetFrames after failure: %v", err)
	}
	if got := frameIndices(result.Frames()); !reflect.DeepEqual(got, []int{4, 5, 6}) {
		t.Errorf("expected [4 5 6], got %v", got)
	}
}

func TestServer_DecodeFailureReportsLowestChunk(t *testing.T) {
	opener := &mocks.DecoderOpener{
		Delay: skewed(3),
		GetFramesFunc: func(handle int, indices []int) ([]ports.Frame, error) {
			if handle != 1 {
				return nil, fmt.Errorf("handle %d failed", handle)
			}
			return indexFrames(indices), nil
		},
	}
	srv, _ := newTestServer(t, opener, 3)

	_, err := srv.GetFrames(context.Background(), NewBatch(0, 1, 2, 3, 4, 5))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Chunk != 0 || decodeErr.Start != 0 || decodeErr.End != 2 {
		t.Errorf("expected chunk 0 [0, 2), got chunk %d [%d, %d)", decodeErr.Chunk, decodeErr.Start, decodeErr.End)
	}

	// Every dispatched chunk finished before the call returned.
	for i, h := range opener.Handles() {
		if len(h.Calls()) != 1 {
			t.Errorf("handle %d: expected 1 call, got %d", i, len(h.Calls()))
		}
	}
}

func TestServer_ShortDecoderOutput(t *testing.T) {
	opener := &mocks.DecoderOpener{
		GetFramesFunc: func(handle int, indices []int) ([]ports.Frame, error) {
			return indexFrames(indices[:len(indices)-1]), nil
		},
	}
	srv, _ := newTestServer(t, opener, 2)

	_, err := srv.GetFrames(context.Background(), NewBatch(1, 2, 3, 4))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestServer_CancelledContext(t *testing.T) {
	opener := &mocks.DecoderOpener{}
	srv, _ := newTestServer(t, opener, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := srv.GetFrames(ctx, NewBatch(1, 2, 3)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for i, h := range opener.Handles() {
		if calls := h.Calls(); len(calls) != 0 {
			t.Errorf("handle %d: expected no calls, got %v", i, calls)
		}
	}
}

func TestServer_ConcurrentCallersAreQueued(t *testing.T) {
	opener := &mocks.DecoderOpener{
		Delay: func(handle int, indices []int) time.Duration { return time.Millisecond },
	}
	srv, _ := newTestServer(t, opener, 3)

	var wg sync.WaitGroup
	for c := 0; c < 8; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			for r := 0; r < 5; r++ {
				indices := []int{c, c + 10, c + 20, c + 30, r}
				result, err := srv.GetFrames(context.Background(), NewBatch(indices...))
				if err != nil {
					t.Errorf("caller %d: GetFrames failed: %v", c, err)
					return
				}
				if got := frameIndices(result.Frames()); !reflect.DeepEqual(got, indices) {
					t.Errorf("caller %d: expected %v, got %v", c, indices, got)
				}
			}
		}(c)
	}
	wg.Wait()

	for i, h := range opener.Handles() {
		if h.UsedConcurrently() {
			t.Errorf("handle %d was used by two callers at once", i)
		}
	}
}

func TestServer_Close(t *testing.T) {
	opener := &mocks.DecoderOpener{}
	srv, fs := newTestServer(t, opener, 3)

	if err := srv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}

	for i, h := range opener.Handles() {
		if h.CloseCount() != 1 {
			t.Errorf("handle %d: expected 1 close, got %d", i, h.CloseCount())
		}
	}
	if exists, _ := fs.Exists(testArtifactPath); exists {
		t.Error("expected artifact to be removed")
	}
	if fs.Removes() != 1 {
		t.Errorf("expected 1 remove, got %d", fs.Removes())
	}
	if !srv.Artifact().Released() {
		t.Error("expected artifact token to be released")
	}

	if _, err := srv.GetFrames(context.Background(), NewBatch(1)); !errors.Is(err, ErrServerClosed) {
		t.Errorf("expected ErrServerClosed, got %v", err)
	}
}

func TestServer_CloseWaitsForInFlightCall(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	var finished atomic.Int32
	opener := &mocks.DecoderOpener{
		GetFramesFunc: func(handle int, indices []int) ([]ports.Frame, error) {
			once.Do(func() { close(started) })
			time.Sleep(30 * time.Millisecond)
			finished.Add(1)
			return indexFrames(indices), nil
		},
	}
	srv, _ := newTestServer(t, opener, 2)

	done := make(chan error, 1)
	go func() {
		_, err := srv.GetFrames(context.Background(), NewBatch(1, 2, 3, 4))
		done <- err
	}()

	<-started
	if err := srv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if n := finished.Load(); n != 2 {
		t.Errorf("expected both chunks to finish before Close returned, got %d", n)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("in-flight GetFrames failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("in-flight GetFrames did not return")
	}
}

func TestServer_ArtifactAlreadyMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.mp4")

	srv, err := NewServer(NewArtifact(path, osfilesystem.New()), &mocks.DecoderOpener{}, ServerOptions{Parallelism: 2})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("expected Close to tolerate a missing artifact, got %v", err)
	}
}

func TestNewServer_Defaults(t *testing.T) {
	opener := &mocks.DecoderOpener{}
	fs := mocks.NewFileSystem()
	srv, err := NewServer(NewArtifact(testArtifactPath, fs), opener, ServerOptions{})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer srv.Close()

	if srv.Parallelism() != DefaultParallelism {
		t.Errorf("expected parallelism %d, got %d", DefaultParallelism, srv.Parallelism())
	}
	if srv.Device() != ports.DeviceCPU {
		t.Errorf("expected device cpu, got %s", srv.Device())
	}
	for i, h := range opener.Handles() {
		if h.Path != testArtifactPath || h.Device != ports.DeviceCPU {
			t.Errorf("handle %d opened on %s (%s)", i, h.Path, h.Device)
		}
	}
	if srv.Timeline() != nil {
		t.Error("expected no timeline")
	}
}

func TestNewServer_OpenFailureClosesOpenedHandles(t *testing.T) {
	opener := &mocks.DecoderOpener{
		OpenFunc: func(path string, device ports.Device, n int) error {
			if n == 2 {
				return errors.New("corrupt")
			}
			return nil
		},
	}
	fs := mocks.NewFileSystem()
	_ = fs.WriteFile(testArtifactPath, []byte("artifact"))
	artifact := NewArtifact(testArtifactPath, fs)

	srv, err := NewServer(artifact, opener, ServerOptions{Parallelism: 4})
	if srv != nil {
		t.Fatal("expected no server")
	}
	var openErr *DecoderOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected DecoderOpenError, got %v", err)
	}
	if openErr.Handle != 2 || openErr.Path != testArtifactPath {
		t.Errorf("expected handle 2 on %s, got handle %d on %s", testArtifactPath, openErr.Handle, openErr.Path)
	}
	if len(opener.Handles()) != 2 {
		t.Errorf("expected 2 opened handles, got %d", len(opener.Handles()))
	}
	if opener.OpenHandles() != 0 {
		t.Errorf("expected 0 open handles, got %d", opener.OpenHandles())
	}
	if artifact.Released() {
		t.Error("artifact must stay with the caller when construction fails")
	}
}

func TestNewServer_ReleaseArtifactAfterOpen(t *testing.T) {
	fs := mocks.NewFileSystem()
	_ = fs.WriteFile(testArtifactPath, []byte("artifact"))

	srv, err := NewServer(NewArtifact(testArtifactPath, fs), &mocks.DecoderOpener{HoldsFile: true}, ServerOptions{
		Parallelism:              2,
		ReleaseArtifactAfterOpen: true,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if exists, _ := fs.Exists(testArtifactPath); exists {
		t.Error("expected artifact to be removed after open")
	}
	if _, err := srv.GetFrames(context.Background(), NewBatch(1, 2)); err != nil {
		t.Errorf("GetFrames failed: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if fs.Removes() != 1 {
		t.Errorf("expected 1 remove, got %d", fs.Removes())
	}
}

// countingOpener tracks handles that are open.
type countingOpener struct {
	inner ports.DecoderOpener

	mu   sync.Mutex
	open int
}

func (c *countingOpener) Open(path string, device ports.Device) (ports.DecoderHandle, error) {
	h, err := c.inner.Open(path, device)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.open++
	c.mu.Unlock()
	return &countedHandle{DecoderHandle: h, owner: c}, nil
}

func (c *countingOpener) openCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

type countedHandle struct {
	ports.DecoderHandle
	owner *countingOpener
}

func (h *countedHandle) Close() error {
	h.owner.mu.Lock()
	h.owner.open--
	h.owner.mu.Unlock()
	return h.DecoderHandle.Close()
}

func TestNewServer_CorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.mp4")
	if err := os.WriteFile(path, []byte("this is not an mp4 file at all"), 0644); err != nil {
		t.Fatal(err)
	}

	// Open fails while probing, before ffmpeg would run.
	stub := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(stub, nil, 0755); err != nil {
		t.Fatal(err)
	}
	inner, err := ffdecoder.New(ffdecoder.Options{FFmpegPath: stub})
	if err != nil {
		t.Fatalf("ffdecoder.New failed: %v", err)
	}
	opener := &countingOpener{inner: inner}

	srv, err := NewServer(NewArtifact(path, osfilesystem.New()), opener, ServerOptions{Parallelism: 4})
	if srv != nil {
		t.Fatal("expected no server")
	}
	var openErr *DecoderOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected DecoderOpenError, got %v", err)
	}
	if openErr.Path != path {
		t.Errorf("expected path %s, got %s", path, openErr.Path)
	}
	if n := opener.openCount(); n != 0 {
		t.Errorf("expected 0 open handles, got %d", n)
	}
}

func TestNewServer_EarlyReleaseNeedsFileHolder(t *testing.T) {
	fs := mocks.NewFileSystem()
	_ = fs.WriteFile(testArtifactPath, []byte("artifact"))
	artifact := NewArtifact(testArtifactPath, fs)
	opener := &mocks.DecoderOpener{}

	srv, err := NewServer(artifact, opener, ServerOptions{Parallelism: 2, ReleaseArtifactAfterOpen: true})
	if srv != nil {
		t.Fatal("expected no server")
	}
	if !errors.Is(err, ErrEarlyReleaseUnsupported) {
		t.Fatalf("expected ErrEarlyReleaseUnsupported, got %v", err)
	}
	if n := len(opener.Handles()); n != 0 {
		t.Errorf("expected no handle to be opened, got %d", n)
	}
	if artifact.Released() {
		t.Error("artifact must stay with the caller")
	}
	if exists, _ := fs.Exists(testArtifactPath); !exists {
		t.Error("expected artifact to still exist")
	}
}

func TestNewServer_EarlyReleaseRejectedForFFmpegDecoder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "joined.mp4")
	if err := os.WriteFile(path, []byte("artifact"), 0644); err != nil {
		t.Fatal(err)
	}
	stub := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(stub, nil, 0755); err != nil {
		t.Fatal(err)
	}
	inner, err := ffdecoder.New(ffdecoder.Options{FFmpegPath: stub, Prober: &mocks.MediaProber{}})
	if err != nil {
		t.Fatalf("ffdecoder.New failed: %v", err)
	}
	_, err = NewServer(NewArtifact(path, osfilesystem.New()), inner, ServerOptions{Parallelism: 2, ReleaseArtifactAfterOpen: true})
	if !errors.Is(err, ErrEarlyReleaseUnsupported) {
		t.Fatalf("expected ErrEarlyReleaseUnsupported, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("expected artifact to be kept, got %v", statErr)
	}
}
