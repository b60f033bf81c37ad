package mocks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/framestitch/pkg/ports"
)

// DecoderOpener is a mock implementation of ports.DecoderOpener.
// Handles return 1x1 frames whose Index is the requested index.
type DecoderOpener struct {
	// FrameCount bounds valid indices; zero means unbounded.
	FrameCount int

	// OpenFunc can fail the n-th open (0-based).
	OpenFunc func(path string, device ports.Device, n int) error

	// GetFramesFunc overrides decoding for a handle.
	GetFramesFunc func(handle int, indices []int) ([]ports.Frame, error)

	// Delay is slept by a handle before decoding, to skew completion order.
	Delay func(handle int, indices []int) time.Duration

	// HoldsFile is reported by KeepsFileOpen.
	HoldsFile bool

	mu      sync.Mutex
	opens   int
	handles []*DecoderHandle
}

func (m *DecoderOpener) Open(path string, device ports.Device) (ports.DecoderHandle, error) {
	m.mu.Lock()
	n := m.opens
	m.opens++
	m.mu.Unlock()

	if m.OpenFunc != nil {
		if err := m.OpenFunc(path, device, n); err != nil {
			return nil, err
		}
	}

	h := &DecoderHandle{ID: n, Path: path, Device: device, opener: m}
	m.mu.Lock()
	m.handles = append(m.handles, h)
	m.mu.Unlock()
	return h, nil
}

// KeepsFileOpen implements ports.FileHolder.
func (m *DecoderOpener) KeepsFileOpen() bool {
	return m.HoldsFile
}

// Handles returns every handle opened so far, in open order.
func (m *DecoderOpener) Handles() []*DecoderHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*DecoderHandle(nil), m.handles...)
}

// OpenHandles returns the number of handles not yet closed.
func (m *DecoderOpener) OpenHandles() int {
	count := 0
	for _, h := range m.Handles() {
		if !h.Closed() {
			count++
		}
	}
	return count
}

// DecoderHandle is a mock implementation of ports.DecoderHandle.
type DecoderHandle struct {
	ID     int
	Path   string
	Device ports.Device

	opener     *DecoderOpener
	closed     atomic.Bool
	closes     atomic.Int32
	inUse      atomic.Int32
	concurrent atomic.Bool

	mu    sync.Mutex
	calls [][]int
}

func (h *DecoderHandle) GetFrames(ctx context.Context, indices []int) ([]ports.Frame, error) {
	if h.inUse.Add(1) > 1 {
		h.concurrent.Store(true)
	}
	defer h.inUse.Add(-1)

	h.mu.Lock()
	h.calls = append(h.calls, append([]int(nil), indices...))
	h.mu.Unlock()

	if h.closed.Load() {
		return nil, fmt.Errorf("mock handle %d: closed", h.ID)
	}

	if h.opener.Delay != nil {
		select {
		case <-time.After(h.opener.Delay(h.ID, indices)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if h.opener.GetFramesFunc != nil {
		return h.opener.GetFramesFunc(h.ID, indices)
	}

	frames := make([]ports.Frame, len(indices))
	for i, idx := range indices {
		if idx < 0 || (h.opener.FrameCount > 0 && idx >= h.opener.FrameCount) {
			return nil, fmt.Errorf("mock handle %d: index %d out of range", h.ID, idx)
		}
		frames[i] = ports.Frame{
			Index:    idx,
			Width:    1,
			Height:   1,
			Channels: 3,
			Pix:      []byte{byte(idx), byte(idx >> 8), byte(h.ID)},
		}
	}
	return frames, nil
}

func (h *DecoderHandle) Close() error {
	h.closes.Add(1)
	h.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (h *DecoderHandle) Closed() bool {
	return h.closed.Load()
}

// CloseCount returns how many times Close was called.
func (h *DecoderHandle) CloseCount() int {
	return int(h.closes.Load())
}

// Calls returns the index chunks this handle was asked to decode.
func (h *DecoderHandle) Calls() [][]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]int(nil), h.calls...)
}

// UsedConcurrently reports whether two GetFrames calls ever overlapped.
func (h *DecoderHandle) UsedConcurrently() bool {
	return h.concurrent.Load()
}

var (
	_ ports.DecoderOpener = (*DecoderOpener)(nil)
	_ ports.DecoderHandle = (*DecoderHandle)(nil)
)
