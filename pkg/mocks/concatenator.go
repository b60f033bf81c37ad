package mocks

import (
	"context"
	"sync"

	"github.com/user/framestitch/pkg/manifest"
	"github.com/user/framestitch/pkg/ports"
)

// Concatenator is a mock implementation of ports.Concatenator.
// Without ConcatenateFunc it reads the manifest from FS, records the sources
// and writes a placeholder artifact to the output path.
type Concatenator struct {
	FS              ports.FileSystem
	ConcatenateFunc func(ctx context.Context, manifestPath, outputPath string) error

	mu    sync.Mutex
	calls []ConcatenateCall
}

// ConcatenateCall records a call to Concatenate.
type ConcatenateCall struct {
	ManifestPath string
	OutputPath   string
	Sources      []string // decoded manifest, nil if it could not be read
}

func (m *Concatenator) Concatenate(ctx context.Context, manifestPath, outputPath string) error {
	call := ConcatenateCall{ManifestPath: manifestPath, OutputPath: outputPath}
	if m.FS != nil {
		if data, err := m.FS.ReadFile(manifestPath); err == nil {
			call.Sources, _ = manifest.Decode(data)
		}
	}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if m.ConcatenateFunc != nil {
		return m.ConcatenateFunc(ctx, manifestPath, outputPath)
	}
	if m.FS != nil {
		return m.FS.WriteFile(outputPath, []byte("concatenated"))
	}
	return nil
}

// Calls returns the recorded calls.
func (m *Concatenator) Calls() []ConcatenateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ConcatenateCall(nil), m.calls...)
}

var _ ports.Concatenator = (*Concatenator)(nil)
