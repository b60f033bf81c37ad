// Package tempres issues uniquely named temporary files with guaranteed,
// at-most-once deletion.
package tempres

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/user/framestitch/pkg/ports"
)

// ErrEmptyPrefix is returned when Acquire is called without a name prefix.
var ErrEmptyPrefix = errors.New("tempres: empty prefix")

// Provider implements ports.TempProvider on top of a ports.FileSystem.
type Provider struct {
	fs  ports.FileSystem
	dir string
}

// New creates a provider that places resources in fs.TempDir().
func New(fs ports.FileSystem) *Provider {
	return &Provider{fs: fs, dir: fs.TempDir()}
}

// NewInDir creates a provider that places resources in dir.
func NewInDir(fs ports.FileSystem, dir string) *Provider {
	return &Provider{fs: fs, dir: dir}
}

// Dir returns the directory resources are created in.
func (p *Provider) Dir() string {
	return p.dir
}

// Acquire reserves <dir>/<prefix>-<uuid><ext>. Nothing is written to disk.
func (p *Provider) Acquire(prefix, ext string) (ports.TempResource, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("tempres: generate name: %w", err)
	}
	return &Resource{
		fs:   p.fs,
		path: filepath.Join(p.dir, fmt.Sprintf("%s-%s%s", prefix, id.String(), ext)),
	}, nil
}

// Resource is a reserved temporary path.
type Resource struct {
	fs   ports.FileSystem
	path string

	once sync.Once
	err  error
}

// Path returns the reserved location.
func (r *Resource) Path() string {
	return r.path
}

// Release removes the file once. Later calls return the first call's result.
func (r *Resource) Release() error {
	r.once.Do(func() {
		if err := r.fs.Remove(r.path); err != nil {
			r.err = fmt.Errorf("tempres: remove %s: %w", r.path, err)
		}
	})
	return r.err
}

var (
	_ ports.TempProvider = (*Provider)(nil)
	_ ports.TempResource = (*Resource)(nil)
)
