package framestitch

import (
	"sync"
	"sync/atomic"

	"github.com/user/framestitch/pkg/ports"
)

// Artifact is the ownership token for a concatenated media file.
// Whoever holds the token is responsible for calling Release.
type Artifact struct {
	path   string
	remove func() error

	once     sync.Once
	released atomic.Bool
	err      error
}

// NewArtifact wraps an existing file. Release removes it through fs.
func NewArtifact(path string, fs ports.FileSystem) *Artifact {
	return &Artifact{
		path:   path,
		remove: func() error { return fs.Remove(path) },
	}
}

func artifactFromResource(res ports.TempResource) *Artifact {
	return &Artifact{
		path:   res.Path(),
		remove: res.Release,
	}
}

// Path returns the artifact location.
func (a *Artifact) Path() string {
	return a.path
}

// Release deletes the file at most once. A file that is already gone is not
// an error. Later calls return the result of the first.
func (a *Artifact) Release() error {
	a.once.Do(func() {
		a.released.Store(true)
		if err := a.remove(); err != nil {
			a.err = &TempResourceError{Op: "remove", Path: a.path, Err: err}
		}
	})
	return a.err
}

// Released reports whether Release has been called.
func (a *Artifact) Released() bool {
	return a.released.Load()
}
