package ports

// TempResource is a uniquely named temporary file path.
// The file itself is created by whoever writes to Path.
type TempResource interface {
	// Path returns the reserved location.
	Path() string

	// Release deletes the file if it exists. Only the first call has an
	// effect; a file that is already gone is not an error.
	Release() error
}

// TempProvider issues temporary resources with collision-free names.
type TempProvider interface {
	// Acquire reserves a new path named <prefix>-<unique><ext>.
	Acquire(prefix, ext string) (TempResource, error)
}
