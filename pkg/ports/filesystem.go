package ports

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file. Removing a missing file is not an error.
	Remove(path string) error

	// Abs returns an absolute representation of path.
	Abs(path string) (string, error)

	// TempDir returns the directory used for temporary files.
	TempDir() string
}
