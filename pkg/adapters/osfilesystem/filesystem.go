// Package osfilesystem provides a filesystem implementation using the os package.
package osfilesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/user/framestitch/pkg/ports"
)

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct {
	tempDir string
}

// New creates a FileSystem whose temporary directory is os.TempDir().
func New() *FileSystem {
	return &FileSystem{}
}

// NewWithTempDir creates a FileSystem that places temporary files in dir.
func NewWithTempDir(dir string) *FileSystem {
	return &FileSystem{tempDir: dir}
}

// ReadFile reads the entire contents of a file.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating parent directories as needed.
func (f *FileSystem) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// MkdirAll creates a directory and all parent directories.
func (f *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists checks if a file or directory exists.
func (f *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove deletes a file. A missing file is not an error.
func (f *FileSystem) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Abs returns an absolute representation of path.
func (f *FileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// TempDir returns the configured temporary directory.
func (f *FileSystem) TempDir() string {
	if f.tempDir != "" {
		return f.tempDir
	}
	return os.TempDir()
}

// Ensure FileSystem implements ports.FileSystem
var _ ports.FileSystem = (*FileSystem)(nil)
