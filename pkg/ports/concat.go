package ports

import "context"

// Concatenator joins media files without re-encoding.
type Concatenator interface {
	// Concatenate reads the ordered manifest at manifestPath and writes a
	// single stream-copied file to outputPath. It blocks until the tool exits.
	Concatenate(ctx context.Context, manifestPath, outputPath string) error
}
