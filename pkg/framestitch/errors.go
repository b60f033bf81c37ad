package framestitch

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned by Finalize when no source was added.
	ErrEmptyInput = errors.New("framestitch: no source videos added")

	// ErrServerClosed is returned by GetFrames after Close.
	ErrServerClosed = errors.New("framestitch: frame server closed")

	// ErrEarlyReleaseUnsupported is returned by NewServer when the artifact
	// should be released after open but the opener reads the path on every call.
	ErrEarlyReleaseUnsupported = errors.New("framestitch: decoder does not keep the artifact open")

	// ErrShapeMismatch is returned when a batch shape does not match its index count.
	ErrShapeMismatch = errors.New("framestitch: shape does not match index count")
)

// ConcatenationError reports a failure of the external concatenation tool.
type ConcatenationError struct {
	Sources int
	Output  string
	Err     error
}

func (e *ConcatenationError) Error() string {
	return fmt.Sprintf("framestitch: concatenate %d sources into %s: %v", e.Sources, e.Output, e.Err)
}

func (e *ConcatenationError) Unwrap() error { return e.Err }

// DecoderOpenError reports that decoder handle Handle could not be opened on Path.
type DecoderOpenError struct {
	Handle int
	Path   string
	Err    error
}

func (e *DecoderOpenError) Error() string {
	return fmt.Sprintf("framestitch: open decoder handle %d on %s: %v", e.Handle, e.Path, e.Err)
}

func (e *DecoderOpenError) Unwrap() error { return e.Err }

// DecodeError reports a failed chunk. Start and End delimit the chunk's
// position range [Start, End) in the flattened request.
type DecodeError struct {
	Chunk   int
	Start   int
	End     int
	Indices []int
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("framestitch: decode chunk %d [%d, %d): %v", e.Chunk, e.Start, e.End, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TempResourceError reports that a temporary file could not be created,
// written or removed.
type TempResourceError struct {
	Op   string // "acquire", "write" or "remove"
	Path string
	Err  error
}

func (e *TempResourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("framestitch: temp resource %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("framestitch: temp resource %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TempResourceError) Unwrap() error { return e.Err }

// ProbeError reports that a source could not be probed for the timeline.
type ProbeError struct {
	Source int
	Path   string
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("framestitch: probe source %d (%s): %v", e.Source, e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }
