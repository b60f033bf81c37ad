// Package ports defines interfaces for the external collaborators of framestitch:
// the concatenation tool, the frame decoder, media probing, temporary files,
// the file system, logging and image rendering.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for component internals: handle opens, chunk dispatch.
	LevelDebug LogLevel = iota
	// LevelInfo is for command-level progress.
	LevelInfo
	// LevelWarn is for recoverable problems such as a failed cleanup.
	LevelWarn
	// LevelError is for failures that end the current operation.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown names map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging with translatable message keys.
type Logger interface {
	// Debug logs a message key with optional format arguments.
	Debug(msg string, args ...interface{})

	// Info logs a message key with optional format arguments.
	Info(msg string, args ...interface{})

	// Warn logs a message key with optional format arguments.
	Warn(msg string, args ...interface{})

	// Error logs a message key with optional format arguments.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
