// Package ffmpeg locates and runs the ffmpeg binary shared by the
// concatenation and decoding adapters.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var (
	// ErrNotFound is returned when no ffmpeg binary can be located.
	ErrNotFound = errors.New("ffmpeg: binary not found")

	// ErrRunFailed is returned when ffmpeg exits with a non-zero status.
	ErrRunFailed = errors.New("ffmpeg: run failed")
)

// Find searches for ffmpeg.
// Priority: 1) custom, 2) FFMPEG_PATH env, 3) PATH, 4) common locations.
func Find(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrNotFound, custom)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrNotFound, envPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		commonPaths = []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/usr/bin/ffmpeg",
		}
	default:
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrNotFound
}

// IsAvailable reports whether ffmpeg can be located without a custom path.
func IsAvailable() bool {
	_, err := Find("")
	return err == nil
}

// Run executes ffmpeg with args and returns its stdout.
// On failure the returned error wraps ErrRunFailed and carries stderr.
func Run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v\nstderr: %s", ErrRunFailed, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
