package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/user/framestitch/pkg/ports"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelWarn, &buf)

	log.Debug("Chunk %d decoded [%d, %d)", 0, 0, 4)
	log.Info("Frame server closed")
	log.Warn("Failed to remove temporary file: %s", "/tmp/x")

	out := buf.String()
	if strings.Contains(out, "Chunk") || strings.Contains(out, "closed") {
		t.Errorf("expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "/tmp/x") {
		t.Errorf("expected warning in output, got %q", out)
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelDebug, &buf).WithComponent("frameserver")

	log.Debug("Decoder handle %d opened", 2)

	if got := buf.String(); !strings.HasPrefix(got, "[frameserver] ") {
		t.Errorf("expected component prefix, got %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want ports.LogLevel
	}{
		{"debug", ports.LevelDebug},
		{"warn", ports.LevelWarn},
		{"quiet", ports.LevelQuiet},
		{"bogus", ports.LevelInfo},
	}
	for _, tt := range tests {
		if got := ports.ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConsoleLogger_ConcurrentWorkers(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriter(ports.LevelDebug, &buf)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			log := base.WithComponent("frameserver")
			for i := 0; i < 25; i++ {
				log.Debug("Chunk %d decoded [%d, %d)", w, i, i+1)
			}
		}(w)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Fatalf("expected 100 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[frameserver] ") {
			t.Errorf("interleaved line: %q", line)
		}
	}
}
