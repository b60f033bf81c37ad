package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles the CLI into a temporary directory, or returns
// FRAMESTITCH_BINARY when a pre-built binary is provided.
func buildBinary(t *testing.T) string {
	t.Helper()

	if os.Getenv("FRAMESTITCH_E2E") != "1" {
		t.Skip("Skipping E2E test (set FRAMESTITCH_E2E=1 to run)")
	}
	if path := os.Getenv("FRAMESTITCH_BINARY"); path != "" {
		return path
	}

	name := "framestitch-test"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	bin := filepath.Join(t.TempDir(), name)
	buildCmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, out)
	}
	return bin
}

func runCLI(t *testing.T, bin string, args ...string) (string, string) {
	t.Helper()

	cmd := exec.Command(bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("%s failed: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout.String(), stderr.String())
	}
	return stdout.String(), stderr.String()
}

func TestVersionCommand(t *testing.T) {
	bin := buildBinary(t)

	stdout, _ := runCLI(t, bin, "--version")
	if !strings.Contains(stdout, "framestitch") {
		t.Errorf("Expected version output to mention framestitch, got: %s", stdout)
	}
}

func TestSynthProbeExtractSheet(t *testing.T) {
	bin := buildBinary(t)
	dir := t.TempDir()

	// Flags must come before positional arguments in urfave/cli.
	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.mp4")
	runCLI(t, bin, "synth", "-Q", "-o", a, "--frames", "10", "--width", "64", "--height", "48", "--fps", "10")
	runCLI(t, bin, "synth", "-Q", "-o", b, "--frames", "10", "--width", "64", "--height", "48", "--fps", "10", "--start", "10")

	stdout, _ := runCLI(t, bin, "probe", a, b)
	if !strings.Contains(stdout, "[10, 20)") {
		t.Errorf("Expected the second source to span [10, 20), got:\n%s", stdout)
	}

	out := filepath.Join(dir, "frames")
	tempDir := filepath.Join(dir, "tmp")
	if err := os.Mkdir(tempDir, 0755); err != nil {
		t.Fatal(err)
	}
	runCLI(t, bin, "extract", "-Q", "-n", "3", "--temp-dir", tempDir, "-f", "0,5,10,15", "-o", out, a, b)

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("Failed to read output directory: %v", err)
	}
	want := []string{"frame-0000-000000.png", "frame-0001-000005.png", "frame-0002-000010.png", "frame-0003-000015.png"}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d images, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Name() != want[i] {
			t.Errorf("Image %d: expected %s, got %s", i, want[i], e.Name())
		}
	}

	leftovers, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("Expected temp directory to be empty, found %d entries", len(leftovers))
	}

	sheetPath := filepath.Join(dir, "sheet.png")
	runCLI(t, bin, "sheet", "-Q", "--every", "5", "-o", sheetPath, a, b)
	if info, err := os.Stat(sheetPath); err != nil || info.Size() == 0 {
		t.Errorf("Expected a non-empty contact sheet at %s (err=%v)", sheetPath, err)
	}
}
