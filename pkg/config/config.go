// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/framestitch/pkg/framestitch"
	"github.com/user/framestitch/pkg/ports"
	"github.com/user/framestitch/pkg/sheet"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the full configuration for framestitch.
type Config struct {
	// Frame server
	Parallelism int    `yaml:"parallelism"`
	Device      string `yaml:"device"`

	// Tools
	FFmpegPath string `yaml:"ffmpeg_path"`
	TempDir    string `yaml:"temp_dir"`

	// Output
	OutputDir    string `yaml:"output_dir"`
	OutputFormat string `yaml:"output_format"`

	Sheet SheetConfig `yaml:"sheet"`
	Synth SynthConfig `yaml:"synth"`

	LogLevel string `yaml:"log_level"`
}

// SheetConfig represents contact sheet settings.
type SheetConfig struct {
	Columns         int    `yaml:"columns"`
	ThumbWidth      int    `yaml:"thumb_width"`
	Gap             int    `yaml:"gap"`
	Padding         int    `yaml:"padding"`
	Labels          bool   `yaml:"labels"`
	BackgroundColor string `yaml:"background_color"`
	LabelColor      string `yaml:"label_color"`
}

// SynthConfig represents settings for generated test clips.
type SynthConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Frames int     `yaml:"frames"`
	FPS    float64 `yaml:"fps"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Parallelism: framestitch.DefaultParallelism,
		Device:      string(ports.DeviceCPU),

		OutputDir:    "./frames",
		OutputFormat: "png",

		Sheet: SheetConfig{
			Columns:         4,
			ThumbWidth:      240,
			Gap:             8,
			Padding:         16,
			Labels:          true,
			BackgroundColor: "#1a1a2e",
			LabelColor:      "#ffffff",
		},

		Synth: SynthConfig{
			Width:  320,
			Height: 240,
			Frames: 30,
			FPS:    30,
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c Config) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be at least 1, got %d", ErrInvalid, c.Parallelism)
	}
	switch c.OutputFormat {
	case "png", "jpg", "jpeg", "bmp", "tif", "tiff":
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, c.OutputFormat)
	}
	switch ports.Device(c.Device).Kind() {
	case ports.DeviceCPU, ports.DeviceAuto, ports.DeviceCUDA, ports.DeviceVAAPI, ports.DeviceQSV, ports.DeviceVideoToolbox:
	default:
		return fmt.Errorf("%w: unknown device %q", ErrInvalid, c.Device)
	}
	if c.Synth.Width%2 != 0 || c.Synth.Height%2 != 0 {
		return fmt.Errorf("%w: synth size must be even, got %dx%d", ErrInvalid, c.Synth.Width, c.Synth.Height)
	}
	return nil
}

// Format returns the output image format.
func (c Config) Format() ports.ImageFormat {
	return ports.ParseImageFormat(c.OutputFormat)
}

// ServerOptions converts Config to framestitch.ServerOptions.
func (c Config) ServerOptions(logger ports.Logger) framestitch.ServerOptions {
	return framestitch.ServerOptions{
		Parallelism: c.Parallelism,
		Device:      ports.Device(c.Device),
		Logger:      logger,
	}
}

// SheetOptions converts Config to sheet.Options.
func (c Config) SheetOptions() sheet.Options {
	opts := sheet.Options{
		Columns:    c.Sheet.Columns,
		ThumbWidth: c.Sheet.ThumbWidth,
		Gap:        c.Sheet.Gap,
		Padding:    c.Sheet.Padding,
		Background: ParseColor(c.Sheet.BackgroundColor),
		LabelColor: ParseColor(c.Sheet.LabelColor),
	}
	if c.Sheet.Labels {
		opts.LabelHeight = 18
	}
	return opts
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	if len(hex) == 0 {
		return color.Black
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 {
		return color.Black
	}

	return color.RGBA{
		R: hexByte(hex[0], hex[1]),
		G: hexByte(hex[2], hex[3]),
		B: hexByte(hex[4], hex[5]),
		A: 255,
	}
}

func hexByte(hi, lo byte) uint8 {
	return hexValue(hi)<<4 | hexValue(lo)
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
