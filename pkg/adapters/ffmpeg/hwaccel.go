package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/user/framestitch/pkg/ports"
)

// ErrUnknownDevice is returned for device names ffmpeg has no hwaccel for.
var ErrUnknownDevice = fmt.Errorf("ffmpeg: unknown device")

// HWAccelArgs returns the input options that bind decoding to device.
// Frames are always downloaded to system memory so rawvideo output works.
func HWAccelArgs(device ports.Device) ([]string, error) {
	ordinal := device.Ordinal()

	switch device.Kind() {
	case ports.DeviceCPU:
		return nil, nil
	case ports.DeviceCUDA:
		args := []string{"-hwaccel", "cuda"}
		if ordinal != "" {
			args = append(args, "-hwaccel_device", ordinal)
		}
		return args, nil
	case ports.DeviceVAAPI:
		node := "/dev/dri/renderD128"
		if ordinal != "" {
			node = "/dev/dri/renderD" + ordinal
		}
		return []string{"-hwaccel", "vaapi", "-hwaccel_device", node}, nil
	case ports.DeviceQSV:
		return []string{"-hwaccel", "qsv"}, nil
	case ports.DeviceVideoToolbox:
		return []string{"-hwaccel", "videotoolbox"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, device)
	}
}

// DetectDevice asks ffmpeg for its hardware accelerators and picks the best
// one, falling back to the CPU.
func DetectDevice(ctx context.Context, bin string) ports.Device {
	out, err := Run(ctx, bin, "-hide_banner", "-hwaccels")
	if err != nil {
		return ports.DeviceCPU
	}
	return SelectDevice(parseHWAccels(out))
}

// SelectDevice picks the preferred accelerator among available ones.
func SelectDevice(available map[string]bool) ports.Device {
	priority := []ports.Device{ports.DeviceCUDA, ports.DeviceQSV, ports.DeviceVideoToolbox, ports.DeviceVAAPI}
	for _, d := range priority {
		if available[string(d)] {
			return d
		}
	}
	return ports.DeviceCPU
}

// ResolveDevice turns "auto" into a concrete device and leaves others as-is.
func ResolveDevice(ctx context.Context, bin string, device ports.Device) ports.Device {
	if device == "" {
		return ports.DeviceCPU
	}
	if device.Kind() == ports.DeviceAuto {
		return DetectDevice(ctx, bin)
	}
	return device
}

func parseHWAccels(out []byte) map[string]bool {
	available := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		available[line] = true
	}
	return available
}
