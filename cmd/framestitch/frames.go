package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errNoFrames is returned when a command has nothing to request.
var errNoFrames = errors.New("no frames requested")

// parseFrameSpec parses a comma separated list of indices and inclusive
// ranges, such as "0,5,10-12". Order and duplicates are kept.
func parseFrameSpec(spec string) ([]int, error) {
	var indices []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid frame index %q", part)
			}
			indices = append(indices, n)
			continue
		}
		start, err1 := strconv.Atoi(strings.TrimSpace(lo))
		end, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil || start < 0 || end < start {
			return nil, fmt.Errorf("invalid frame range %q", part)
		}
		for i := start; i <= end; i++ {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return nil, errNoFrames
	}
	return indices, nil
}

// parseTimestamps groups "SOURCE:SECONDS" values by source index.
func parseTimestamps(values []string, sources int) ([][]float64, error) {
	grouped := make([][]float64, sources)
	for _, v := range values {
		src, sec, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("invalid timestamp %q, want SOURCE:SECONDS", v)
		}
		i, err := strconv.Atoi(src)
		if err != nil || i < 0 || i >= sources {
			return nil, fmt.Errorf("invalid source in timestamp %q", v)
		}
		seconds, err := strconv.ParseFloat(sec, 64)
		if err != nil || seconds < 0 {
			return nil, fmt.Errorf("invalid seconds in timestamp %q", v)
		}
		grouped[i] = append(grouped[i], seconds)
	}
	return grouped, nil
}

// everyNth returns 0, n, 2n, ... below total.
func everyNth(total, n int) []int {
	if n <= 0 {
		n = 1
	}
	indices := make([]int, 0, (total+n-1)/n)
	for i := 0; i < total; i += n {
		indices = append(indices, i)
	}
	return indices
}
