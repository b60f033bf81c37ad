package mocks

import (
	"fmt"

	"github.com/user/framestitch/pkg/ports"
)

// MediaProber is a mock implementation of ports.MediaProber backed by a map.
type MediaProber struct {
	Infos  map[string]ports.MediaInfo
	Errors map[string]error
	Probed []string
}

func (m *MediaProber) Probe(path string) (ports.MediaInfo, error) {
	m.Probed = append(m.Probed, path)
	if err, ok := m.Errors[path]; ok {
		return ports.MediaInfo{}, err
	}
	if info, ok := m.Infos[path]; ok {
		return info, nil
	}
	return ports.MediaInfo{}, fmt.Errorf("mock prober: no info for %s", path)
}

var _ ports.MediaProber = (*MediaProber)(nil)
