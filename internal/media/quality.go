package media

import (
	"fmt"
	"strings"
)

// Quality is a named capture profile.
type Quality string

const (
	Low    Quality = "low"
	Medium Quality = "medium"
	High   Quality = "high"
)

const frameRate = 30

var profiles = map[Quality]VideoConstraints{
	Low:    {Width: 640, Height: 480, FrameRate: frameRate},
	Medium: {Width: 1280, Height: 720, FrameRate: frameRate},
	High:   {Width: 1920, Height: 1080, FrameRate: frameRate},
}

func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if q == "" {
		return Medium, nil
	}
	if _, ok := profiles[q]; !ok {
		return "", fmt.Errorf("unknown call quality %q", s)
	}
	return q, nil
}

// Constraints returns the capture constraints of q. Unknown qualities use
// the medium profile. Audio processing is always on.
func (q Quality) Constraints() Constraints {
	v, ok := profiles[q]
	if !ok {
		v = profiles[Medium]
	}
	return Constraints{
		Video: v,
		Audio: AudioConstraints{EchoCancellation: true, NoiseSuppression: true, AutoGainControl: true},
	}
}
