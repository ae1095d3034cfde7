// Package mediatest provides an in-memory media.Device for tests.
package mediatest

import (
	"context"
	"fmt"
	"sync"

	"nexthire/chat/internal/media"
)

// Device creates BaseTrack-backed streams and records what was requested.
type Device struct {
	mu sync.Mutex

	UserMediaErr error
	DisplayErr   error
	RecorderErr  error

	Constraints []media.Constraints
	Streams     []media.Stream
	Displays    []media.Stream
	Recorders   []*Recorder
	seq         int
}

var _ media.Device = (*Device)(nil)

func (d *Device) UserMedia(ctx context.Context, c media.Constraints) (media.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Constraints = append(d.Constraints, c)
	if d.UserMediaErr != nil {
		return nil, d.UserMediaErr
	}
	s := d.newStream("cam", true)
	d.Streams = append(d.Streams, s)
	return s, nil
}

func (d *Device) DisplayMedia(ctx context.Context, withAudio bool) (media.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.DisplayErr != nil {
		return nil, d.DisplayErr
	}
	s := d.newStream("screen", withAudio)
	d.Displays = append(d.Displays, s)
	return s, nil
}

func (d *Device) NewRecorder(s media.Stream, name string) (media.Recorder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.RecorderErr != nil {
		return nil, d.RecorderErr
	}
	r := &Recorder{Name: name, Stream: s}
	d.Recorders = append(d.Recorders, r)
	return r, nil
}

func (d *Device) newStream(prefix string, withAudio bool) media.Stream {
	d.seq++
	id := fmt.Sprintf("%s-%d", prefix, d.seq)
	tracks := []media.Track{media.NewBaseTrack(id+"-video", media.Video)}
	if withAudio {
		tracks = append([]media.Track{media.NewBaseTrack(id+"-audio", media.Audio)}, tracks...)
	}
	return media.NewStream(id, tracks...)
}

// AllTracks returns every track the device handed out.
func (d *Device) AllTracks() []media.Track {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []media.Track
	for _, s := range append(append([]media.Stream{}, d.Streams...), d.Displays...) {
		out = append(out, s.Tracks()...)
	}
	return out
}

// Recorder is a media.Recorder that produces an empty artifact.
type Recorder struct {
	mu      sync.Mutex
	Name    string
	Stream  media.Stream
	Started bool
	Stopped bool
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started = true
	return nil
}

func (r *Recorder) Stop() (media.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stopped = true
	return media.Artifact{Name: r.Name, Path: r.Name, MimeType: media.RecordingMimeType}, nil
}
