package media

import (
	"sync"
	"sync/atomic"
)

// BaseTrack implements the lifecycle part of Track. Concrete tracks embed it.
type BaseTrack struct {
	id      string
	kind    Kind
	enabled atomic.Bool

	mu      sync.Mutex
	ended   bool
	onEnded []func()
}

func NewBaseTrack(id string, kind Kind) *BaseTrack {
	t := &BaseTrack{id: id, kind: kind}
	t.enabled.Store(true)
	return t
}

func (t *BaseTrack) ID() string         { return t.id }
func (t *BaseTrack) Kind() Kind         { return t.kind }
func (t *BaseTrack) Enabled() bool      { return t.enabled.Load() }
func (t *BaseTrack) SetEnabled(on bool) { t.enabled.Store(on) }
func (t *BaseTrack) Stop()              { t.End() }

// Ended reports whether the track has ended.
func (t *BaseTrack) Ended() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ended
}

func (t *BaseTrack) OnEnded(fn func()) {
	t.mu.Lock()
	if !t.ended {
		t.onEnded = append(t.onEnded, fn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	fn()
}

// End marks the track ended and runs the OnEnded callbacks once.
func (t *BaseTrack) End() {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		return
	}
	t.ended = true
	fns := t.onEnded
	t.onEnded = nil
	t.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// BasicStream is a Stream over a fixed set of tracks.
type BasicStream struct {
	id     string
	tracks []Track
}

func NewStream(id string, tracks ...Track) *BasicStream {
	return &BasicStream{id: id, tracks: tracks}
}

func (s *BasicStream) ID() string { return s.id }

func (s *BasicStream) Tracks() []Track { return append([]Track(nil), s.tracks...) }

func (s *BasicStream) AudioTracks() []Track { return s.byKind(Audio) }

func (s *BasicStream) VideoTracks() []Track { return s.byKind(Video) }

func (s *BasicStream) Stop() {
	for _, t := range s.tracks {
		t.Stop()
	}
}

func (s *BasicStream) byKind(k Kind) []Track {
	var out []Track
	for _, t := range s.tracks {
		if t.Kind() == k {
			out = append(out, t)
		}
	}
	return out
}
