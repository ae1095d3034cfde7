// Package media describes local capture: camera and microphone streams,
// screen capture and recording.
package media

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPermissionDenied is returned when the user or OS refuses capture.
	ErrPermissionDenied = errors.New("media permission denied")
	// ErrUnsupported is returned when the device cannot provide a capability.
	ErrUnsupported = errors.New("media capability unsupported")
)

type Kind string

const (
	Audio Kind = "audio"
	Video Kind = "video"
)

// Track is one local audio or video source.
type Track interface {
	ID() string
	Kind() Kind
	Enabled() bool
	SetEnabled(bool)
	// Stop releases the source. It is safe to call more than once.
	Stop()
	// OnEnded registers fn to run once when the source ends, whether by Stop
	// or by the platform (e.g. the user ends a screen capture).
	OnEnded(fn func())
}

// Stream groups the tracks of one capture.
type Stream interface {
	ID() string
	Tracks() []Track
	AudioTracks() []Track
	VideoTracks() []Track
	Stop()
}

type VideoConstraints struct {
	Width     int
	Height    int
	FrameRate int
}

type AudioConstraints struct {
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
}

type Constraints struct {
	Video VideoConstraints
	Audio AudioConstraints
}

// Artifact is a finished recording.
type Artifact struct {
	Name     string
	Path     string
	MimeType string
	Size     int64
}

// Recorder captures a stream to a file.
type Recorder interface {
	Start() error
	Stop() (Artifact, error)
}

// Device is the capture backend.
type Device interface {
	UserMedia(ctx context.Context, c Constraints) (Stream, error)
	DisplayMedia(ctx context.Context, withAudio bool) (Stream, error)
	NewRecorder(s Stream, name string) (Recorder, error)
}

// RecordingMimeType is the container of recordings.
const RecordingMimeType = "video/webm"

// RecordingName names the recording of a call in roomID started at t.
func RecordingName(roomID string, t time.Time) string {
	return fmt.Sprintf("interview-%s-%s.webm", roomID, t.UTC().Format(time.RFC3339))
}
