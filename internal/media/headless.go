package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// LocalTrack is a track backed by a pion sample track. Peers send it with
// AddTrack or ReplaceTrack.
type LocalTrack struct {
	*BaseTrack
	local *webrtc.TrackLocalStaticSample
}

// Local returns the pion track to attach to a peer connection.
func (t *LocalTrack) Local() webrtc.TrackLocal { return t.local }

// NewLocalTrack creates a VP8 video or Opus audio track in stream streamID.
func NewLocalTrack(kind Kind, streamID string) (*LocalTrack, error) {
	mime := webrtc.MimeTypeOpus
	if kind == Video {
		mime = webrtc.MimeTypeVP8
	}
	id := uuid.NewString()
	local, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: mime}, id, streamID)
	if err != nil {
		return nil, fmt.Errorf("create %s track: %w", kind, err)
	}
	return &LocalTrack{BaseTrack: NewBaseTrack(id, kind), local: local}, nil
}

// HeadlessDevice provides signaling-only camera and microphone tracks for
// terminals and servers without capture hardware. Screen capture and
// recording are unsupported.
type HeadlessDevice struct{}

var _ Device = HeadlessDevice{}

func (HeadlessDevice) UserMedia(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	streamID := uuid.NewString()
	audio, err := NewLocalTrack(Audio, streamID)
	if err != nil {
		return nil, err
	}
	video, err := NewLocalTrack(Video, streamID)
	if err != nil {
		return nil, err
	}
	return NewStream(streamID, audio, video), nil
}

func (HeadlessDevice) DisplayMedia(context.Context, bool) (Stream, error) {
	return nil, fmt.Errorf("screen capture: %w", ErrUnsupported)
}

func (HeadlessDevice) NewRecorder(Stream, string) (Recorder, error) {
	return nil, fmt.Errorf("recording: %w", ErrUnsupported)
}
