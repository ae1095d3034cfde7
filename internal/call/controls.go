package call

import (
	"context"
	"errors"
	"fmt"

	"nexthire/chat/internal/media"
)

// ToggleAudio mutes or unmutes the microphone and returns the new state.
func (c *Coordinator) ToggleAudio() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Connected {
		return false, ErrNotConnected
	}
	c.audioOn = !c.audioOn
	for _, t := range c.local.AudioTracks() {
		t.SetEnabled(c.audioOn)
	}
	return c.audioOn, nil
}

// ToggleVideo turns the camera on or off and returns the new state.
func (c *Coordinator) ToggleVideo() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Connected {
		return false, ErrNotConnected
	}
	c.videoOn = !c.videoOn
	for _, t := range c.local.VideoTracks() {
		t.SetEnabled(c.videoOn)
	}
	return c.videoOn, nil
}

// ToggleScreenShare swaps the outgoing video between the camera and a screen
// capture. Only the outgoing video track changes. When the platform ends the
// capture the camera is restored.
func (c *Coordinator) ToggleScreenShare(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.state != Connected {
		c.mu.Unlock()
		return false, ErrNotConnected
	}
	sid := c.session
	screen := c.screen
	p := c.peer
	c.mu.Unlock()

	if screen != nil {
		return false, c.stopScreenShare(sid, screen)
	}

	stream, err := c.cfg.Device.DisplayMedia(ctx, false)
	if err != nil {
		return false, fmt.Errorf("screen capture: %w", err)
	}
	tracks := stream.VideoTracks()
	if len(tracks) == 0 {
		stream.Stop()
		return false, fmt.Errorf("screen capture: %w", media.ErrUnsupported)
	}
	if err := p.ReplaceVideoTrack(tracks[0]); err != nil {
		stream.Stop()
		return false, fmt.Errorf("share screen: %w", err)
	}

	c.mu.Lock()
	if c.session != sid || c.state != Connected || c.screen != nil {
		c.mu.Unlock()
		stream.Stop()
		return false, ErrNotConnected
	}
	c.screen = stream
	c.mu.Unlock()

	tracks[0].OnEnded(func() {
		if err := c.stopScreenShare(sid, stream); err != nil {
			c.log.Warnw("failed to restore camera", "error", err)
		}
	})
	return true, nil
}

func (c *Coordinator) stopScreenShare(sid string, stream media.Stream) error {
	c.mu.Lock()
	if c.session != sid || c.screen != stream {
		c.mu.Unlock()
		return nil
	}
	c.screen = nil
	p := c.peer
	var camera media.Track
	if vt := c.local.VideoTracks(); len(vt) > 0 {
		camera = vt[0]
	}
	c.mu.Unlock()

	stream.Stop()
	if camera == nil {
		return nil
	}
	return p.ReplaceVideoTrack(camera)
}

// ToggleRecording starts a local recording of the display and audio, or
// stops the running one and returns its artifact.
func (c *Coordinator) ToggleRecording(ctx context.Context) (bool, *media.Artifact, error) {
	c.mu.Lock()
	if c.state != Connected {
		c.mu.Unlock()
		return false, nil, ErrNotConnected
	}
	sid := c.session
	rec, recStream := c.recorder, c.recStream
	if rec != nil {
		c.recorder = nil
		c.recStream = nil
	}
	c.mu.Unlock()

	if rec != nil {
		art, err := rec.Stop()
		recStream.Stop()
		if err != nil {
			return false, nil, fmt.Errorf("stop recording: %w", err)
		}
		return false, &art, nil
	}

	stream, err := c.cfg.Device.DisplayMedia(ctx, true)
	if err != nil {
		return false, nil, fmt.Errorf("recording capture: %w", err)
	}
	rec, err = c.cfg.Device.NewRecorder(stream, media.RecordingName(c.cfg.RoomID, c.cfg.Now()))
	if err != nil {
		stream.Stop()
		return false, nil, fmt.Errorf("recording: %w", err)
	}
	if err := rec.Start(); err != nil {
		stream.Stop()
		return false, nil, fmt.Errorf("start recording: %w", err)
	}

	c.mu.Lock()
	if c.session != sid || c.state != Connected || c.recorder != nil {
		c.mu.Unlock()
		_, stopErr := rec.Stop()
		stream.Stop()
		return false, nil, errors.Join(ErrNotConnected, stopErr)
	}
	c.recorder = rec
	c.recStream = stream
	c.mu.Unlock()
	return true, nil, nil
}
