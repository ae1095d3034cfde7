package surface

import (
	"context"
	"errors"
	"fmt"

	"nexthire/chat/internal/call"
	"nexthire/chat/internal/localization"
	"nexthire/chat/internal/media"
	"nexthire/chat/internal/models"
)

func (s *Surface) coordinator() (*call.Coordinator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.call == nil {
		return nil, ErrNotOpen
	}
	return s.call, nil
}

// OnCallEvent registers fn for call state changes.
func (s *Surface) OnCallEvent(fn func(call.Event)) error {
	c, err := s.coordinator()
	if err != nil {
		return err
	}
	c.OnEvent(fn)
	return nil
}

// CallState returns the observable call state.
func (s *Surface) CallState() call.Snapshot {
	c, err := s.coordinator()
	if err != nil {
		return call.Snapshot{State: call.Idle}
	}
	return c.Snapshot()
}

// StartCall rings the remote participant with the configured quality.
func (s *Surface) StartCall(ctx context.Context) error {
	c, err := s.coordinator()
	if err != nil {
		return err
	}
	return c.StartCall(ctx, s.cfg.Quality)
}

// Answer accepts the ringing incoming call.
func (s *Surface) Answer(ctx context.Context) error {
	c, err := s.coordinator()
	if err != nil {
		return err
	}
	return c.Answer(ctx, s.cfg.Quality)
}

func (s *Surface) Decline() error {
	c, err := s.coordinator()
	if err != nil {
		return err
	}
	return c.Decline()
}

func (s *Surface) HangUp() error {
	c, err := s.coordinator()
	if err != nil {
		return err
	}
	return c.HangUp()
}

func (s *Surface) ToggleAudio() (bool, error) {
	c, err := s.coordinator()
	if err != nil {
		return false, err
	}
	return c.ToggleAudio()
}

func (s *Surface) ToggleVideo() (bool, error) {
	c, err := s.coordinator()
	if err != nil {
		return false, err
	}
	return c.ToggleVideo()
}

// ToggleScreenShare starts or stops sharing the screen in place of the
// camera. Platforms without screen capture get an alert.
func (s *Surface) ToggleScreenShare(ctx context.Context) (bool, error) {
	c, err := s.coordinator()
	if err != nil {
		return false, err
	}
	on, err := c.ToggleScreenShare(ctx)
	if err != nil && call.IsMediaError(err) {
		s.notice.toast(localization.ScreenShareUnavailable)
	}
	return on, err
}

// ToggleRecording starts or stops the local recording. Stopping returns the
// saved artifact.
func (s *Surface) ToggleRecording(ctx context.Context) (bool, *media.Artifact, error) {
	c, err := s.coordinator()
	if err != nil {
		return false, nil, err
	}
	on, art, err := c.ToggleRecording(ctx)
	switch {
	case err != nil && call.IsMediaError(err):
		s.notice.toast(localization.RecordingUnavailable)
	case art != nil:
		s.notice.toast(localization.RecordingSaved)
	}
	return on, art, err
}

func (s *Surface) handleCallEvent(ev call.Event) {
	switch ev.State {
	case call.Failed:
		if call.IsMediaError(ev.Err) {
			s.notice.modal(localization.MediaDenied)
		} else {
			s.notice.toast(localization.CallFailed)
		}
	case call.Ended:
		switch ev.Reason {
		case call.ReasonMissed:
			s.notice.toast(localization.CallMissed)
		case call.ReasonDeclined:
			s.notice.toast(localization.CallDeclined)
		case call.ReasonRemote:
			s.notice.toast(localization.CallEnded)
		}
		if ev.Artifact != nil {
			s.notice.toast(localization.RecordingSaved)
		}
	}
}

// InterviewNotes is what a recruiter records after a call.
type InterviewNotes struct {
	Notes  string
	Rating int
}

// SaveInterview stores the recruiter's notes for this conversation together
// with the duration of the current or last call.
func (s *Surface) SaveInterview(ctx context.Context, in InterviewNotes) (models.InterviewRecord, error) {
	if s.self.Role != models.RoleRecruiter {
		return models.InterviewRecord{}, ErrNotRecruiter
	}
	rec := models.InterviewRecord{
		RoomID:      s.roomID,
		CandidateID: s.remote,
		RecruiterID: s.self.ID,
		Notes:       in.Notes,
		Rating:      in.Rating,
		Timestamp:   s.cfg.Now().UTC(),
	}
	if c, err := s.coordinator(); err == nil {
		rec.DurationSeconds = int(c.Duration().Seconds())
	}
	if err := rec.Validate(); err != nil {
		return models.InterviewRecord{}, err
	}
	if err := s.cfg.Backend.SaveInterview(ctx, rec); err != nil {
		s.log.Warnw("failed to save interview", "error", err)
		if errors.Is(err, models.ErrInvalidRating) {
			return models.InterviewRecord{}, err
		}
		s.notice.toast(localization.InterviewSaveFailed)
		return models.InterviewRecord{}, fmt.Errorf("save interview: %w", err)
	}
	s.notice.toast(localization.InterviewSaved)
	return rec, nil
}
