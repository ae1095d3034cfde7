// Package attachment stages at most one uploaded file for the next message.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"nexthire/chat/internal/models"
)

var ErrNothingStaged = errors.New("no attachment staged")

// Uploader turns a local file into a durable reference.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (models.Attachment, error)
}

// Stage holds the attachment of the message being composed. Attaching a new
// file replaces the previous one; a failed upload leaves nothing staged.
type Stage struct {
	uploader Uploader

	mu     sync.Mutex
	staged *models.Attachment
	seq    uint64
}

func NewStage(u Uploader) *Stage {
	return &Stage{uploader: u}
}

// Attach uploads r and stages the result.
func (s *Stage) Attach(ctx context.Context, name string, r io.Reader) (models.Attachment, error) {
	s.mu.Lock()
	s.staged = nil
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	att, err := s.uploader.Upload(ctx, name, r)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("upload %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A later Attach or Remove supersedes this upload.
	if seq != s.seq {
		return att, nil
	}
	s.staged = &att
	return att, nil
}

// Remove drops the staged attachment, including one still uploading.
func (s *Stage) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
	s.seq++
}

// Staged returns the staged attachment, if any.
func (s *Stage) Staged() (models.Attachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staged == nil {
		return models.Attachment{}, false
	}
	return *s.staged, true
}

// Take returns the staged attachment and clears the stage.
func (s *Stage) Take() (*models.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staged == nil {
		return nil, ErrNothingStaged
	}
	att := s.staged
	s.staged = nil
	return att, nil
}

// Restore puts att back if nothing else was staged meanwhile. It is used
// when sending the message failed.
func (s *Stage) Restore(att *models.Attachment) {
	if att == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staged == nil {
		s.staged = att
	}
}
