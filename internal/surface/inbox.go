package surface

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"nexthire/chat/internal/models"
)

var ErrUnknownConversation = errors.New("conversation not in inbox")

// ConversationLister lists the applicant conversations of a recruiter.
type ConversationLister interface {
	Conversations(ctx context.Context, recruiterID string) ([]models.Conversation, error)
}

// Inbox is the recruiter's list of conversations. At most one conversation
// surface is open at a time.
type Inbox struct {
	cfg    Config
	lister ConversationLister
	query  JobSearchQuery
	notice notifier

	mu            sync.Mutex
	conversations []models.Conversation
	selected      *Surface
	// gen counts selections; a Select that lost a race to a newer one or
	// to Close discards the surface it opened.
	gen    uint64
	closed bool
}

// NewInbox builds an inbox whose surfaces are created from cfg. query may be
// nil, in which case the filter is kept locally.
func NewInbox(cfg Config, lister ConversationLister, query JobSearchQuery) *Inbox {
	cfg.defaults()
	if query == nil {
		query = NewState(models.Participant{})
	}
	return &Inbox{
		cfg:    cfg,
		lister: lister,
		query:  query,
		notice: notifier{alerts: cfg.Alerts, loc: cfg.Localizer, lang: cfg.Language},
	}
}

// Refresh reloads the conversations. On failure the previous list is kept.
func (in *Inbox) Refresh(ctx context.Context) error {
	self := in.cfg.User.Current()
	if self.Role != models.RoleRecruiter {
		return ErrNotRecruiter
	}
	convs, err := in.lister.Conversations(ctx, self.ID)
	if err != nil {
		in.cfg.Log.Warnw("failed to load conversations", "recruiter", self.ID, "error", err)
		in.notice.toast(noticeFor(err))
		return fmt.Errorf("load conversations: %w", err)
	}
	in.mu.Lock()
	in.conversations = convs
	in.mu.Unlock()
	return nil
}

// Filter stores the candidate name filter and returns the matching
// conversations.
func (in *Inbox) Filter(query string) []models.Conversation {
	in.query.SetQuery(query)
	return in.Conversations()
}

// Conversations returns the conversations matching the current filter.
func (in *Inbox) Conversations() []models.Conversation {
	q := strings.ToLower(strings.TrimSpace(in.query.Query()))
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]models.Conversation, 0, len(in.conversations))
	for _, c := range in.conversations {
		if q == "" || strings.Contains(strings.ToLower(c.CandidateName), q) {
			out = append(out, c)
		}
	}
	return out
}

// Select opens the conversation with candidateID, closing the one open
// before. It returns ErrClosed once the inbox is closed, including when
// Close runs while the conversation is still opening.
func (in *Inbox) Select(ctx context.Context, candidateID string) (*Surface, error) {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return nil, ErrClosed
	}
	found := false
	for _, c := range in.conversations {
		if c.CandidateID == candidateID {
			found = true
			break
		}
	}
	if !found {
		in.mu.Unlock()
		return nil, ErrUnknownConversation
	}
	prev := in.selected
	if prev != nil && prev.RemoteID() == candidateID {
		in.mu.Unlock()
		return prev, nil
	}
	in.selected = nil
	in.gen++
	gen := in.gen
	in.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	s, err := New(in.cfg, candidateID)
	if err != nil {
		return nil, err
	}
	if err := s.Open(ctx); err != nil {
		s.Close()
		return nil, err
	}

	in.mu.Lock()
	if in.closed || in.gen != gen {
		in.mu.Unlock()
		s.Close()
		return nil, ErrClosed
	}
	stale := in.selected
	in.selected = s
	in.mu.Unlock()
	if stale != nil && stale != s {
		stale.Close()
	}
	return s, nil
}

// Selected returns the open conversation, if any.
func (in *Inbox) Selected() *Surface {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.selected
}

// Close closes the open conversation. Later selections fail with ErrClosed.
func (in *Inbox) Close() {
	in.mu.Lock()
	in.closed = true
	s := in.selected
	in.selected = nil
	in.mu.Unlock()
	if s != nil {
		s.Close()
	}
}
