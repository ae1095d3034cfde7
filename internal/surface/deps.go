// Package surface holds the headless controllers behind the chat screens: a
// conversation Surface shared by the full-screen chat and the inline panel,
// and the recruiter Inbox.
package surface

import (
	"context"
	"sync"

	"nexthire/chat/internal/attachment"
	"nexthire/chat/internal/chat"
	"nexthire/chat/internal/localization"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/transport"
)

// CurrentUser reads the signed-in participant.
type CurrentUser interface {
	Current() models.Participant
}

// ActiveRoom reads and updates the room the user has open.
type ActiveRoom interface {
	ActiveRoom() string
	SetActiveRoom(roomID string)
}

// JobSearchQuery reads and updates the search text shared with the job
// listings. The inbox filters conversations by it.
type JobSearchQuery interface {
	Query() string
	SetQuery(q string)
}

// Backend is the part of the REST client a conversation needs.
type Backend interface {
	chat.HistoryLoader
	chat.MessagePoster
	attachment.Uploader
	SaveInterview(ctx context.Context, rec models.InterviewRecord) error
}

// Dialer opens the realtime connection of a surface.
type Dialer func(ctx context.Context) (transport.Conn, error)

// Alerts shows localized notices. Toast is for recoverable errors and
// confirmations, Modal for failures that block a call.
type Alerts interface {
	Toast(text string)
	Modal(text string)
}

// NopAlerts discards every notice.
type NopAlerts struct{}

func (NopAlerts) Toast(string) {}
func (NopAlerts) Modal(string) {}

// State is an in-memory CurrentUser, ActiveRoom and JobSearchQuery.
type State struct {
	mu    sync.RWMutex
	user  models.Participant
	room  string
	query string
}

func NewState(user models.Participant) *State { return &State{user: user} }

func (s *State) Current() models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *State) ActiveRoom() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

func (s *State) SetActiveRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = roomID
}

func (s *State) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *State) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// notifier localizes notice keys before they reach the alerts sink.
type notifier struct {
	alerts Alerts
	loc    *localization.Localizer
	lang   string
}

func (n notifier) toast(key string) { n.alerts.Toast(n.loc.GetString(n.lang, key)) }
func (n notifier) modal(key string) { n.alerts.Modal(n.loc.GetString(n.lang, key)) }
