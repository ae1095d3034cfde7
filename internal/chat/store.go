// Package chat keeps the message list of one conversation and sends new
// messages into it.
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/models"

	"go.uber.org/zap"
)

var ErrMessageNotFound = errors.New("message not found")

// HistoryLoader fetches the persisted messages of a room.
type HistoryLoader interface {
	History(ctx context.Context, roomID string) ([]models.Message, error)
}

// Store is the ordered message list of a room. Messages keep the order in
// which they were appended and are never re-sorted.
type Store struct {
	history HistoryLoader
	log     *zap.SugaredLogger

	mu       sync.RWMutex
	roomID   string
	msgs     []models.Message
	ids      map[string]int
	onChange []func()
}

func NewStore(history HistoryLoader, log *zap.SugaredLogger) *Store {
	return &Store{
		history: history,
		log:     logging.OrNop(log),
		ids:     make(map[string]int),
	}
}

// Load replaces the list with the room history. On failure the list is left
// empty and the error is returned for logging only.
func (s *Store) Load(ctx context.Context, roomID string) error {
	msgs, err := s.history.History(ctx, roomID)
	if err != nil {
		s.log.Warnw("failed to load chat history", "room", roomID, "error", err)
		msgs = nil
	}

	s.mu.Lock()
	s.roomID = roomID
	s.msgs = s.msgs[:0]
	s.ids = make(map[string]int, len(msgs))
	for _, m := range msgs {
		s.appendLocked(m)
	}
	s.mu.Unlock()

	s.changed()
	return err
}

// Append adds m at the end. A message whose id is already stored is ignored
// and Append reports false.
func (s *Store) Append(m models.Message) bool {
	s.mu.Lock()
	ok := s.appendLocked(m)
	s.mu.Unlock()

	if ok {
		s.changed()
	}
	return ok
}

func (s *Store) appendLocked(m models.Message) bool {
	if m.ID != "" {
		if _, dup := s.ids[m.ID]; dup {
			return false
		}
		s.ids[m.ID] = len(s.msgs)
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	s.msgs = append(s.msgs, m.Clone())
	return true
}

// Messages returns a copy of the list in append order.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.msgs))
	for i, m := range s.msgs {
		out[i] = m.Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// RoomID is the room the list was last loaded for.
func (s *Store) RoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

// Search filters a snapshot of the list.
func (s *Store) Search(q Query, now time.Time, selfID string) []models.Message {
	return Search(s.Messages(), q, now, selfID)
}

// React toggles userID's emoji reaction on a stored message and reports
// whether it was added.
func (s *Store) React(messageID, emoji, userID string) (bool, error) {
	s.mu.Lock()
	i, ok := s.ids[messageID]
	if !ok {
		s.mu.Unlock()
		return false, ErrMessageNotFound
	}
	added := s.msgs[i].Reactions.Toggle(emoji, userID)
	s.mu.Unlock()

	s.changed()
	return added, nil
}

// OnChange registers fn to run after every change of the list.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Store) changed() {
	s.mu.RLock()
	fns := append([]func(){}, s.onChange...)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
