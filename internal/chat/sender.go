package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/transport"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyMessage = errors.New("message has no text, attachment or gif")
	ErrSendInFlight = errors.New("a message is already being sent")
)

// MessagePoster persists an outgoing message.
type MessagePoster interface {
	SendMessage(ctx context.Context, roomID string, msg models.OutgoingMessage) (models.Message, error)
}

// Draft is what the user composed.
type Draft struct {
	Text       string
	Attachment *models.Attachment
	GIF        string
}

// Empty reports whether the draft has nothing to send.
func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Text) == "" && d.Attachment == nil && d.GIF == ""
}

// Sender posts messages of one participant into one room. Only one send
// runs at a time.
type Sender struct {
	roomID string
	self   models.Participant
	poster MessagePoster
	store  *Store
	conn   transport.Conn
	log    *zap.SugaredLogger

	inFlight atomic.Bool
}

func NewSender(roomID string, self models.Participant, poster MessagePoster, store *Store, conn transport.Conn, log *zap.SugaredLogger) *Sender {
	return &Sender{
		roomID: roomID,
		self:   self,
		poster: poster,
		store:  store,
		conn:   conn,
		log:    logging.OrNop(log),
	}
}

// Send persists the draft, appends the stored message and broadcasts it to
// the room. Nothing is appended when persisting fails.
func (s *Sender) Send(ctx context.Context, d Draft) (models.Message, error) {
	if d.Empty() {
		return models.Message{}, ErrEmptyMessage
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return models.Message{}, ErrSendInFlight
	}
	defer s.inFlight.Store(false)

	out := models.OutgoingMessage{
		Message:    d.Text,
		SenderID:   s.self.ID,
		SenderRole: s.self.Role,
		GIF:        d.GIF,
	}
	if d.Attachment != nil {
		out.FileURL = d.Attachment.URL
		out.FileType = d.Attachment.Type
		out.FileName = d.Attachment.Name
	}

	msg, err := s.poster.SendMessage(ctx, s.roomID, out)
	if err != nil {
		return models.Message{}, fmt.Errorf("send message: %w", err)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.RoomID == "" {
		msg.RoomID = s.roomID
	}
	if msg.SenderID == "" {
		msg.SenderID = s.self.ID
		msg.SenderRole = s.self.Role
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	s.store.Append(msg)

	if err := s.conn.Emit(models.EventSendMessage, s.roomID, models.SendMessagePayload{RoomID: s.roomID, Message: msg}); err != nil {
		s.log.Warnw("message saved but not broadcast", "room", s.roomID, "error", err)
	}
	return msg, nil
}

// Sending reports whether a send is in progress.
func (s *Sender) Sending() bool { return s.inFlight.Load() }
