package surface

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"nexthire/chat/internal/attachment"
	"nexthire/chat/internal/backend"
	"nexthire/chat/internal/call"
	"nexthire/chat/internal/chat"
	"nexthire/chat/internal/config"
	"nexthire/chat/internal/localization"
	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/media"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/peer"
	"nexthire/chat/internal/room"
	"nexthire/chat/internal/transport"
	"nexthire/chat/internal/typing"

	"go.uber.org/zap"
)

var (
	ErrNotOpen      = errors.New("surface is not open")
	ErrClosed       = errors.New("surface is closed")
	ErrUnknownGIF   = errors.New("gif is not in the curated set")
	ErrNotRecruiter = errors.New("only recruiters can save interview notes")
	ErrInvalidPeer  = errors.New("conversation needs two distinct participants")
)

// Config carries everything a surface needs. User, Backend, Dial, Device and
// Peers are required.
type Config struct {
	User    CurrentUser
	Room    ActiveRoom
	Backend Backend
	Dial    Dialer
	Device  media.Device
	Peers   peer.Factory
	Alerts  Alerts

	Localizer *localization.Localizer
	Language  string
	Quality   media.Quality

	TypingTimeout time.Duration
	RingTimeout   time.Duration

	Log *zap.SugaredLogger
	Now func() time.Time
}

func (c *Config) defaults() {
	if c.Alerts == nil {
		c.Alerts = NopAlerts{}
	}
	if c.Localizer == nil {
		c.Localizer = localization.Default()
	}
	if c.Language == "" {
		c.Language = config.DefaultLanguage
	}
	if c.Quality == "" {
		c.Quality = media.Medium
	}
	if c.TypingTimeout <= 0 {
		c.TypingTimeout = config.DefaultTypingTimeout
	}
	if c.RingTimeout <= 0 {
		c.RingTimeout = config.DefaultRingTimeout
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.Log = logging.OrNop(c.Log)
}

// Surface is one open conversation between the current user and a remote
// participant. The full-screen chat and the inline panel both drive a
// Surface; they differ only in presentation.
type Surface struct {
	cfg    Config
	self   models.Participant
	remote string
	roomID string
	notice notifier
	log    *zap.SugaredLogger

	store  *chat.Store
	stage  *attachment.Stage
	sender *chat.Sender

	mu     sync.Mutex
	conn   transport.Conn
	typing *typing.Notifier
	call   *call.Coordinator
	opened bool
	closed bool
	online bool
}

// New prepares a surface for the conversation with remoteID.
func New(cfg Config, remoteID string) (*Surface, error) {
	cfg.defaults()
	self := cfg.User.Current()
	if self.ID == "" || remoteID == "" || self.ID == remoteID {
		return nil, fmt.Errorf("%w: %q with %q", ErrInvalidPeer, self.ID, remoteID)
	}
	roomID := room.ID(self.ID, remoteID)
	s := &Surface{
		cfg:    cfg,
		self:   self,
		remote: remoteID,
		roomID: roomID,
		notice: notifier{alerts: cfg.Alerts, loc: cfg.Localizer, lang: cfg.Language},
		log:    cfg.Log.With("room", roomID),
		store:  chat.NewStore(cfg.Backend, cfg.Log),
		stage:  attachment.NewStage(cfg.Backend),
	}
	return s, nil
}

func (s *Surface) RoomID() string { return s.roomID }

func (s *Surface) RemoteID() string { return s.remote }

// Open connects the realtime channel, binds the room handlers and loads the
// history. A failed connection leaves the surface usable offline.
func (s *Surface) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.opened {
		s.mu.Unlock()
		return nil
	}
	s.opened = true
	s.mu.Unlock()

	conn, err := s.cfg.Dial(ctx)
	online := err == nil
	if err != nil {
		s.log.Warnw("realtime connection unavailable, continuing offline", "error", err)
		s.notice.toast(localization.Offline)
		conn = transport.NewOffline()
	}

	notifier := typing.New(conn, s.roomID, s.self.ID, s.cfg.TypingTimeout, s.log)
	coordinator := call.NewCoordinator(call.Config{
		RoomID:      s.roomID,
		Self:        s.self,
		Remote:      s.remote,
		Conn:        conn,
		Device:      s.cfg.Device,
		Peers:       s.cfg.Peers,
		RingTimeout: s.cfg.RingTimeout,
		Log:         s.log,
		Now:         s.cfg.Now,
	})
	sender := chat.NewSender(s.roomID, s.self, s.cfg.Backend, s.store, conn, s.log)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Disconnect()
		return ErrClosed
	}
	s.conn = conn
	s.typing = notifier
	s.call = coordinator
	s.sender = sender
	s.online = online
	s.mu.Unlock()

	conn.On(models.EventReceiveMessage, s.handleMessage)
	notifier.Bind()
	coordinator.Bind()
	coordinator.OnEvent(s.handleCallEvent)

	if err := s.store.Load(ctx, s.roomID); err != nil {
		// An empty conversation is shown instead of an error.
		s.log.Debugw("history unavailable", "error", err)
	}

	if err := conn.JoinRoom(s.roomID); err != nil {
		s.log.Warnw("failed to join room", "error", err)
	}
	if s.cfg.Room != nil {
		s.cfg.Room.SetActiveRoom(s.roomID)
	}
	return nil
}

// Online reports whether the realtime connection was established.
func (s *Surface) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// Close releases the call, the typing timers and the connection. It is safe
// to call more than once.
func (s *Surface) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conn, notifier, coordinator := s.conn, s.typing, s.call
	s.mu.Unlock()

	if coordinator != nil {
		coordinator.Close()
	}
	if notifier != nil {
		notifier.Stop()
	}
	if conn != nil {
		if err := conn.LeaveRoom(s.roomID); err != nil {
			s.log.Debugw("leave room", "error", err)
		}
		conn.Disconnect()
	}
	if s.cfg.Room != nil && s.cfg.Room.ActiveRoom() == s.roomID {
		s.cfg.Room.SetActiveRoom("")
	}
}

func (s *Surface) handleMessage(ev models.Event) {
	var wire models.WireMessage
	if err := ev.Decode(&wire); err != nil {
		s.log.Debugw("ignoring message", "error", err)
		return
	}
	msg := wire.Canonical()
	if msg.RoomID == "" {
		msg.RoomID = ev.RoomID
	}
	if msg.RoomID != s.roomID {
		return
	}
	s.store.Append(msg)
	if n := s.notifierOrNil(); n != nil {
		n.MessageReceived(msg.SenderID)
	}
}

func (s *Surface) notifierOrNil() *typing.Notifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

func (s *Surface) ready() (*chat.Sender, *typing.Notifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, ErrClosed
	}
	if !s.opened || s.sender == nil {
		return nil, nil, ErrNotOpen
	}
	return s.sender, s.typing, nil
}

// Messages returns the conversation in arrival order.
func (s *Surface) Messages() []models.Message { return s.store.Messages() }

// OnChange registers fn to run whenever the message list changes.
func (s *Surface) OnChange(fn func()) { s.store.OnChange(fn) }

// Send posts text together with the staged attachment, if any. An empty
// draft or a send already in flight is rejected without a network call.
func (s *Surface) Send(ctx context.Context, text string) (models.Message, error) {
	sender, notifier, err := s.ready()
	if err != nil {
		return models.Message{}, err
	}
	att, _ := s.stage.Take()
	msg, err := sender.Send(ctx, chat.Draft{Text: text, Attachment: att})
	if err != nil {
		s.stage.Restore(att)
		s.sendFailed(err)
		return models.Message{}, err
	}
	notifier.MessageSent()
	return msg, nil
}

// SendGIF posts one of the curated GIFs.
func (s *Surface) SendGIF(ctx context.Context, url string) (models.Message, error) {
	if !models.IsCuratedGIF(url) {
		return models.Message{}, ErrUnknownGIF
	}
	sender, notifier, err := s.ready()
	if err != nil {
		return models.Message{}, err
	}
	msg, err := sender.Send(ctx, chat.Draft{GIF: url})
	if err != nil {
		s.sendFailed(err)
		return models.Message{}, err
	}
	notifier.MessageSent()
	return msg, nil
}

func (s *Surface) sendFailed(err error) {
	if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrSendInFlight) {
		return
	}
	s.log.Warnw("failed to send message", "error", err)
	s.toastFor(err, localization.SendFailed)
}

// toastFor shows the notice of a backend error, or fallback for errors the
// backend client does not classify.
func (s *Surface) toastFor(err error, fallback string) {
	key := noticeFor(err)
	if key == localization.NetworkError {
		key = fallback
	}
	s.notice.toast(key)
}

func noticeFor(err error) string { return backend.Notice(err) }

// Attach uploads a file and stages it for the next Send.
func (s *Surface) Attach(ctx context.Context, name string, r io.Reader) (models.Attachment, error) {
	att, err := s.stage.Attach(ctx, name, r)
	if err != nil {
		s.log.Warnw("upload failed", "file", name, "error", err)
		s.toastFor(err, localization.UploadFailed)
		return models.Attachment{}, err
	}
	return att, nil
}

// RemoveAttachment drops the staged attachment.
func (s *Surface) RemoveAttachment() { s.stage.Remove() }

// Staged returns the attachment waiting for the next Send.
func (s *Surface) Staged() (models.Attachment, bool) { return s.stage.Staged() }

// InputChanged reports the compose box content for typing notifications.
func (s *Surface) InputChanged(text string) {
	if _, notifier, err := s.ready(); err == nil {
		notifier.InputChanged(text)
	}
}

// OtherTyping reports whether the remote participant is typing.
func (s *Surface) OtherTyping() bool {
	if n := s.notifierOrNil(); n != nil {
		return n.OtherTyping()
	}
	return false
}

// OnTyping registers fn for changes of the remote typing indicator.
func (s *Surface) OnTyping(fn func(bool)) error {
	_, notifier, err := s.ready()
	if err != nil {
		return err
	}
	notifier.OnChange(fn)
	return nil
}

// Search filters the loaded conversation.
func (s *Surface) Search(q chat.Query) []models.Message {
	return s.store.Search(q, s.cfg.Now(), s.self.ID)
}

// React toggles the current user's emoji on a message and reports whether
// the reaction was added.
func (s *Surface) React(messageID, emoji string) (bool, error) {
	return s.store.React(messageID, emoji, s.self.ID)
}
