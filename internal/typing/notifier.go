// Package typing tells the other participant when we are typing and tracks
// whether they are.
package typing

import (
	"strings"
	"sync"
	"time"

	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/transport"

	"go.uber.org/zap"
)

// Notifier is bound to one room. The other-typing flag clears itself when no
// typing event arrives for the timeout.
type Notifier struct {
	conn    transport.Conn
	roomID  string
	selfID  string
	timeout time.Duration
	log     *zap.SugaredLogger

	mu          sync.Mutex
	selfTyping  bool
	otherTyping bool
	timer       *time.Timer
	gen         uint64
	stopped     bool
	listeners   []func(bool)
}

func New(conn transport.Conn, roomID, selfID string, timeout time.Duration, log *zap.SugaredLogger) *Notifier {
	return &Notifier{
		conn:    conn,
		roomID:  roomID,
		selfID:  selfID,
		timeout: timeout,
		log:     logging.OrNop(log),
	}
}

// Bind registers the typing handlers on the connection.
func (n *Notifier) Bind() {
	n.conn.On(models.EventTyping, func(ev models.Event) {
		if _, ok := n.decode(ev); ok {
			n.setOther(true)
		}
	})
	n.conn.On(models.EventStopTyping, func(ev models.Event) {
		if _, ok := n.decode(ev); ok {
			n.setOther(false)
		}
	})
}

func (n *Notifier) decode(ev models.Event) (models.TypingPayload, bool) {
	var p models.TypingPayload
	if err := ev.Decode(&p); err != nil {
		n.log.Debugw("ignoring typing event", "error", err)
		return p, false
	}
	if p.RoomID == "" {
		p.RoomID = ev.RoomID
	}
	if p.RoomID != n.roomID || p.SenderID == n.selfID {
		return p, false
	}
	return p, true
}

// InputChanged reports the current content of the composer.
func (n *Notifier) InputChanged(text string) {
	empty := strings.TrimSpace(text) == ""

	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	wasTyping := n.selfTyping
	n.selfTyping = !empty
	n.mu.Unlock()

	switch {
	case !empty:
		n.emit(models.EventTyping)
	case wasTyping:
		n.emit(models.EventStopTyping)
	}
}

// MessageSent ends our typing state after a send.
func (n *Notifier) MessageSent() {
	n.mu.Lock()
	n.selfTyping = false
	stopped := n.stopped
	n.mu.Unlock()

	if !stopped {
		n.emit(models.EventStopTyping)
	}
}

// MessageReceived clears the other-typing flag when the other participant's
// message arrives.
func (n *Notifier) MessageReceived(senderID string) {
	if senderID != n.selfID {
		n.setOther(false)
	}
}

// OtherTyping reports whether the other participant is typing.
func (n *Notifier) OtherTyping() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.otherTyping
}

// OnChange registers fn to run whenever the other-typing flag changes.
func (n *Notifier) OnChange(fn func(typing bool)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Stop cancels the timer and silences the notifier.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = true
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) emit(event string) {
	err := n.conn.Emit(event, n.roomID, models.TypingPayload{RoomID: n.roomID, SenderID: n.selfID})
	if err != nil {
		n.log.Debugw("typing notification not sent", "event", event, "error", err)
	}
}

func (n *Notifier) setOther(typing bool) {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if typing && n.timeout > 0 {
		gen := n.gen
		n.timer = time.AfterFunc(n.timeout, func() { n.expire(gen) })
	}
	changed := n.otherTyping != typing
	n.otherTyping = typing
	listeners := append([]func(bool){}, n.listeners...)
	n.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(typing)
		}
	}
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || n.stopped {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.mu.Unlock()
	n.setOther(false)
}
