// Package transporttest provides an in-memory transport.Conn for tests.
package transporttest

import (
	"encoding/json"
	"sync"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/transport"
)

// Emitted is one event passed to Emit.
type Emitted struct {
	Name    string
	RoomID  string
	Payload any
}

// Conn records emitted events and delivers injected events synchronously.
type Conn struct {
	mu       sync.Mutex
	handlers map[string][]transport.Handler
	emitted  []Emitted
	joined   []string
	left     []string
	closed   bool
	calls    int
	done     chan struct{}
	// EmitErr, when set, is returned by Emit.
	EmitErr error
	// OnEmit, when set, runs after an event is recorded, outside the lock.
	// Tests use it to answer an emitted event immediately.
	OnEmit func(event, roomID string)
}

var _ transport.Conn = (*Conn)(nil)

func New() *Conn {
	return &Conn{handlers: make(map[string][]transport.Handler), done: make(chan struct{})}
}

func (c *Conn) JoinRoom(roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined = append(c.joined, roomID)
	return nil
}

func (c *Conn) LeaveRoom(roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left = append(c.left, roomID)
	return nil
}

func (c *Conn) Emit(event, roomID string, payload any) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return transport.ErrClosed
	}
	if c.EmitErr != nil {
		c.mu.Unlock()
		return c.EmitErr
	}
	c.emitted = append(c.emitted, Emitted{Name: event, RoomID: roomID, Payload: payload})
	hook := c.OnEmit
	c.mu.Unlock()
	if hook != nil {
		hook(event, roomID)
	}
	return nil
}

func (c *Conn) On(event string, h transport.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// Disconnect closes the connection once; every call is counted.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

func (c *Conn) Done() <-chan struct{} { return c.done }

// Deliver encodes payload and runs the handlers registered for event.
func (c *Conn) Deliver(event, roomID string, payload any) {
	ev, err := models.NewEvent(event, roomID, payload)
	if err != nil {
		panic(err)
	}
	c.mu.Lock()
	hs := append([]transport.Handler(nil), c.handlers[event]...)
	c.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

// Emitted returns a copy of the emitted events.
func (c *Conn) Emitted() []Emitted {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Emitted(nil), c.emitted...)
}

// Names returns the names of the emitted events in order.
func (c *Conn) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.emitted))
	for i, e := range c.emitted {
		out[i] = e.Name
	}
	return out
}

// Last returns the most recent emitted event named event, decoded into v via JSON.
func (c *Conn) Last(event string, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.emitted) - 1; i >= 0; i-- {
		if c.emitted[i].Name != event {
			continue
		}
		data, err := json.Marshal(c.emitted[i].Payload)
		if err != nil {
			return false
		}
		return json.Unmarshal(data, v) == nil
	}
	return false
}

func (c *Conn) Joined() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.joined...)
}

// Disconnects reports how many times Disconnect was called.
func (c *Conn) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *Conn) Left() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.left...)
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
