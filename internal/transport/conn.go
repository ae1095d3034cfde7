// Package transport is the realtime socket client: a persistent websocket
// connection to the relay carrying JSON event envelopes.
package transport

import (
	"errors"

	"nexthire/chat/internal/models"
)

var (
	ErrClosed     = errors.New("transport closed")
	ErrOffline    = errors.New("transport offline")
	ErrBufferFull = errors.New("transport send buffer full")
)

// Handler receives one inbound event.
type Handler func(models.Event)

// Conn is the realtime connection seen by the chat components.
type Conn interface {
	// JoinRoom subscribes to a room. Joining the same room twice is a no-op.
	JoinRoom(roomID string) error
	LeaveRoom(roomID string) error
	// Emit queues an event for delivery and never waits for the network.
	Emit(event, roomID string, payload any) error
	// On registers a handler. Handlers of one event run in arrival order.
	On(event string, h Handler)
	Disconnect()
	Done() <-chan struct{}
}

// Offline is the Conn used when the socket cannot be reached. Handlers are
// accepted and never called; emits fail with ErrOffline.
type Offline struct {
	done chan struct{}
}

func NewOffline() *Offline {
	done := make(chan struct{})
	close(done)
	return &Offline{done: done}
}

func (o *Offline) JoinRoom(string) error          { return nil }
func (o *Offline) LeaveRoom(string) error         { return nil }
func (o *Offline) Emit(string, string, any) error { return ErrOffline }
func (o *Offline) On(string, Handler)             {}
func (o *Offline) Disconnect()                    {}
func (o *Offline) Done() <-chan struct{}          { return o.done }
