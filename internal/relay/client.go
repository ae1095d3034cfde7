// Package relay is the realtime hub of the development relay. It keeps the
// room membership of connected clients and forwards their events to the
// other members of the room, locally and across instances.
package relay

import "nexthire/chat/internal/models"

// Client is one realtime connection of a participant.
type Client interface {
	// GetUserID returns the participant authenticated for the connection.
	GetUserID() string
	// GetSendChannel returns the channel the hub writes outgoing events to.
	GetSendChannel() chan<- models.Event
	// Run starts the read and write pumps.
	Run()
	// Close stops the write pump. Only the hub calls it, once.
	Close()
}

// Incoming is an event read from a client.
type Incoming struct {
	Client Client
	Event  models.Event
}
