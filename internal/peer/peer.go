// Package peer negotiates the media connection of a call. Signals are
// complete session descriptions: candidates are gathered before an offer or
// answer is returned, so one signal per direction is enough.
package peer

import (
	"context"
	"errors"

	"nexthire/chat/internal/media"
	"nexthire/chat/internal/models"
)

var (
	ErrUnsupportedTrack = errors.New("track cannot be sent by this peer")
	ErrBadSignal        = errors.New("unexpected signal type")
	ErrClosed           = errors.New("peer closed")
)

// Config of one peer.
type Config struct {
	// Initiator peers create the offer; the other side answers it.
	Initiator  bool
	ICEServers []string
}

// RemoteTrack describes a track received from the other side.
type RemoteTrack struct {
	ID       string
	StreamID string
	Kind     media.Kind
}

// Peer is one side of a call's media connection.
type Peer interface {
	Offer(ctx context.Context) (models.Signal, error)
	Answer(ctx context.Context, offer models.Signal) (models.Signal, error)
	Accept(answer models.Signal) error
	// ReplaceVideoTrack swaps the outgoing video without renegotiation.
	ReplaceVideoTrack(t media.Track) error
	OnRemoteTrack(fn func(RemoteTrack))
	OnFailure(fn func(error))
	Close() error
}

// Factory creates peers sending the tracks of local.
type Factory interface {
	NewPeer(cfg Config, local media.Stream) (Peer, error)
}
