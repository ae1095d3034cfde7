// Package peertest provides an in-memory peer.Factory for tests.
package peertest

import (
	"context"
	"sync"

	"nexthire/chat/internal/media"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/peer"
)

// Factory records every peer it creates.
type Factory struct {
	mu    sync.Mutex
	peers []*Peer

	NewErr    error
	OfferErr  error
	AnswerErr error
	AcceptErr error
}

var _ peer.Factory = (*Factory)(nil)

func (f *Factory) NewPeer(cfg peer.Config, local media.Stream) (peer.Peer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NewErr != nil {
		return nil, f.NewErr
	}
	p := &Peer{Config: cfg, Local: local, factory: f}
	f.peers = append(f.peers, p)
	return p, nil
}

// Peers returns the created peers in order.
func (f *Factory) Peers() []*Peer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Peer(nil), f.peers...)
}

// Peer is a fake peer. Its offer and answer carry fixed SDP.
type Peer struct {
	Config peer.Config
	Local  media.Stream

	factory *Factory

	mu        sync.Mutex
	accepted  *models.Signal
	answered  *models.Signal
	replaced  []media.Track
	closed    int
	onRemote  func(peer.RemoteTrack)
	onFailure func(error)
}

func (p *Peer) Offer(ctx context.Context) (models.Signal, error) {
	if err := p.factory.err(func(f *Factory) error { return f.OfferErr }); err != nil {
		return models.Signal{}, err
	}
	return models.Signal{Type: "offer", SDP: "v=0 offer"}, nil
}

func (p *Peer) Answer(ctx context.Context, offer models.Signal) (models.Signal, error) {
	if err := p.factory.err(func(f *Factory) error { return f.AnswerErr }); err != nil {
		return models.Signal{}, err
	}
	p.mu.Lock()
	p.answered = &offer
	p.mu.Unlock()
	return models.Signal{Type: "answer", SDP: "v=0 answer"}, nil
}

func (p *Peer) Accept(answer models.Signal) error {
	if err := p.factory.err(func(f *Factory) error { return f.AcceptErr }); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accepted = &answer
	return nil
}

func (p *Peer) ReplaceVideoTrack(t media.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replaced = append(p.replaced, t)
	return nil
}

func (p *Peer) OnRemoteTrack(fn func(peer.RemoteTrack)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRemote = fn
}

func (p *Peer) OnFailure(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFailure = fn
}

func (p *Peer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

// Fail simulates a connection failure.
func (p *Peer) Fail(err error) {
	p.mu.Lock()
	fn := p.onFailure
	p.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// AddRemote simulates an incoming remote track.
func (p *Peer) AddRemote(t peer.RemoteTrack) {
	p.mu.Lock()
	fn := p.onRemote
	p.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

// Accepted returns the answer passed to Accept.
func (p *Peer) Accepted() *models.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accepted
}

// Answered returns the offer passed to Answer.
func (p *Peer) Answered() *models.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.answered
}

// Replaced returns the tracks passed to ReplaceVideoTrack.
func (p *Peer) Replaced() []media.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]media.Track(nil), p.replaced...)
}

// Closed reports how many times Close was called.
func (p *Peer) Closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (f *Factory) err(pick func(*Factory) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pick(f)
}
