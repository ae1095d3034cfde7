package peer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/media"
	"nexthire/chat/internal/models"

	"github.com/pion/webrtc/v4"
	"go.uber.org/zap"
)

// pionTrack is implemented by tracks that can be sent over a pion connection.
type pionTrack interface {
	Local() webrtc.TrackLocal
}

// PionFactory creates pion/webrtc peer connections.
type PionFactory struct {
	iceServers []string
	log        *zap.SugaredLogger
}

func NewPionFactory(iceServers []string, log *zap.SugaredLogger) *PionFactory {
	return &PionFactory{iceServers: iceServers, log: logging.OrNop(log)}
}

func (f *PionFactory) NewPeer(cfg Config, local media.Stream) (Peer, error) {
	urls := cfg.ICEServers
	if len(urls) == 0 {
		urls = f.iceServers
	}
	conf := webrtc.Configuration{}
	if len(urls) > 0 {
		conf.ICEServers = []webrtc.ICEServer{{URLs: urls}}
	}

	pc, err := webrtc.NewPeerConnection(conf)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}

	p := &pionPeer{pc: pc, initiator: cfg.Initiator, log: f.log}
	if local != nil {
		for _, t := range local.Tracks() {
			pt, ok := t.(pionTrack)
			if !ok {
				pc.Close()
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedTrack, t.ID())
			}
			sender, err := pc.AddTrack(pt.Local())
			if err != nil {
				pc.Close()
				return nil, fmt.Errorf("add %s track: %w", t.Kind(), err)
			}
			if t.Kind() == media.Video && p.video == nil {
				p.video = sender
			}
		}
	}

	pc.OnTrack(p.handleTrack)
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		p.log.Debugw("peer connection state", "state", s.String())
		if s == webrtc.PeerConnectionStateFailed {
			p.fail(errors.New("peer connection failed"))
		}
	})
	return p, nil
}

type pionPeer struct {
	pc        *webrtc.PeerConnection
	initiator bool
	video     *webrtc.RTPSender
	log       *zap.SugaredLogger

	mu       sync.Mutex
	onRemote func(RemoteTrack)
	onFail   func(error)
	closed   bool
}

func (p *pionPeer) Offer(ctx context.Context) (models.Signal, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return models.Signal{}, fmt.Errorf("create offer: %w", err)
	}
	return p.complete(ctx, offer)
}

func (p *pionPeer) Answer(ctx context.Context, offer models.Signal) (models.Signal, error) {
	if webrtc.NewSDPType(offer.Type) != webrtc.SDPTypeOffer {
		return models.Signal{}, fmt.Errorf("%w: %q", ErrBadSignal, offer.Type)
	}
	if err := p.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offer.SDP}); err != nil {
		return models.Signal{}, fmt.Errorf("set remote offer: %w", err)
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return models.Signal{}, fmt.Errorf("create answer: %w", err)
	}
	return p.complete(ctx, answer)
}

// complete sets the local description and waits for candidate gathering.
func (p *pionPeer) complete(ctx context.Context, desc webrtc.SessionDescription) (models.Signal, error) {
	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(desc); err != nil {
		return models.Signal{}, fmt.Errorf("set local %s: %w", desc.Type, err)
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		return models.Signal{}, ctx.Err()
	}
	ld := p.pc.LocalDescription()
	if ld == nil {
		return models.Signal{}, ErrClosed
	}
	return models.Signal{Type: ld.Type.String(), SDP: ld.SDP}, nil
}

func (p *pionPeer) Accept(answer models.Signal) error {
	if webrtc.NewSDPType(answer.Type) != webrtc.SDPTypeAnswer {
		return fmt.Errorf("%w: %q", ErrBadSignal, answer.Type)
	}
	if err := p.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: answer.SDP}); err != nil {
		return fmt.Errorf("set remote answer: %w", err)
	}
	return nil
}

func (p *pionPeer) ReplaceVideoTrack(t media.Track) error {
	pt, ok := t.(pionTrack)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedTrack, t.ID())
	}
	if p.video == nil {
		return fmt.Errorf("%w: no outgoing video", ErrUnsupportedTrack)
	}
	return p.video.ReplaceTrack(pt.Local())
}

func (p *pionPeer) OnRemoteTrack(fn func(RemoteTrack)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRemote = fn
}

func (p *pionPeer) OnFailure(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFail = fn
}

func (p *pionPeer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	return p.pc.Close()
}

func (p *pionPeer) handleTrack(tr *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	p.mu.Lock()
	fn := p.onRemote
	p.mu.Unlock()
	if fn != nil {
		fn(RemoteTrack{ID: tr.ID(), StreamID: tr.StreamID(), Kind: media.Kind(tr.Kind().String())})
	}

	// Nothing renders remote media here; drain it so pion's buffers stay empty.
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := tr.Read(buf); err != nil {
				return
			}
		}
	}()
}

func (p *pionPeer) fail(err error) {
	p.mu.Lock()
	fn := p.onFail
	closed := p.closed
	p.mu.Unlock()
	if fn != nil && !closed {
		fn(err)
	}
}
