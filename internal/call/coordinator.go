// Package call coordinates a one-to-one video call: local media, one peer
// connection per session and the signaling events exchanged over the room
// socket.
package call

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/media"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/peer"
	"nexthire/chat/internal/transport"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config wires a coordinator to one room.
type Config struct {
	RoomID string
	Self   models.Participant
	// Remote is the participant called by StartCall.
	Remote      string
	Conn        transport.Conn
	Device      media.Device
	Peers       peer.Factory
	RingTimeout time.Duration
	Log         *zap.SugaredLogger
	Now         func() time.Time
}

// Coordinator owns the call session of a room. At most one session exists at
// a time and each session has exactly one peer.
type Coordinator struct {
	cfg Config
	log *zap.SugaredLogger

	mu          sync.Mutex
	state       State
	session     string
	pending     bool
	closed      bool
	exchanged   bool
	offer       *models.Signal
	remoteID    string
	remoteName  string
	local       media.Stream
	peer        peer.Peer
	screen      media.Stream
	recStream   media.Stream
	recorder    media.Recorder
	remote      []peer.RemoteTrack
	audioOn     bool
	videoOn     bool
	connectedAt time.Time
	lastCall    time.Duration
	ringTimer   *time.Timer
	listeners   []func(Event)
}

func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Coordinator{cfg: cfg, log: logging.OrNop(cfg.Log)}
}

// Bind registers the signaling handlers on the room connection.
func (c *Coordinator) Bind() {
	c.cfg.Conn.On(models.EventCallUser, c.handleOffer)
	c.cfg.Conn.On(models.EventCallAccepted, c.handleAccepted)
	c.cfg.Conn.On(models.EventCallEnded, c.handleEnded)
}

// OnEvent registers fn for state change events.
func (c *Coordinator) OnEvent(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartCall calls the remote participant.
func (c *Coordinator) StartCall(ctx context.Context, q media.Quality) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCallEnded
	}
	if c.state != Idle || c.pending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.pending = true
	c.session = uuid.NewString()
	sid := c.session
	c.remoteID = c.cfg.Remote
	c.remoteName = ""
	c.mu.Unlock()
	defer c.clearPending()

	stream, err := c.cfg.Device.UserMedia(ctx, q.Constraints())
	if err != nil {
		err = fmt.Errorf("acquire media: %w", err)
		c.finish(sid, Failed, ReasonFailed, err, false)
		return err
	}
	p, err := c.cfg.Peers.NewPeer(peer.Config{Initiator: true}, stream)
	if err != nil {
		stream.Stop()
		err = fmt.Errorf("create peer: %w", err)
		c.finish(sid, Failed, ReasonFailed, err, false)
		return err
	}
	c.watchPeer(sid, p)

	offer, err := p.Offer(ctx)
	if err != nil {
		p.Close()
		stream.Stop()
		err = fmt.Errorf("create offer: %w", err)
		c.finish(sid, Failed, ReasonFailed, err, false)
		return err
	}

	c.mu.Lock()
	if c.session != sid {
		c.mu.Unlock()
		p.Close()
		stream.Stop()
		return ErrCallEnded
	}
	c.local = stream
	c.peer = p
	c.state = OutgoingRinging
	c.exchanged = true
	c.startRingTimerLocked(sid)
	remote := c.remoteID
	c.mu.Unlock()

	// Listeners hear about ringing before the offer leaves, so an answer or
	// hang-up triggered by it is always reported after it.
	c.notify(Event{State: OutgoingRinging, RemoteID: remote})

	err = c.cfg.Conn.Emit(models.EventCallUser, c.cfg.RoomID, models.CallOffer{
		UserToCall: remote,
		Signal:     &offer,
		From:       c.cfg.Self.ID,
		Name:       c.cfg.Self.Name,
		RoomID:     c.cfg.RoomID,
	})
	if err != nil {
		err = fmt.Errorf("send call offer: %w", err)
		c.finish(sid, Failed, ReasonFailed, err, false)
		return err
	}
	return nil
}

// Answer accepts the incoming call.
func (c *Coordinator) Answer(ctx context.Context, q media.Quality) error {
	c.mu.Lock()
	if c.state != IncomingRinging || c.pending || c.offer == nil {
		c.mu.Unlock()
		return ErrNoIncomingCall
	}
	c.pending = true
	sid := c.session
	offer := *c.offer
	c.mu.Unlock()
	defer c.clearPending()

	stream, err := c.cfg.Device.UserMedia(ctx, q.Constraints())
	if err != nil {
		err = fmt.Errorf("acquire media: %w", err)
		c.finish(sid, Failed, ReasonFailed, err, true)
		return err
	}
	p, err := c.cfg.Peers.NewPeer(peer.Config{}, stream)
	if err != nil {
		stream.Stop()
		err = fmt.Errorf("create peer: %w", err)
		c.finish(sid, Failed, ReasonFailed, err, true)
		return err
	}
	c.watchPeer(sid, p)

	answer, err := p.Answer(ctx, offer)
	if err != nil {
		p.Close()
		stream.Stop()
		err = fmt.Errorf("answer offer: %w", err)
		c.finish(sid, Failed, ReasonFailed, err, true)
		return err
	}

	c.mu.Lock()
	if c.session != sid || c.state != IncomingRinging {
		c.mu.Unlock()
		p.Close()
		stream.Stop()
		return ErrCallEnded
	}
	c.stopRingTimerLocked()
	c.local = stream
	c.peer = p
	c.offer = nil
	c.connectLocked()
	remote, name := c.remoteID, c.remoteName
	c.mu.Unlock()

	c.notify(Event{State: Connected, RemoteID: remote, RemoteName: name})

	err = c.cfg.Conn.Emit(models.EventAnswerCall, c.cfg.RoomID, models.CallAnswer{
		Signal: &answer,
		To:     remote,
		RoomID: c.cfg.RoomID,
	})
	if err != nil {
		err = fmt.Errorf("send call answer: %w", err)
		c.finish(sid, Failed, ReasonFailed, err, false)
		return err
	}
	return nil
}

// Decline rejects the incoming call.
func (c *Coordinator) Decline() error {
	c.mu.Lock()
	if c.state != IncomingRinging {
		c.mu.Unlock()
		return ErrNoIncomingCall
	}
	sid := c.session
	c.mu.Unlock()

	c.finish(sid, Ended, ReasonDeclined, nil, true)
	return nil
}

// HangUp ends the current call in any non-idle state.
func (c *Coordinator) HangUp() error {
	c.mu.Lock()
	if c.state == Idle && !c.pending {
		c.mu.Unlock()
		return ErrNotInCall
	}
	sid := c.session
	c.mu.Unlock()

	c.finish(sid, Ended, ReasonHangUp, nil, true)
	return nil
}

// Close ends any call and ignores further signaling. It is idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	active := c.state != Idle || c.pending
	sid := c.session
	c.mu.Unlock()

	if active {
		c.finish(sid, Ended, ReasonHangUp, nil, true)
	}
}

// Duration returns the length of the connected call, or of the last one
// when no call is connected.
func (c *Coordinator) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.durationLocked()
}

func (c *Coordinator) durationLocked() time.Duration {
	if c.state == Connected {
		return c.cfg.Now().Sub(c.connectedAt)
	}
	return c.lastCall
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:         c.state,
		RemoteID:      c.remoteID,
		RemoteName:    c.remoteName,
		AudioEnabled:  c.state == Connected && c.audioOn,
		VideoEnabled:  c.state == Connected && c.videoOn,
		ScreenSharing: c.screen != nil,
		Recording:     c.recorder != nil,
		RemoteTracks:  len(c.remote),
		Duration:      c.durationLocked(),
	}
}

func (c *Coordinator) clearPending() {
	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()
}

func (c *Coordinator) connectLocked() {
	c.state = Connected
	c.connectedAt = c.cfg.Now()
	c.audioOn = true
	c.videoOn = true
}

func (c *Coordinator) watchPeer(sid string, p peer.Peer) {
	p.OnRemoteTrack(func(t peer.RemoteTrack) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.session == sid {
			c.remote = append(c.remote, t)
		}
	})
	p.OnFailure(func(err error) {
		c.log.Warnw("peer connection failed", "room", c.cfg.RoomID, "error", err)
		c.finish(sid, Failed, ReasonFailed, fmt.Errorf("peer: %w", err), true)
	})
}

func (c *Coordinator) startRingTimerLocked(sid string) {
	if c.cfg.RingTimeout <= 0 {
		return
	}
	c.ringTimer = time.AfterFunc(c.cfg.RingTimeout, func() { c.ringExpired(sid) })
}

func (c *Coordinator) stopRingTimerLocked() {
	if c.ringTimer != nil {
		c.ringTimer.Stop()
		c.ringTimer = nil
	}
}

func (c *Coordinator) ringExpired(sid string) {
	c.mu.Lock()
	if c.session != sid || !c.state.Ringing() {
		c.mu.Unlock()
		return
	}
	outgoing := c.state == OutgoingRinging
	c.mu.Unlock()

	c.finish(sid, Ended, ReasonMissed, nil, outgoing)
}

// finish tears the session down and reports final followed by Idle. It does
// nothing when sid is no longer the current session.
func (c *Coordinator) finish(sid string, final State, reason Reason, cause error, notifyRemote bool) {
	c.mu.Lock()
	if sid == "" || c.session != sid {
		c.mu.Unlock()
		return
	}
	var duration time.Duration
	if c.state == Connected {
		c.lastCall = c.cfg.Now().Sub(c.connectedAt)
		duration = c.lastCall
	}
	notify := notifyRemote && c.exchanged
	remote, name := c.remoteID, c.remoteName
	p, local, screen := c.peer, c.local, c.screen
	recorder, recStream := c.recorder, c.recStream

	c.stopRingTimerLocked()
	c.state = Idle
	c.session = ""
	c.exchanged = false
	c.offer = nil
	c.peer = nil
	c.local = nil
	c.screen = nil
	c.recorder = nil
	c.recStream = nil
	c.remote = nil
	c.audioOn = false
	c.videoOn = false
	c.mu.Unlock()

	ev := Event{State: final, Reason: reason, Err: cause, RemoteID: remote, RemoteName: name, Duration: duration}

	if recorder != nil {
		art, err := recorder.Stop()
		if err != nil {
			c.log.Warnw("failed to finish recording", "error", err)
		} else {
			ev.Artifact = &art
		}
	}
	if recStream != nil {
		recStream.Stop()
	}
	if screen != nil {
		screen.Stop()
	}
	if p != nil {
		if err := p.Close(); err != nil {
			c.log.Debugw("peer close", "error", err)
		}
	}
	if local != nil {
		local.Stop()
	}

	if notify {
		err := c.cfg.Conn.Emit(models.EventEndCall, c.cfg.RoomID, models.CallEnd{To: remote, RoomID: c.cfg.RoomID, Reason: string(reason)})
		if err != nil {
			c.log.Debugw("end of call not sent", "error", err)
		}
	}

	c.notify(ev)
	c.notify(Event{State: Idle})
}

func (c *Coordinator) notify(ev Event) {
	c.mu.Lock()
	fns := append([]func(Event){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// IsMediaError reports whether err came from local capture, which callers
// present as a blocking alert.
func IsMediaError(err error) bool {
	return errors.Is(err, media.ErrPermissionDenied) || errors.Is(err, media.ErrUnsupported)
}
