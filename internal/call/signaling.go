package call

import (
	"nexthire/chat/internal/models"

	"github.com/google/uuid"
)

// inRoom reports whether a payload addressed to roomID belongs to this room.
// Payloads without a room id fall back to the envelope's.
func (c *Coordinator) inRoom(payloadRoom string, ev models.Event) bool {
	room := payloadRoom
	if room == "" {
		room = ev.RoomID
	}
	return room == "" || room == c.cfg.RoomID
}

func (c *Coordinator) handleOffer(ev models.Event) {
	var offer models.CallOffer
	if err := ev.Decode(&offer); err != nil {
		c.log.Debugw("ignoring call offer", "error", err)
		return
	}
	if !c.inRoom(offer.RoomID, ev) || offer.From == c.cfg.Self.ID || offer.Signal == nil {
		return
	}
	if offer.UserToCall != "" && offer.UserToCall != c.cfg.Self.ID {
		return
	}

	c.mu.Lock()
	if c.closed || c.state != Idle || c.pending {
		c.mu.Unlock()
		c.log.Infow("ignoring call offer while busy", "room", c.cfg.RoomID, "from", offer.From)
		return
	}
	c.session = uuid.NewString()
	sid := c.session
	signal := *offer.Signal
	c.offer = &signal
	c.remoteID = offer.From
	c.remoteName = offer.Name
	c.exchanged = true
	c.state = IncomingRinging
	c.startRingTimerLocked(sid)
	c.mu.Unlock()

	c.notify(Event{State: IncomingRinging, RemoteID: offer.From, RemoteName: offer.Name})
}

func (c *Coordinator) handleAccepted(ev models.Event) {
	var answer models.CallAnswer
	if err := ev.Decode(&answer); err != nil {
		c.log.Debugw("ignoring call answer", "error", err)
		return
	}
	if !c.inRoom(answer.RoomID, ev) || answer.Signal == nil {
		return
	}
	if answer.To != "" && answer.To != c.cfg.Self.ID {
		return
	}

	c.mu.Lock()
	if c.state != OutgoingRinging || c.peer == nil {
		c.mu.Unlock()
		return
	}
	sid := c.session
	p := c.peer
	c.mu.Unlock()

	if err := p.Accept(*answer.Signal); err != nil {
		c.finish(sid, Failed, ReasonFailed, err, true)
		return
	}

	c.mu.Lock()
	if c.session != sid || c.state != OutgoingRinging {
		c.mu.Unlock()
		return
	}
	c.stopRingTimerLocked()
	c.connectLocked()
	remote, name := c.remoteID, c.remoteName
	c.mu.Unlock()

	c.notify(Event{State: Connected, RemoteID: remote, RemoteName: name})
}

func (c *Coordinator) handleEnded(ev models.Event) {
	var end models.CallEnd
	if len(ev.Data) > 0 {
		if err := ev.Decode(&end); err != nil {
			c.log.Debugw("ignoring call end", "error", err)
			return
		}
	}
	if !c.inRoom(end.RoomID, ev) {
		return
	}
	if end.To != "" && end.To != c.cfg.Self.ID {
		return
	}

	c.mu.Lock()
	if c.state == Idle {
		c.mu.Unlock()
		return
	}
	sid := c.session
	c.mu.Unlock()

	reason := ReasonRemote
	switch Reason(end.Reason) {
	case ReasonDeclined, ReasonMissed:
		reason = Reason(end.Reason)
	}
	c.finish(sid, Ended, reason, nil, false)
}
