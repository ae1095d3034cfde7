package relay

import (
	"context"
	"encoding/json"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/room"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Bus carries relayed events between relay instances.
type Bus interface {
	Publish(ctx context.Context, payload any) error
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// Presence records which participants are connected.
type Presence interface {
	SetOnline(ctx context.Context, userID string, online bool) error
}

// Limits bounds the events a single connection may send.
type Limits struct {
	EventsPerSecond float64
	Burst           int
}

type clientState struct {
	rooms   map[string]struct{}
	limiter *rate.Limiter
}

// Hub owns every connected client. All state is confined to the Run
// goroutine; the rest of the relay talks to it through channels.
type Hub struct {
	ID string

	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Incoming
	PubSubCh     chan Envelope

	Bus      Bus
	Presence Presence

	limits  Limits
	log     *zap.SugaredLogger
	clients map[Client]*clientState
	rooms   map[string]map[Client]struct{}
	done    chan struct{}
}

// NewHub creates a hub. bus and presence may be nil for a single instance.
func NewHub(bus Bus, presence Presence, limits Limits, log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		ID:           uuid.NewString(),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Incoming, 64),
		PubSubCh:     make(chan Envelope, 64),
		Bus:          bus,
		Presence:     presence,
		limits:       limits,
		log:          log,
		clients:      make(map[Client]*clientState),
		rooms:        make(map[string]map[Client]struct{}),
		done:         make(chan struct{}),
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Run dispatches until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.startPubSubListener(ctx)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return
		case c := <-h.RegisterCh:
			h.add(c)
		case c := <-h.UnregisterCh:
			h.remove(c)
		case in := <-h.IncomingCh:
			h.handleIncoming(ctx, in)
		case env := <-h.PubSubCh:
			if env.Origin == h.ID {
				continue
			}
			h.deliver(env.Event)
		}
	}
}

func (h *Hub) add(c Client) {
	if _, ok := h.clients[c]; ok {
		return
	}
	state := &clientState{rooms: make(map[string]struct{})}
	if h.limits.EventsPerSecond > 0 {
		state.limiter = rate.NewLimiter(rate.Limit(h.limits.EventsPerSecond), max(h.limits.Burst, 1))
	}
	h.clients[c] = state
	h.setOnline(c.GetUserID(), true)
	h.log.Debugw("client registered", "user", c.GetUserID())
}

func (h *Hub) remove(c Client) {
	state, ok := h.clients[c]
	if !ok {
		return
	}
	for roomID := range state.rooms {
		h.leave(c, roomID)
	}
	delete(h.clients, c)
	c.Close()

	if !h.userConnected(c.GetUserID()) {
		h.setOnline(c.GetUserID(), false)
	}
	h.log.Debugw("client unregistered", "user", c.GetUserID())
}

func (h *Hub) userConnected(userID string) bool {
	for c := range h.clients {
		if c.GetUserID() == userID {
			return true
		}
	}
	return false
}

func (h *Hub) setOnline(userID string, online bool) {
	if h.Presence == nil {
		return
	}
	if err := h.Presence.SetOnline(context.Background(), userID, online); err != nil {
		h.log.Warnw("failed to update presence", "user", userID, "error", err)
	}
}

func (h *Hub) handleIncoming(ctx context.Context, in Incoming) {
	state, ok := h.clients[in.Client]
	if !ok {
		return
	}
	userID := in.Client.GetUserID()
	if state.limiter != nil && !state.limiter.Allow() {
		h.log.Warnw("rate limit exceeded", "user", userID, "event", in.Event.Name)
		h.sendError(in.Client, "rate limit exceeded")
		return
	}

	ev := in.Event
	if ev.RoomID == "" {
		var p models.RoomPayload
		if len(ev.Data) > 0 && json.Unmarshal(ev.Data, &p) == nil {
			ev.RoomID = p.RoomID
		}
	}

	switch ev.Name {
	case models.EventJoinRoom:
		if _, err := room.Peer(ev.RoomID, userID); err != nil {
			h.sendError(in.Client, "not a member of room "+ev.RoomID)
			return
		}
		state.rooms[ev.RoomID] = struct{}{}
		members, ok := h.rooms[ev.RoomID]
		if !ok {
			members = make(map[Client]struct{})
			h.rooms[ev.RoomID] = members
		}
		members[in.Client] = struct{}{}
		return
	case models.EventLeaveRoom:
		h.leave(in.Client, ev.RoomID)
		return
	}

	name, ok := Translate(ev.Name)
	if !ok {
		h.sendError(in.Client, "unknown event "+ev.Name)
		return
	}
	if _, joined := state.rooms[ev.RoomID]; !joined {
		h.sendError(in.Client, "join room "+ev.RoomID+" first")
		return
	}

	out := models.Event{Name: name, RoomID: ev.RoomID, From: userID, Data: ev.Data}
	if ev.Name == models.EventSendMessage {
		var p models.SendMessagePayload
		if err := ev.Decode(&p); err != nil {
			h.sendError(in.Client, "malformed message")
			return
		}
		// The message is attributed to the connection, whatever the body says.
		p.Message.SenderID = userID
		p.Message.RoomID = ev.RoomID
		data, err := json.Marshal(p.Message)
		if err != nil {
			h.sendError(in.Client, "malformed message")
			return
		}
		out.Data = data
	}

	h.deliver(out)
	if h.Bus != nil {
		if err := h.Bus.Publish(ctx, Envelope{Origin: h.ID, Event: out}); err != nil {
			h.log.Warnw("failed to publish event", "room", out.RoomID, "event", out.Name, "error", err)
		}
	}
}

// deliver sends ev to the room members other than its sender.
func (h *Hub) deliver(ev models.Event) {
	for c := range h.rooms[ev.RoomID] {
		if c.GetUserID() == ev.From {
			continue
		}
		h.send(c, ev)
	}
}

func (h *Hub) send(c Client, ev models.Event) {
	select {
	case c.GetSendChannel() <- ev:
	default:
		// Slow consumer.
		h.log.Warnw("dropping slow client", "user", c.GetUserID())
		h.remove(c)
	}
}

func (h *Hub) sendError(c Client, msg string) {
	ev, err := models.NewEvent(models.EventError, "", models.ErrorPayload{Message: msg})
	if err != nil {
		return
	}
	h.send(c, ev)
}

func (h *Hub) leave(c Client, roomID string) {
	if state, ok := h.clients[c]; ok {
		delete(state.rooms, roomID)
	}
	members := h.rooms[roomID]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}
