package relay_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const roomID = "cand1_rec1"

func startHub(t *testing.T, bus relay.Bus, presence relay.Presence, limits relay.Limits) *relay.Hub {
	t.Helper()
	hub := relay.NewHub(bus, presence, limits, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

func send(t *testing.T, hub *relay.Hub, c relay.Client, name, room string, payload any) {
	t.Helper()
	ev, err := models.NewEvent(name, room, payload)
	require.NoError(t, err)
	ev.From = c.GetUserID()
	hub.IncomingCh <- relay.Incoming{Client: c, Event: ev}
}

// joinBoth registers a candidate and a recruiter and joins them to roomID.
func joinBoth(t *testing.T, hub *relay.Hub) (*MockClient, *MockClient) {
	t.Helper()
	cand, rec := newMockClient("cand1"), newMockClient("rec1")
	hub.RegisterCh <- cand
	hub.RegisterCh <- rec
	send(t, hub, cand, models.EventJoinRoom, roomID, models.RoomPayload{RoomID: roomID})
	send(t, hub, rec, models.EventJoinRoom, roomID, models.RoomPayload{RoomID: roomID})
	return cand, rec
}

func TestHub_RelaysToOtherMembersOnly(t *testing.T) {
	// Arrange
	hub := startHub(t, nil, nil, relay.Limits{})
	cand, rec := joinBoth(t, hub)

	// Act
	send(t, hub, cand, models.EventTyping, roomID, models.TypingPayload{RoomID: roomID, SenderID: "cand1"})

	// Assert
	ev := rec.next(t)
	assert.Equal(t, models.EventTyping, ev.Name)
	assert.Equal(t, roomID, ev.RoomID)
	assert.Equal(t, "cand1", ev.From)
	cand.none(t)
}

func TestHub_TranslatesEventNames(t *testing.T) {
	hub := startHub(t, nil, nil, relay.Limits{})
	cand, rec := joinBoth(t, hub)

	send(t, hub, rec, models.EventAnswerCall, roomID, models.CallAnswer{Signal: &models.Signal{Type: "answer"}, To: "cand1", RoomID: roomID})
	assert.Equal(t, models.EventCallAccepted, cand.next(t).Name)

	send(t, hub, rec, models.EventEndCall, roomID, models.CallEnd{To: "cand1", RoomID: roomID})
	assert.Equal(t, models.EventCallEnded, cand.next(t).Name)

	send(t, hub, cand, models.EventCallUser, roomID, models.CallOffer{UserToCall: "rec1", Signal: &models.Signal{Type: "offer"}, From: "cand1", RoomID: roomID})
	assert.Equal(t, models.EventCallUser, rec.next(t).Name)
	cand.none(t)
}

func TestHub_SendMessageDeliversTheMessageAlone(t *testing.T) {
	hub := startHub(t, nil, nil, relay.Limits{})
	cand, rec := joinBoth(t, hub)
	msg := models.Message{ID: "42", RoomID: roomID, SenderID: "cand1", SenderRole: models.RoleCandidate, Text: "hello", Timestamp: time.Now().UTC()}

	send(t, hub, cand, models.EventSendMessage, roomID, models.SendMessagePayload{RoomID: roomID, Message: msg})

	ev := rec.next(t)
	assert.Equal(t, models.EventReceiveMessage, ev.Name)
	var wire models.WireMessage
	require.NoError(t, json.Unmarshal(ev.Data, &wire))
	got := wire.Canonical()
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, models.RoleCandidate, got.SenderRole)
}

func TestHub_SendMessageIsAttributedToTheConnection(t *testing.T) {
	hub := startHub(t, nil, nil, relay.Limits{})
	cand, rec := joinBoth(t, hub)
	forged := models.Message{ID: "43", RoomID: "other_room", SenderID: "rec1", Text: "offer withdrawn"}

	send(t, hub, cand, models.EventSendMessage, roomID, models.SendMessagePayload{RoomID: roomID, Message: forged})

	ev := rec.next(t)
	var wire models.WireMessage
	require.NoError(t, json.Unmarshal(ev.Data, &wire))
	got := wire.Canonical()
	assert.Equal(t, "cand1", got.SenderID)
	assert.Equal(t, roomID, got.RoomID)
	assert.Equal(t, "cand1", ev.From)
}

func TestHub_RejectsForeignRoom(t *testing.T) {
	hub := startHub(t, nil, nil, relay.Limits{})
	intruder := newMockClient("eve")
	hub.RegisterCh <- intruder

	send(t, hub, intruder, models.EventJoinRoom, roomID, models.RoomPayload{RoomID: roomID})

	ev := intruder.next(t)
	assert.Equal(t, models.EventError, ev.Name)
	var p models.ErrorPayload
	require.NoError(t, ev.Decode(&p))
	assert.Contains(t, p.Message, "not a member")
}

func TestHub_RequiresJoinBeforeRelaying(t *testing.T) {
	hub := startHub(t, nil, nil, relay.Limits{})
	cand := newMockClient("cand1")
	hub.RegisterCh <- cand

	send(t, hub, cand, models.EventTyping, roomID, models.TypingPayload{RoomID: roomID})

	assert.Equal(t, models.EventError, cand.next(t).Name)
}

func TestHub_UnknownEvent(t *testing.T) {
	hub := startHub(t, nil, nil, relay.Limits{})
	cand, _ := joinBoth(t, hub)

	send(t, hub, cand, "shout", roomID, nil)

	assert.Equal(t, models.EventError, cand.next(t).Name)
}

func TestHub_LeaveRoomStopsDelivery(t *testing.T) {
	hub := startHub(t, nil, nil, relay.Limits{})
	cand, rec := joinBoth(t, hub)

	send(t, hub, rec, models.EventLeaveRoom, roomID, models.RoomPayload{RoomID: roomID})
	send(t, hub, cand, models.EventStopTyping, roomID, models.TypingPayload{RoomID: roomID, SenderID: "cand1"})

	rec.none(t)
}

func TestHub_RateLimit(t *testing.T) {
	hub := startHub(t, nil, nil, relay.Limits{EventsPerSecond: 0.001, Burst: 1})
	cand, rec := joinBoth(t, hub)

	send(t, hub, cand, models.EventTyping, roomID, models.TypingPayload{RoomID: roomID})

	ev := cand.next(t)
	assert.Equal(t, models.EventError, ev.Name, "the join used the whole burst")
	rec.none(t)
}

func TestHub_PublishesAndReceivesAcrossInstances(t *testing.T) {
	// Arrange
	bus := &MockBus{ch: make(chan []byte, 4)}
	bus.On("Subscribe", mock.Anything).Return(nil)
	bus.On("Publish", mock.Anything, mock.AnythingOfType("relay.Envelope")).Return(nil)
	hub := startHub(t, bus, nil, relay.Limits{})
	cand, rec := joinBoth(t, hub)

	// Act
	send(t, hub, cand, models.EventTyping, roomID, models.TypingPayload{RoomID: roomID})
	rec.next(t)

	remote, err := models.NewEvent(models.EventCallEnded, roomID, models.CallEnd{To: "cand1", RoomID: roomID})
	require.NoError(t, err)
	remote.From = "rec1"
	own, _ := json.Marshal(relay.Envelope{Origin: hub.ID, Event: remote})
	other, _ := json.Marshal(relay.Envelope{Origin: "other-instance", Event: remote})
	bus.ch <- own
	bus.ch <- other

	// Assert
	ev := cand.next(t)
	assert.Equal(t, models.EventCallEnded, ev.Name)
	cand.none(t)
	bus.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(env relay.Envelope) bool {
		return env.Origin == hub.ID && env.Event.Name == models.EventTyping
	}))
}

func TestHub_UnregisterClosesClientAndUpdatesPresence(t *testing.T) {
	presence := new(MockPresence)
	presence.On("SetOnline", mock.Anything, "cand1", true).Return(nil)
	offline := make(chan struct{})
	presence.On("SetOnline", mock.Anything, "cand1", false).Return(nil).Run(func(mock.Arguments) { close(offline) })
	hub := startHub(t, nil, presence, relay.Limits{})
	cand := newMockClient("cand1")
	hub.RegisterCh <- cand

	hub.UnregisterCh <- cand

	select {
	case <-offline:
	case <-time.After(time.Second):
		require.FailNow(t, "presence not cleared")
	}
	assert.True(t, cand.Closed())
	presence.AssertExpectations(t)
}

func TestTranslate(t *testing.T) {
	name, ok := relay.Translate(models.EventSendMessage)
	assert.True(t, ok)
	assert.Equal(t, models.EventReceiveMessage, name)

	_, ok = relay.Translate(models.EventJoinRoom)
	assert.False(t, ok)
}
