package typing_test

import (
	"testing"
	"time"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/transport/transporttest"
	"nexthire/chat/internal/typing"

	"github.com/stretchr/testify/assert"
)

const roomID = "cand1_rec1"

func newNotifier(timeout time.Duration) (*typing.Notifier, *transporttest.Conn) {
	conn := transporttest.New()
	n := typing.New(conn, roomID, "cand1", timeout, nil)
	n.Bind()
	return n, conn
}

func TestInputChanged_EmitsTypingAndStop(t *testing.T) {
	n, conn := newNotifier(time.Second)

	n.InputChanged("H")
	n.InputChanged("He")
	n.InputChanged("")
	n.InputChanged("")

	assert.Equal(t, []string{models.EventTyping, models.EventTyping, models.EventStopTyping}, conn.Names())

	var p models.TypingPayload
	assert.True(t, conn.Last(models.EventTyping, &p))
	assert.Equal(t, models.TypingPayload{RoomID: roomID, SenderID: "cand1"}, p)
}

func TestMessageSent_EmitsStop(t *testing.T) {
	n, conn := newNotifier(time.Second)

	n.InputChanged("hello")
	n.MessageSent()
	n.InputChanged("")

	assert.Equal(t, []string{models.EventTyping, models.EventStopTyping}, conn.Names(),
		"clearing the composer after a send does not repeat stopTyping")
}

func TestOtherTyping(t *testing.T) {
	// Arrange
	n, conn := newNotifier(time.Minute)
	var changes []bool
	n.OnChange(func(typing bool) { changes = append(changes, typing) })

	// Act & Assert
	conn.Deliver(models.EventTyping, roomID, models.TypingPayload{RoomID: roomID, SenderID: "cand1"})
	assert.False(t, n.OtherTyping(), "our own typing echo is ignored")

	conn.Deliver(models.EventTyping, "other_room", models.TypingPayload{RoomID: "other_room", SenderID: "x"})
	assert.False(t, n.OtherTyping(), "other rooms are ignored")

	conn.Deliver(models.EventTyping, roomID, models.TypingPayload{RoomID: roomID, SenderID: "rec1"})
	assert.True(t, n.OtherTyping())

	conn.Deliver(models.EventStopTyping, roomID, models.TypingPayload{RoomID: roomID, SenderID: "rec1"})
	assert.False(t, n.OtherTyping())

	conn.Deliver(models.EventTyping, roomID, models.TypingPayload{RoomID: roomID, SenderID: "rec1"})
	n.MessageReceived("rec1")
	assert.False(t, n.OtherTyping(), "a message from the other participant clears the flag")

	assert.Equal(t, []bool{true, false, true, false}, changes)
}

func TestOtherTyping_ExpiresWithoutRefresh(t *testing.T) {
	n, conn := newNotifier(30 * time.Millisecond)

	conn.Deliver(models.EventTyping, roomID, models.TypingPayload{RoomID: roomID, SenderID: "rec1"})
	assert.True(t, n.OtherTyping())

	assert.Eventually(t, func() bool { return !n.OtherTyping() }, time.Second, 5*time.Millisecond)
}

func TestStop_SilencesNotifier(t *testing.T) {
	n, conn := newNotifier(time.Minute)
	n.Stop()

	n.InputChanged("x")
	conn.Deliver(models.EventTyping, roomID, models.TypingPayload{RoomID: roomID, SenderID: "rec1"})

	assert.Empty(t, conn.Names())
	assert.False(t, n.OtherTyping())
}
