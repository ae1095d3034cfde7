package room_test

import (
	"testing"

	"nexthire/chat/internal/room"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_IsCommutative(t *testing.T) {
	assert.Equal(t, "cand1_rec1", room.ID("cand1", "rec1"))
	assert.Equal(t, "cand1_rec1", room.ID("rec1", "cand1"))
	assert.Equal(t, room.ID("665a", "123b"), room.ID("123b", "665a"))
}

func TestID_SameParticipant(t *testing.T) {
	assert.Equal(t, "a_a", room.ID("a", "a"))
}

func TestPeer(t *testing.T) {
	id := room.ID("cand1", "rec1")

	other, err := room.Peer(id, "cand1")
	require.NoError(t, err)
	assert.Equal(t, "rec1", other)

	other, err = room.Peer(id, "rec1")
	require.NoError(t, err)
	assert.Equal(t, "cand1", other)
}

func TestPeer_IDsContainingSeparator(t *testing.T) {
	id := room.ID("user_a", "user_b")

	other, err := room.Peer(id, "user_b")
	require.NoError(t, err)
	assert.Equal(t, "user_a", other)
}

func TestPeer_NotMember(t *testing.T) {
	_, err := room.Peer("a_b", "c")
	assert.ErrorIs(t, err, room.ErrNotMember)

	_, err = room.Peer("a_b", "")
	assert.ErrorIs(t, err, room.ErrNotMember)
}
