package models_test

import (
	"testing"

	"nexthire/chat/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReactionSetToggle(t *testing.T) {
	var r models.ReactionSet

	assert.True(t, r.Toggle("👍", "u1"), "first toggle adds")
	assert.True(t, r.Has("👍", "u1"))
	assert.False(t, r.Toggle("👍", "u1"), "second toggle removes")
	assert.False(t, r.Has("👍", "u1"))
	assert.Empty(t, r, "empty emoji entries are dropped")
}

func TestReactionSet_OnePerEmojiManyEmoji(t *testing.T) {
	r := models.ReactionSet{}
	r.Toggle("👍", "u1")
	r.Toggle("❤️", "u1")
	r.Toggle("👍", "u2")

	assert.Equal(t, 2, r.Count("👍"))
	assert.Equal(t, 1, r.Count("❤️"))
	assert.True(t, r.Has("❤️", "u1"))
}

func TestReactionSetTop(t *testing.T) {
	r := models.ReactionSet{
		"😂": {"a"},
		"👍": {"a", "b", "c"},
		"🔥": {"a", "b"},
		"😮": {"b"},
	}

	top := r.Top(3)

	assert.Len(t, top, 3)
	assert.Equal(t, "👍", top[0].Emoji)
	assert.Equal(t, "🔥", top[1].Emoji)
	assert.Equal(t, "😂", top[2].Emoji, "ties are ordered by emoji")
}
