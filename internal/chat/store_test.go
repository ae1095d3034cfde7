package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"nexthire/chat/internal/chat"
	"nexthire/chat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadReplacesList(t *testing.T) {
	// Arrange
	backend := new(MockBackend)
	backend.On("History", mock.Anything, "a_b").Return([]models.Message{
		{ID: "1", Text: "first"},
		{ID: "2", Text: "second"},
	}, nil)
	store := chat.NewStore(backend, nil)
	store.Append(models.Message{ID: "old", Text: "stale"})

	// Act
	err := store.Load(context.Background(), "a_b")

	// Assert
	require.NoError(t, err)
	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "a_b", store.RoomID())
	backend.AssertExpectations(t)
}

func TestStore_LoadFailureLeavesEmptyList(t *testing.T) {
	backend := new(MockBackend)
	backend.On("History", mock.Anything, "a_b").Return(nil, errors.New("boom"))
	store := chat.NewStore(backend, nil)
	store.Append(models.Message{ID: "old"})

	err := store.Load(context.Background(), "a_b")

	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestStore_AppendKeepsCallOrderAndDropsDuplicates(t *testing.T) {
	store := chat.NewStore(new(MockBackend), nil)
	late := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	early := late.Add(-time.Hour)

	assert.True(t, store.Append(models.Message{ID: "2", Timestamp: late}))
	assert.True(t, store.Append(models.Message{ID: "1", Timestamp: early}))
	assert.False(t, store.Append(models.Message{ID: "2", Text: "echo"}))
	assert.True(t, store.Append(models.Message{Text: "no id"}))
	assert.True(t, store.Append(models.Message{Text: "no id"}), "messages without id are never de-duplicated")

	msgs := store.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "2", msgs[0].ID, "appended messages are never re-sorted")
	assert.Equal(t, "1", msgs[1].ID)
	assert.False(t, msgs[2].Timestamp.IsZero())
}

func TestStore_MessagesIsACopy(t *testing.T) {
	store := chat.NewStore(new(MockBackend), nil)
	store.Append(models.Message{ID: "1", Text: "a"})

	msgs := store.Messages()
	msgs[0].Text = "changed"
	msgs[0].Reactions.Toggle("👍", "u")

	again := store.Messages()
	assert.Equal(t, "a", again[0].Text)
	assert.Empty(t, again[0].Reactions)
}

func TestStore_React(t *testing.T) {
	store := chat.NewStore(new(MockBackend), nil)
	store.Append(models.Message{ID: "1"})
	var changes int
	store.OnChange(func() { changes++ })

	added, err := store.React("1", "👍", "u1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.React("1", "👍", "u1")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = store.React("missing", "👍", "u1")
	assert.ErrorIs(t, err, chat.ErrMessageNotFound)
	assert.Equal(t, 2, changes)
}
