package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nexthire/chat/internal/chat"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/transport/transporttest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var recruiter = models.Participant{ID: "rec1", Name: "Rita", Role: models.RoleRecruiter}

func newSender(backend *MockBackend) (*chat.Sender, *chat.Store, *transporttest.Conn) {
	store := chat.NewStore(backend, nil)
	conn := transporttest.New()
	return chat.NewSender("cand1_rec1", recruiter, backend, store, conn, nil), store, conn
}

func TestSend_PersistsAppendsAndBroadcasts(t *testing.T) {
	// Arrange
	backend := new(MockBackend)
	saved := models.Message{ID: "m1", SenderID: "rec1", SenderRole: models.RoleRecruiter, Text: "Hi", Timestamp: time.Now()}
	backend.On("SendMessage", mock.Anything, "cand1_rec1", models.OutgoingMessage{
		Message: "Hi", SenderID: "rec1", SenderRole: models.RoleRecruiter,
	}).Return(saved, nil)
	sender, store, conn := newSender(backend)

	// Act
	msg, err := sender.Send(context.Background(), chat.Draft{Text: "Hi"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []string{models.EventSendMessage}, conn.Names())

	var payload models.SendMessagePayload
	require.True(t, conn.Last(models.EventSendMessage, &payload))
	assert.Equal(t, "cand1_rec1", payload.RoomID)
	assert.Equal(t, "m1", payload.Message.ID)
	backend.AssertExpectations(t)
}

func TestSend_AttachmentAndGIF(t *testing.T) {
	backend := new(MockBackend)
	att := &models.Attachment{URL: "https://cdn/cv.pdf", Type: "application/pdf", Name: "cv.pdf"}
	backend.On("SendMessage", mock.Anything, "cand1_rec1", mock.MatchedBy(func(o models.OutgoingMessage) bool {
		return o.FileURL == att.URL && o.FileType == att.Type && o.FileName == att.Name && o.GIF == "g" && o.Message == ""
	})).Return(models.Message{}, nil)
	sender, store, _ := newSender(backend)

	msg, err := sender.Send(context.Background(), chat.Draft{Attachment: att, GIF: "g"})

	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID, "a client id is assigned when the backend returns none")
	assert.Equal(t, "rec1", msg.SenderID)
	assert.Equal(t, 1, store.Len())
}

func TestSend_EmptyDraftIsRejected(t *testing.T) {
	backend := new(MockBackend)
	sender, store, conn := newSender(backend)

	_, err := sender.Send(context.Background(), chat.Draft{Text: " \n\t"})

	assert.ErrorIs(t, err, chat.ErrEmptyMessage)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, conn.Names())
	backend.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_FailureAppendsNothing(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).Return(models.Message{}, errors.New("503"))
	sender, store, conn := newSender(backend)

	_, err := sender.Send(context.Background(), chat.Draft{Text: "Hi"})

	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, conn.Names())
}

func TestSend_SingleInFlight(t *testing.T) {
	// Arrange
	backend := new(MockBackend)
	release := make(chan struct{})
	started := make(chan struct{})
	backend.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(models.Message{ID: "m1"}, nil).Once()
	sender, store, _ := newSender(backend)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := sender.Send(context.Background(), chat.Draft{Text: "first"})
		assert.NoError(t, err)
	}()
	<-started

	// Act
	_, err := sender.Send(context.Background(), chat.Draft{Text: "second"})

	// Assert
	assert.ErrorIs(t, err, chat.ErrSendInFlight)
	assert.True(t, sender.Sending())
	close(release)
	wg.Wait()
	assert.False(t, sender.Sending())
	assert.Equal(t, 1, store.Len())
}

func TestSend_BroadcastFailureKeepsMessage(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).Return(models.Message{ID: "m1"}, nil)
	sender, store, conn := newSender(backend)
	conn.Disconnect()

	_, err := sender.Send(context.Background(), chat.Draft{Text: "Hi"})

	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}
