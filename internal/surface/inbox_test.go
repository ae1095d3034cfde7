package surface_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"nexthire/chat/internal/localization"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/surface"
	"nexthire/chat/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func conversations() []models.Conversation {
	return []models.Conversation{
		{RoomID: "cand1_rec1", CandidateID: "cand1", CandidateName: "Ann Lee"},
		{RoomID: "cand2_rec1", CandidateID: "cand2", CandidateName: "Bogdan Kovalenko"},
	}
}

func TestInbox_RefreshAndFilter(t *testing.T) {
	// Arrange
	f := newFixture(recruiter)
	f.backend.On("Conversations", mock.Anything, "rec1").Return(conversations(), nil)
	inbox := surface.NewInbox(f.cfg, f.backend, f.state)

	// Act
	require.NoError(t, inbox.Refresh(context.Background()))
	filtered := inbox.Filter("bog")

	// Assert
	require.Len(t, filtered, 1)
	assert.Equal(t, "cand2", filtered[0].CandidateID)
	assert.Equal(t, "bog", f.state.Query(), "the filter is shared through the search query")
	assert.Len(t, inbox.Filter(""), 2)
}

func TestInbox_RefreshFailureKeepsList(t *testing.T) {
	f := newFixture(recruiter)
	f.backend.On("Conversations", mock.Anything, "rec1").Return(conversations(), nil).Once()
	f.backend.On("Conversations", mock.Anything, "rec1").Return(nil, errors.New("offline")).Once()
	inbox := surface.NewInbox(f.cfg, f.backend, nil)
	require.NoError(t, inbox.Refresh(context.Background()))

	err := inbox.Refresh(context.Background())

	assert.Error(t, err)
	assert.Len(t, inbox.Conversations(), 2)
	assert.Equal(t, []string{text(localization.NetworkError)}, f.alerts.Toasts())
}

func TestInbox_CandidatesHaveNoInbox(t *testing.T) {
	f := newFixture(candidate)
	inbox := surface.NewInbox(f.cfg, f.backend, nil)

	assert.ErrorIs(t, inbox.Refresh(context.Background()), surface.ErrNotRecruiter)
}

func TestInbox_SelectClosesPrevious(t *testing.T) {
	// Arrange
	f := newFixture(recruiter)
	f.backend.On("Conversations", mock.Anything, "rec1").Return(conversations(), nil)
	f.backend.On("History", mock.Anything, mock.Anything).Return([]models.Message{}, nil)
	inbox := surface.NewInbox(f.cfg, f.backend, f.state)
	defer inbox.Close()
	require.NoError(t, inbox.Refresh(context.Background()))

	// Act
	first, err := inbox.Select(context.Background(), "cand1")
	require.NoError(t, err)
	again, err := inbox.Select(context.Background(), "cand1")
	require.NoError(t, err)
	second, err := inbox.Select(context.Background(), "cand2")
	require.NoError(t, err)

	// Assert
	assert.Same(t, first, again)
	assert.Equal(t, "cand2_rec1", second.RoomID())
	assert.Same(t, second, inbox.Selected())
	conns := f.dialer.Conns()
	require.Len(t, conns, 2)
	assert.Equal(t, 1, conns[0].Disconnects(), "the previous conversation is closed")
	assert.Equal(t, 0, conns[1].Disconnects())
	assert.Equal(t, "cand2_rec1", f.state.ActiveRoom())

	_, err = inbox.Select(context.Background(), "stranger")
	assert.ErrorIs(t, err, surface.ErrUnknownConversation)
}

func TestInbox_CloseWhileSelectingReleasesTheSurface(t *testing.T) {
	// Arrange
	f := newFixture(recruiter)
	f.backend.On("Conversations", mock.Anything, "rec1").Return(conversations(), nil)
	f.backend.On("History", mock.Anything, mock.Anything).Return([]models.Message{}, nil)
	entered, release := make(chan struct{}), make(chan struct{})
	f.cfg.Dial = func(ctx context.Context) (transport.Conn, error) {
		close(entered)
		<-release
		return f.dialer.Dial(ctx)
	}
	inbox := surface.NewInbox(f.cfg, f.backend, f.state)
	require.NoError(t, inbox.Refresh(context.Background()))

	type result struct {
		s   *surface.Surface
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := inbox.Select(context.Background(), "cand1")
		done <- result{s, err}
	}()
	<-entered

	// Act
	inbox.Close()
	close(release)

	// Assert
	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Select did not return")
	}
	assert.ErrorIs(t, res.err, surface.ErrClosed)
	assert.Nil(t, res.s)
	assert.Nil(t, inbox.Selected())
	conns := f.dialer.Conns()
	require.Len(t, conns, 1)
	assert.Equal(t, 1, conns[0].Disconnects(), "the surface opened after Close is released")

	_, err := inbox.Select(context.Background(), "cand2")
	assert.ErrorIs(t, err, surface.ErrClosed)
}

func TestInbox_NewerSelectWinsOverSlowerOne(t *testing.T) {
	f := newFixture(recruiter)
	f.backend.On("Conversations", mock.Anything, "rec1").Return(conversations(), nil)
	f.backend.On("History", mock.Anything, mock.Anything).Return([]models.Message{}, nil)
	entered, release := make(chan struct{}), make(chan struct{})
	var slow bool
	f.cfg.Dial = func(ctx context.Context) (transport.Conn, error) {
		if !slow {
			slow = true
			close(entered)
			<-release
		}
		return f.dialer.Dial(ctx)
	}
	inbox := surface.NewInbox(f.cfg, f.backend, f.state)
	defer inbox.Close()
	require.NoError(t, inbox.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := inbox.Select(context.Background(), "cand1")
		done <- err
	}()
	<-entered

	second, err := inbox.Select(context.Background(), "cand2")
	require.NoError(t, err)
	close(release)

	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Select did not return")
	}
	assert.ErrorIs(t, err, surface.ErrClosed)
	assert.Same(t, second, inbox.Selected())
	conns := f.dialer.Conns()
	require.Len(t, conns, 2)
	assert.Equal(t, 0, conns[0].Disconnects(), "the newer conversation stays open")
	assert.Equal(t, 1, conns[1].Disconnects(), "the superseded conversation is released")
}
