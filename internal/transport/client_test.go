package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/transport"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer records every envelope it receives and replies to "ping-me"
// with three numbered "pong" events.
type echoServer struct {
	mu       sync.Mutex
	received []models.Event
	auth     string
}

func (s *echoServer) events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Event(nil), s.received...)
}

func (s *echoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = r.Header.Get("Authorization")
	s.mu.Unlock()

	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		var ev models.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		s.mu.Lock()
		s.received = append(s.received, ev)
		s.mu.Unlock()
		if ev.Name == "ping-me" {
			for i := 1; i <= 3; i++ {
				out, _ := models.NewEvent("pong", ev.RoomID, i)
				_ = conn.WriteJSON(out)
			}
		}
	}
}

func dial(t *testing.T, srv *echoServer) *transport.Client {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	c, err := transport.Dial(context.Background(), url, "tok")
	require.NoError(t, err)
	t.Cleanup(c.Disconnect)
	return c
}

func TestClient_HandlersRunInArrivalOrder(t *testing.T) {
	// Arrange
	srv := &echoServer{}
	c := dial(t, srv)

	var mu sync.Mutex
	var got []int
	var second []int
	c.On("pong", func(ev models.Event) {
		var n int
		assert.NoError(t, json.Unmarshal(ev.Data, &n))
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
	})
	c.On("pong", func(ev models.Event) {
		var n int
		_ = json.Unmarshal(ev.Data, &n)
		mu.Lock()
		second = append(second, n)
		mu.Unlock()
	})

	// Act
	require.NoError(t, c.Emit("ping-me", "a_b", nil))

	// Assert
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3 && len(second) == 3
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, []int{1, 2, 3}, second)

	srv.mu.Lock()
	assert.Equal(t, "Bearer tok", srv.auth)
	srv.mu.Unlock()
}

func TestClient_JoinRoomIsIdempotent(t *testing.T) {
	srv := &echoServer{}
	c := dial(t, srv)

	require.NoError(t, c.JoinRoom("a_b"))
	require.NoError(t, c.JoinRoom("a_b"))
	require.NoError(t, c.LeaveRoom("a_b"))
	require.NoError(t, c.LeaveRoom("a_b"))

	assert.Eventually(t, func() bool { return len(srv.events()) == 2 }, time.Second, 10*time.Millisecond)
	evs := srv.events()
	assert.Equal(t, models.EventJoinRoom, evs[0].Name)
	assert.Equal(t, "a_b", evs[0].RoomID)
	assert.Equal(t, models.EventLeaveRoom, evs[1].Name)
}

func TestClient_EmitAfterDisconnect(t *testing.T) {
	srv := &echoServer{}
	c := dial(t, srv)

	c.Disconnect()
	c.Disconnect()

	assert.ErrorIs(t, c.Emit(models.EventTyping, "a_b", nil), transport.ErrClosed)
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("Done was not closed")
	}
}

func TestClient_DoneWhenServerCloses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer ts.Close()

	c, err := transport.Dial(context.Background(), "ws"+strings.TrimPrefix(ts.URL, "http"), "")
	require.NoError(t, err)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not notice the closed connection")
	}
}

func TestDial_Failure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := transport.Dial(context.Background(), "ws"+strings.TrimPrefix(ts.URL, "http"), "bad")
	assert.Error(t, err)
}

func TestOffline(t *testing.T) {
	var c transport.Conn = transport.NewOffline()

	assert.NoError(t, c.JoinRoom("a_b"))
	assert.ErrorIs(t, c.Emit(models.EventTyping, "a_b", nil), transport.ErrOffline)
	c.Disconnect()
	<-c.Done()
}
