package relay_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"nexthire/chat/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClient struct {
	userID      string
	RecvChannel chan models.Event

	mu     sync.Mutex
	closed bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{userID: userID, RecvChannel: make(chan models.Event, 16)}
}

func (c *MockClient) GetUserID() string                   { return c.userID }
func (c *MockClient) GetSendChannel() chan<- models.Event { return c.RecvChannel }
func (c *MockClient) Run()                                {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// next waits for the next event delivered to the client.
func (c *MockClient) next(t *testing.T) models.Event {
	t.Helper()
	select {
	case ev := <-c.RecvChannel:
		return ev
	case <-time.After(time.Second):
		require.FailNow(t, "no event delivered to "+c.userID)
	}
	return models.Event{}
}

// none asserts that nothing arrives for a short while.
func (c *MockClient) none(t *testing.T) {
	t.Helper()
	select {
	case ev := <-c.RecvChannel:
		require.FailNow(t, "unexpected event "+ev.Name+" for "+c.userID)
	case <-time.After(50 * time.Millisecond):
	}
}

type MockBus struct {
	mock.Mock
	ch chan []byte
}

func (m *MockBus) Publish(ctx context.Context, payload any) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockBus) Subscribe(ctx context.Context) (<-chan []byte, error) {
	args := m.Called(ctx)
	return m.ch, args.Error(0)
}

type MockPresence struct {
	mock.Mock
}

func (m *MockPresence) SetOnline(ctx context.Context, userID string, online bool) error {
	args := m.Called(ctx, userID, online)
	return args.Error(0)
}
