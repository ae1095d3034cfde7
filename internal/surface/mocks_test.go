package surface_test

import (
	"context"
	"io"
	"sync"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/transport"
	"nexthire/chat/internal/transport/transporttest"

	"github.com/stretchr/testify/mock"
)

// MockBackend implements surface.Backend and surface.ConversationLister.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) History(ctx context.Context, roomID string) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockBackend) SendMessage(ctx context.Context, roomID string, msg models.OutgoingMessage) (models.Message, error) {
	args := m.Called(ctx, roomID, msg)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MockBackend) Upload(ctx context.Context, name string, r io.Reader) (models.Attachment, error) {
	args := m.Called(ctx, name, r)
	return args.Get(0).(models.Attachment), args.Error(1)
}

func (m *MockBackend) SaveInterview(ctx context.Context, rec models.InterviewRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockBackend) Conversations(ctx context.Context, recruiterID string) ([]models.Conversation, error) {
	args := m.Called(ctx, recruiterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Conversation), args.Error(1)
}

// recordingAlerts keeps every notice shown.
type recordingAlerts struct {
	mu     sync.Mutex
	toasts []string
	modals []string
}

func (a *recordingAlerts) Toast(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.toasts = append(a.toasts, text)
}

func (a *recordingAlerts) Modal(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.modals = append(a.modals, text)
}

func (a *recordingAlerts) Toasts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.toasts...)
}

func (a *recordingAlerts) Modals() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.modals...)
}

// dialer hands out fake connections and records them.
type dialer struct {
	mu    sync.Mutex
	err   error
	conns []*transporttest.Conn
}

func (d *dialer) Dial(ctx context.Context) (transport.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	c := transporttest.New()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *dialer) Conns() []*transporttest.Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*transporttest.Conn(nil), d.conns...)
}
