package chat_test

import (
	"context"

	"nexthire/chat/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockBackend implements chat.HistoryLoader and chat.MessagePoster.
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
