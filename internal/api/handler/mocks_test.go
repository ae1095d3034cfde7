package handler_test

import (
	"context"

	"nexthire/chat/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage implements storage.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveMessage(ctx context.Context, roomID string, out models.OutgoingMessage) (*models.ChatHistory, error) {
	args := m.Called(ctx, roomID, out)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatHistory), args.Error(1)
}

func (m *MockStorage) GetChatHistory(ctx context.Context, roomID string) ([]models.ChatHistory, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatHistory), args.Error(1)
}

func (m *MockStorage) SaveProfile(ctx context.Context, p *models.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStorage) GetApplicants(ctx context.Context, recruiterID string) ([]models.Applicant, error) {
	args := m.Called(ctx, recruiterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Applicant), args.Error(1)
}

func (m *MockStorage) SaveGroup(ctx context.Context, g *models.ChatGroup) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockStorage) SaveInterview(ctx context.Context, rec *models.InterviewRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
