package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

type MockChatbotRepository struct {
	mock.Mock
}

func (m *MockChatbotRepository) FindOrCreateConversation(ctx context.Context, sessionID string, userID *string) (*model.Conversation, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversation), args.Error(1)
}

func (m *MockChatbotRepository) FindConversation(ctx context.Context, id string) (*model.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversation), args.Error(1)
}

func (m *MockChatbotRepository) ListConversations(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Conversation], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Conversation]), args.Error(1)
}

func (m *MockChatbotRepository) DeleteConversation(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockChatbotRepository) AddMessage(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatMessage), args.Error(1)
}

func (m *MockChatbotRepository) RecentMessages(ctx context.Context, conversationID string, limit int) ([]model.ChatMessage, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}

func (m *MockChatbotRepository) ListMessages(ctx context.Context, conversationID string) ([]model.ChatMessage, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}
