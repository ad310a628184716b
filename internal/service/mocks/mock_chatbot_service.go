package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"wallapi/internal/model"
	"wallapi/internal/service"
)

type MockChatbotService struct {
	mock.Mock
}

func (m *MockChatbotService) Send(ctx context.Context, userID *string, in service.ChatInput, lang string) (*service.ChatReply, error) {
	args := m.Called(ctx, userID, in, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatReply), args.Error(1)
}

func (m *MockChatbotService) ListConversations(ctx context.Context, limit, offset int) (*service.ListResult[model.Conversation], error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Conversation]), args.Error(1)
}

func (m *MockChatbotService) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversation), args.Error(1)
}

func (m *MockChatbotService) DeleteConversation(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
