package service

import (
	"context"

	"go.uber.org/zap"

	"wallapi/internal/assistant"
	"wallapi/internal/i18n"
	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// ChatInput is one storefront chatbot message.
type ChatInput struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatReply is returned to the chat widget.
type ChatReply struct {
	ConversationID string            `json:"conversation_id"`
	Reply          model.ChatMessage `json:"reply"`
}

// ChatbotService answers storefront messages and backs the admin conversation viewer.
type ChatbotService interface {
	// Send stores the message and the generated reply. A localized fallback is
	// used when the assistant is unavailable.
	Send(ctx context.Context, userID *string, in ChatInput, lang string) (*ChatReply, error)
	ListConversations(ctx context.Context, limit, offset int) (*ListResult[model.Conversation], error)
	GetConversation(ctx context.Context, id string) (*model.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
}

const chatHistoryLimit = 20

type chatbotService struct {
	repo      repository.ChatbotRepository
	responder assistant.Responder
	catalog   *i18n.Catalog
	log       *zap.Logger
}

// NewChatbotService accepts a nil responder.
func NewChatbotService(repo repository.ChatbotRepository, responder assistant.Responder, catalog *i18n.Catalog, log *zap.Logger) ChatbotService {
	if log == nil {
		log = zap.NewNop()
	}
	return &chatbotService{repo: repo, responder: responder, catalog: catalog, log: log}
}

func (s *chatbotService) Send(ctx context.Context, userID *string, in ChatInput, lang string) (*ChatReply, error) {
	sessionID, err := requireText("session_id", in.SessionID, 100)
	if err != nil {
		return nil, err
	}
	message, err := requireText("message", in.Message, 2000)
	if err != nil {
		return nil, err
	}

	conv, err := s.repo.FindOrCreateConversation(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.RecentMessages(ctx, conv.ID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.AddMessage(ctx, &model.ChatMessage{
		ConversationID: conv.ID,
		Role:           model.ChatRoleUser,
		Content:        message,
	}); err != nil {
		return nil, err
	}

	text := s.reply(ctx, lang, history, message, conv.ID)
	stored, err := s.repo.AddMessage(ctx, &model.ChatMessage{
		ConversationID: conv.ID,
		Role:           model.ChatRoleAssistant,
		Content:        text,
	})
	if err != nil {
		return nil, err
	}
	return &ChatReply{ConversationID: conv.ID, Reply: *stored}, nil
}

func (s *chatbotService) reply(ctx context.Context, lang string, history []model.ChatMessage, message, convID string) string {
	if s.responder != nil {
		text, err := s.responder.Reply(ctx, lang, history, message)
		if err == nil {
			return text
		}
		s.log.Warn("chatbot_reply_failed", zap.String("conversation_id", convID), zap.Error(err))
	}
	return s.catalog.Localizer(lang).T("chatbot.fallback")
}

func (s *chatbotService) ListConversations(ctx context.Context, limit, offset int) (*ListResult[model.Conversation], error) {
	pq := page(limit, offset, 20, 100)
	res, err := s.repo.ListConversations(ctx, pq)
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Conversation]{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *chatbotService) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	conv, err := s.repo.FindConversation(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	msgs, err := s.repo.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.Messages = msgs
	return conv, nil
}

func (s *chatbotService) DeleteConversation(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.repo.DeleteConversation(ctx, id))
}
