package model

import "time"

// Chat message authors.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// Conversation is a storefront chatbot session.
type Conversation struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"session_id"`
	UserID       *string       `json:"user_id,omitempty"`
	MessageCount int           `json:"message_count"`
	LastMessage  *string       `json:"last_message,omitempty"`
	Messages     []ChatMessage `json:"messages,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
