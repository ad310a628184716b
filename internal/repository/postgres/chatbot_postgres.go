package postgres

import (
	"context"
	"database/sql"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// ChatbotPostgres is a PostgreSQL implementation of repository.ChatbotRepository.
type ChatbotPostgres struct {
	db *sql.DB
}

// NewChatbotPostgres creates a new ChatbotPostgres repository.
func NewChatbotPostgres(db *sql.DB) *ChatbotPostgres {
	return &ChatbotPostgres{db: db}
}

var _ repository.ChatbotRepository = (*ChatbotPostgres)(nil)

const conversationSelect = `
		SELECT c.id, c.session_id, c.user_id, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM chatbot_messages m WHERE m.conversation_id = c.id),
		       (SELECT m.content FROM chatbot_messages m WHERE m.conversation_id = c.id
		        ORDER BY m.created_at DESC LIMIT 1)
		FROM chatbot_conversations c`

func scanConversation(row interface{ Scan(...any) error }) (*model.Conversation, error) {
	var c model.Conversation
	if err := row.Scan(&c.ID, &c.SessionID, &c.UserID, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount, &c.LastMessage); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreateConversation returns the conversation bound to sessionID,
// creating it on first use. A later authenticated message attaches the user.
func (r *ChatbotPostgres) FindOrCreateConversation(ctx context.Context, sessionID string, userID *string) (*model.Conversation, error) {
	const q = `
		INSERT INTO chatbot_conversations (session_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO UPDATE
		SET user_id = COALESCE(chatbot_conversations.user_id, EXCLUDED.user_id), updated_at = now()
		RETURNING id, session_id, user_id, created_at, updated_at`
	var c model.Conversation
	if err := r.db.QueryRowContext(ctx, q, sessionID, userID).Scan(&c.ID, &c.SessionID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChatbotPostgres) FindConversation(ctx context.Context, id string) (*model.Conversation, error) {
	return scanConversation(r.db.QueryRowContext(ctx, conversationSelect+` WHERE c.id = $1`, id))
}

// ListConversations returns conversations by most recent activity.
func (r *ChatbotPostgres) ListConversations(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Conversation], error) {
	pq = clampPage(pq)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chatbot_conversations`).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, conversationSelect+` ORDER BY c.updated_at DESC, c.id DESC LIMIT $1 OFFSET $2`, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Conversation]{Items: items, Total: total}, nil
}

func (r *ChatbotPostgres) DeleteConversation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chatbot_conversations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// AddMessage appends a message and bumps the conversation's activity time.
func (r *ChatbotPostgres) AddMessage(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := *m
	const q = `
		INSERT INTO chatbot_messages (conversation_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, q, m.ConversationID, m.Role, m.Content).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE chatbot_conversations SET updated_at = now() WHERE id = $1`, m.ConversationID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ChatbotPostgres) RecentMessages(ctx context.Context, conversationID string, limit int) ([]model.ChatMessage, error) {
	const q = `
		SELECT id, conversation_id, role, content, created_at FROM (
			SELECT id, conversation_id, role, content, created_at
			FROM chatbot_messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`
	return r.messages(ctx, q, conversationID, limit)
}

func (r *ChatbotPostgres) ListMessages(ctx context.Context, conversationID string) ([]model.ChatMessage, error) {
	const q = `
		SELECT id, conversation_id, role, content, created_at
		FROM chatbot_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`
	return r.messages(ctx, q, conversationID)
}

func (r *ChatbotPostgres) messages(ctx context.Context, q string, args ...any) ([]model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ChatMessage, 0)
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
