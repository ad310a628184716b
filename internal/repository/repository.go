package repository

import (
	"context"
	"errors"

	"wallapi/internal/model"
)

// Repositories return sql.ErrNoRows when a single-row lookup misses and
// ErrDuplicate when a unique constraint rejects a write.
var (
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// UserRepository persists customer and back-office accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// List filters by role when role is non-empty.
	List(ctx context.Context, role string, pq PageQuery) (*PageResult[model.User], error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	CountActiveByRole(ctx context.Context, role string) (int, error)
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context, onlyActive bool) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}

// PaperTypeRepository persists wallpaper materials.
type PaperTypeRepository interface {
	Create(ctx context.Context, p *model.PaperType) (*model.PaperType, error)
	FindByID(ctx context.Context, id string) (*model.PaperType, error)
	List(ctx context.Context, onlyActive bool) ([]model.PaperType, error)
	Update(ctx context.Context, p *model.PaperType) (*model.PaperType, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	List(ctx context.Context, f model.ProductFilter) (*PageResult[model.Product], error)
	Update(ctx context.Context, p *model.Product) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

// BlogRepository persists blog articles.
type BlogRepository interface {
	Create(ctx context.Context, b *model.Blog) (*model.Blog, error)
	FindByID(ctx context.Context, id string) (*model.Blog, error)
	FindBySlug(ctx context.Context, slug string) (*model.Blog, error)
	List(ctx context.Context, onlyPublished bool, pq PageQuery) (*PageResult[model.Blog], error)
	Update(ctx context.Context, b *model.Blog) (*model.Blog, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository persists orders with their lines.
type OrderRepository interface {
	// Create stores the order and its items and decrements product stock in
	// one transaction. ErrInsufficientStock aborts the whole order.
	Create(ctx context.Context, o *model.Order) (*model.Order, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByNumber(ctx context.Context, number string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.Order], error)
	// List filters by status when status is non-empty. Items are not loaded.
	List(ctx context.Context, status string, pq PageQuery) (*PageResult[model.Order], error)
	// UpdateStatus moves the order from one status to another; restock returns
	// item quantities to stock. sql.ErrNoRows means the order is no longer in from.
	UpdateStatus(ctx context.Context, id, from, to string, restock bool) error
}

// AddressRepository persists customer addresses. Every method is scoped to the owner.
type AddressRepository interface {
	Create(ctx context.Context, a *model.Address) (*model.Address, error)
	FindByID(ctx context.Context, userID, id string) (*model.Address, error)
	ListByUser(ctx context.Context, userID string) ([]model.Address, error)
	Update(ctx context.Context, a *model.Address) (*model.Address, error)
	Delete(ctx context.Context, userID, id string) error
	// SetDefault marks one address as default and clears the flag on the others.
	SetDefault(ctx context.Context, userID, id string) error
}

// ChatbotRepository persists chatbot conversations and messages.
type ChatbotRepository interface {
	FindOrCreateConversation(ctx context.Context, sessionID string, userID *string) (*model.Conversation, error)
	FindConversation(ctx context.Context, id string) (*model.Conversation, error)
	ListConversations(ctx context.Context, pq PageQuery) (*PageResult[model.Conversation], error)
	DeleteConversation(ctx context.Context, id string) error
	AddMessage(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error)
	// RecentMessages returns up to limit latest messages, oldest first.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]model.ChatMessage, error)
	ListMessages(ctx context.Context, conversationID string) ([]model.ChatMessage, error)
}
