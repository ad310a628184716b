package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"wallapi/internal/auth"
	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// RegisterInput is the storefront sign-up payload.
type RegisterInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password"`
}

// ProfileInput updates the signed-in user's own profile.
type ProfileInput struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}

// AuthService covers sign-up, sign-in and the signed-in user's own account.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*auth.Session, error)
	// Login signs in any active user from the storefront.
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	// AdminLogin signs in admin panel roles only, with the auto-logout TTL.
	AdminLogin(ctx context.Context, email, password string) (*auth.Session, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// SessionTTLs holds token lifetimes per audience.
type SessionTTLs struct {
	Admin    time.Duration
	Customer time.Duration
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.Manager
	ttl    SessionTTLs
}

func NewAuthService(users repository.UserRepository, tokens *auth.Manager, ttl SessionTTLs) AuthService {
	return &authService{users: users, tokens: tokens, ttl: ttl}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*auth.Session, error) {
	name, err := requireText("name", in.Name, 120)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail("email", in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword("password", in.Password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &model.User{
		Email:        email,
		Name:         name,
		Phone:        optionalText(in.Phone),
		Role:         model.RoleCustomer,
		IsActive:     true,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.tokens.Issue(u, s.ttl.Customer)
}

func (s *authService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	ttl := s.ttl.Customer
	if u.IsStaff() {
		ttl = s.ttl.Admin
	}
	return s.tokens.Issue(u, ttl)
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (*auth.Session, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !u.IsStaff() {
		return nil, ErrForbidden
	}
	return s.tokens.Issue(u, s.ttl.Admin)
}

func (s *authService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	return u, nil
}

// Me returns the current user; deleted or deactivated accounts lose their session.
func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUnauthorized
	}
	return u, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	name, err := requireText("name", in.Name, 120)
	if err != nil {
		return nil, err
	}
	u.Name = name
	u.Phone = optionalText(in.Phone)

	out, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if current == "" {
		return invalid("current_password", ReasonRequired)
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	if err := checkPassword("new_password", next); err != nil {
		return err
	}
	if next == current {
		return invalid("new_password", ReasonSameAsCurrent)
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return notFound(s.users.UpdatePassword(ctx, u.ID, hash))
}

func checkPassword(field, pw string) error {
	if pw == "" {
		return invalid(field, ReasonRequired)
	}
	if len([]rune(pw)) < auth.MinPasswordLength {
		return invalid(field, ReasonTooShort)
	}
	// bcrypt ignores input beyond 72 bytes.
	if len(pw) > 72 {
		return invalid(field, ReasonTooLong)
	}
	return nil
}
