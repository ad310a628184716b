package service

import (
	"context"
	"errors"

	"wallapi/internal/auth"
	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// UserInput creates a user from the admin panel.
type UserInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
	Password string  `json:"password"`
	IsActive *bool   `json:"is_active"`
}

// UserUpdate changes selected fields; nil fields are kept.
type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// UserService is the admin-only user management use case.
type UserService interface {
	List(ctx context.Context, role string, limit, offset int) (*ListResult[model.User], error)
	Get(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, in UserInput) (*model.User, error)
	Update(ctx context.Context, id string, in UserUpdate) (*model.User, error)
	// Delete removes a user; actorID is the admin performing the request.
	Delete(ctx context.Context, actorID, id string) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, role string, limit, offset int) (*ListResult[model.User], error) {
	if role != "" && !model.ValidRole(role) {
		return nil, invalid("role", ReasonInvalid)
	}
	pq := page(limit, offset, 20, 100)
	res, err := s.users.List(ctx, role, pq)
	if err != nil {
		return nil, err
	}
	return &ListResult[model.User]{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	name, err := requireText("name", in.Name, 120)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail("email", in.Email)
	if err != nil {
		return nil, err
	}
	if !model.ValidRole(in.Role) {
		return nil, invalid("role", ReasonInvalid)
	}
	if err := checkPassword("password", in.Password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	u, err := s.users.Create(ctx, &model.User{
		Email:        email,
		Name:         name,
		Phone:        optionalText(in.Phone),
		Role:         in.Role,
		IsActive:     active,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id string, in UserUpdate) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActiveAdmin := u.Role == model.RoleAdmin && u.IsActive

	if in.Name != nil {
		if u.Name, err = requireText("name", *in.Name, 120); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		if u.Email, err = normalizeEmail("email", *in.Email); err != nil {
			return nil, err
		}
	}
	if in.Phone != nil {
		u.Phone = optionalText(in.Phone)
	}
	if in.Role != nil {
		if !model.ValidRole(*in.Role) {
			return nil, invalid("role", ReasonInvalid)
		}
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	var hash string
	if in.Password != nil {
		if err := checkPassword("password", *in.Password); err != nil {
			return nil, err
		}
		if hash, err = auth.HashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	if wasActiveAdmin && (u.Role != model.RoleAdmin || !u.IsActive) {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	out, err := s.users.Update(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, notFound(err)
	}
	if hash != "" {
		if err := s.users.UpdatePassword(ctx, out.ID, hash); err != nil {
			return nil, notFound(err)
		}
	}
	return out, nil
}

func (s *userService) Delete(ctx context.Context, actorID, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == model.RoleAdmin && u.IsActive {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	return notFound(s.users.Delete(ctx, id))
}

func (s *userService) ensureAnotherAdmin(ctx context.Context) error {
	n, err := s.users.CountActiveByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}
