package service

import (
	"context"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// AddressInput creates or replaces a saved address.
type AddressInput struct {
	Title string `json:"title"`
	ShippingInput
	IsDefault bool `json:"is_default"`
}

// AddressService manages a customer's saved addresses. Every call is scoped to userID.
type AddressService interface {
	List(ctx context.Context, userID string) ([]model.Address, error)
	// Create makes the first address the default one.
	Create(ctx context.Context, userID string, in AddressInput) (*model.Address, error)
	Update(ctx context.Context, userID, id string, in AddressInput) (*model.Address, error)
	// Delete promotes the most recent remaining address when the default is removed.
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

type addressService struct {
	repo repository.AddressRepository
}

func NewAddressService(repo repository.AddressRepository) AddressService {
	return &addressService{repo: repo}
}

func (s *addressService) List(ctx context.Context, userID string) ([]model.Address, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, userID)
}

func addressFromInput(in AddressInput) (*model.Address, error) {
	title, err := requireText("title", in.Title, 60)
	if err != nil {
		return nil, err
	}
	sh, err := shippingFromInput("", in.ShippingInput)
	if err != nil {
		return nil, err
	}
	return &model.Address{
		Title:       title,
		FullName:    sh.FullName,
		Phone:       sh.Phone,
		City:        sh.City,
		District:    sh.District,
		AddressLine: sh.AddressLine,
		PostalCode:  sh.PostalCode,
		IsDefault:   in.IsDefault,
	}, nil
}

func (s *addressService) Create(ctx context.Context, userID string, in AddressInput) (*model.Address, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	a, err := addressFromInput(in)
	if err != nil {
		return nil, err
	}
	a.UserID = userID
	return s.repo.Create(ctx, a)
}

func (s *addressService) Update(ctx context.Context, userID, id string, in AddressInput) (*model.Address, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := addressFromInput(in)
	if err != nil {
		return nil, err
	}
	a.ID, a.UserID = id, userID
	out, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, notFound(err)
	}
	if in.IsDefault && !out.IsDefault {
		if err := s.repo.SetDefault(ctx, userID, id); err != nil {
			return nil, notFound(err)
		}
		out.IsDefault = true
	}
	return out, nil
}

func (s *addressService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.repo.Delete(ctx, userID, id))
}

func (s *addressService) SetDefault(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.repo.SetDefault(ctx, userID, id))
}
