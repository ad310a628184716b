package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wallapi/internal/model"
	"wallapi/internal/repository"
	repoMocks "wallapi/internal/repository/mocks"
)

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	users := new(repoMocks.MockUserRepository)
	svc := NewUserService(users)

	users.On("List", ctx, model.RoleEditor, repository.PageQuery{Limit: 100, Offset: 0}).
		Return(&repository.PageResult[model.User]{Items: []model.User{{ID: "u-1"}}, Total: 1}, nil)

	res, err := svc.List(ctx, model.RoleEditor, 500, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 100, res.Limit)

	_, err = svc.List(ctx, "superuser", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	users := new(repoMocks.MockUserRepository)
	svc := NewUserService(users)

	inactive := false
	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleEditor && !u.IsActive && u.PasswordHash != ""
	})).Return(&model.User{ID: "u-2", Role: model.RoleEditor}, nil)

	u, err := svc.Create(ctx, UserInput{Name: "Editör", Email: "editor@example.com", Role: model.RoleEditor, Password: "gizli-sifre", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "u-2", u.ID)

	_, err = svc.Create(ctx, UserInput{Name: "X", Email: "x@example.com", Role: "root", Password: "gizli-sifre"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserService_Update_LastAdminGuard(t *testing.T) {
	ctx := context.Background()
	customer := model.RoleCustomer

	t.Run("demoting the only admin fails", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		svc := NewUserService(users)
		users.On("FindByID", ctx, "a-1").Return(&model.User{ID: "a-1", Role: model.RoleAdmin, IsActive: true}, nil)
		users.On("CountActiveByRole", ctx, model.RoleAdmin).Return(1, nil)

		_, err := svc.Update(ctx, "a-1", UserUpdate{Role: &customer})
		assert.ErrorIs(t, err, ErrLastAdmin)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("demoting one of two admins succeeds", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		svc := NewUserService(users)
		users.On("FindByID", ctx, "a-1").Return(&model.User{ID: "a-1", Role: model.RoleAdmin, IsActive: true}, nil)
		users.On("CountActiveByRole", ctx, model.RoleAdmin).Return(2, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool { return u.Role == model.RoleCustomer })).
			Return(&model.User{ID: "a-1", Role: model.RoleCustomer}, nil)

		u, err := svc.Update(ctx, "a-1", UserUpdate{Role: &customer})
		require.NoError(t, err)
		assert.Equal(t, model.RoleCustomer, u.Role)
	})

	t.Run("password reset", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		svc := NewUserService(users)
		pw := "yeni-sifre-123"
		users.On("FindByID", ctx, "c-1").Return(&model.User{ID: "c-1", Role: model.RoleCustomer, IsActive: true}, nil)
		users.On("Update", ctx, mock.Anything).Return(&model.User{ID: "c-1"}, nil)
		users.On("UpdatePassword", ctx, "c-1", mock.AnythingOfType("string")).Return(nil)

		_, err := svc.Update(ctx, "c-1", UserUpdate{Password: &pw})
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		svc := NewUserService(users)
		email := "taken@example.com"
		users.On("FindByID", ctx, "c-1").Return(&model.User{ID: "c-1", Role: model.RoleCustomer, IsActive: true}, nil)
		users.On("Update", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)

		_, err := svc.Update(ctx, "c-1", UserUpdate{Email: &email})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string
		id      string
		setup   func(users *repoMocks.MockUserRepository)
		wantErr error
	}{
		{name: "self", actor: "a-1", id: "a-1", setup: func(*repoMocks.MockUserRepository) {}, wantErr: ErrCannotDeleteSelf},
		{name: "missing id", actor: "a-1", id: "", setup: func(*repoMocks.MockUserRepository) {}, wantErr: ErrIDRequired},
		{
			name: "not found", actor: "a-1", id: "x",
			setup: func(users *repoMocks.MockUserRepository) {
				users.On("FindByID", ctx, "x").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "last admin", actor: "e-1", id: "a-1",
			setup: func(users *repoMocks.MockUserRepository) {
				users.On("FindByID", ctx, "a-1").Return(&model.User{ID: "a-1", Role: model.RoleAdmin, IsActive: true}, nil)
				users.On("CountActiveByRole", ctx, model.RoleAdmin).Return(1, nil)
			},
			wantErr: ErrLastAdmin,
		},
		{
			name: "customer", actor: "a-1", id: "c-1",
			setup: func(users *repoMocks.MockUserRepository) {
				users.On("FindByID", ctx, "c-1").Return(&model.User{ID: "c-1", Role: model.RoleCustomer}, nil)
				users.On("Delete", ctx, "c-1").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(repoMocks.MockUserRepository)
			tt.setup(users)
			err := NewUserService(users).Delete(ctx, tt.actor, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			users.AssertExpectations(t)
		})
	}
}
