package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

var userCols = []string{"id", "email", "name", "phone", "role", "is_active", "password_hash", "created_at", "updated_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	u := &model.User{Email: "ayse@example.com", Name: "Ayşe", Role: model.RoleCustomer, IsActive: true, PasswordHash: "hash"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(u.Email, u.Name, nil, u.Role, true, "hash").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u-1", u.Email, u.Name, nil, u.Role, true, "hash", now, now))

		out, err := repo.Create(ctx, u)

		require.NoError(t, err)
		assert.Equal(t, "u-1", out.ID)
		assert.Nil(t, out.Phone)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		out, err := repo.Create(ctx, u)

		assert.Nil(t, out)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("ADMIN@localhost").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "admin@localhost", "Yönetici", "+905551112233", model.RoleAdmin, true, "hash", now, now))

	u, err := repo.FindByEmail(context.Background(), "ADMIN@localhost")

	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	require.NotNil(t, u.Phone)
	assert.Equal(t, "+905551112233", *u.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs(model.RoleEditor).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM users\s+WHERE`).
		WithArgs(model.RoleEditor, 20, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-2", "editor@example.com", "Editör", nil, model.RoleEditor, true, "hash", now, now))

	res, err := repo.List(context.Background(), model.RoleEditor, repository.PageQuery{})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "u-2", res.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM users WHERE id").
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "u-1"))

	mock.ExpectExec("DELETE FROM users WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_CountActiveByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1 AND is_active`).
		WithArgs(model.RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := NewUserPostgres(db).CountActiveByRole(context.Background(), model.RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
