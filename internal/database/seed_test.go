package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapi/internal/config"
	"wallapi/internal/logging"
)

const countAdmins = `SELECT COUNT(*) FROM users WHERE role = 'admin'`

func seedCfg(password string) config.SeedConfig {
	return config.SeedConfig{AdminEmail: " Admin@Example.com ", AdminName: "Yönetici", AdminPassword: password}
}

func TestSeedAdmin(t *testing.T) {
	orig := hashPassword
	hashPassword = func(string) (string, error) { return "hashed", nil }
	defer func() { hashPassword = orig }()

	t.Run("creates admin", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		var buf bytes.Buffer

		mock.ExpectQuery(countAdmins).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO users (email, name, role, password_hash, is_active)
VALUES ($1, $2, 'admin', $3, TRUE)
ON CONFLICT ((lower(email))) DO UPDATE
SET role = 'admin', password_hash = EXCLUDED.password_hash, is_active = TRUE, updated_at = now()`).
			WithArgs("admin@example.com", "Yönetici", "hashed").
			WillReturnResult(sqlmock.NewResult(0, 1))

		created, err := SeedAdmin(context.Background(), db, seedCfg("s3cret-pass"), logging.NewWithWriter(&buf, time.UTC))

		require.NoError(t, err)
		assert.True(t, created)
		assert.Contains(t, buf.String(), `"msg":"seed_admin_success"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin already present", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()
		var buf bytes.Buffer

		mock.ExpectQuery(countAdmins).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		created, err := SeedAdmin(context.Background(), db, seedCfg(""), logging.NewWithWriter(&buf, time.UTC))

		require.NoError(t, err)
		assert.False(t, created)
		assert.Contains(t, buf.String(), `"msg":"seed_admin_skip"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	tests := []struct {
		name     string
		password string
		wantErr  error
		errText  string
	}{
		{"missing password", "", ErrAdminPasswordRequired, ""},
		{"short password", "kisa", nil, "at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(countAdmins).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

			_, err = SeedAdmin(context.Background(), db, seedCfg(tt.password), logging.NewWithWriter(&bytes.Buffer{}, time.UTC))

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errText != "" {
				assert.Contains(t, err.Error(), tt.errText)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("count fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(countAdmins).WillReturnError(errors.New("relation \"users\" does not exist"))

		_, err = SeedAdmin(context.Background(), db, seedCfg("s3cret-pass"), logging.NewWithWriter(&bytes.Buffer{}, time.UTC))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "count admins")
	})
}
