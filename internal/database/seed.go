package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wallapi/internal/auth"
	"wallapi/internal/config"
)

// ErrAdminPasswordRequired is returned when no admin exists and ADMIN_PASSWORD is empty.
var ErrAdminPasswordRequired = errors.New("ADMIN_PASSWORD is required to seed the admin user")

const minSeedPasswordLen = 8

var hashPassword = auth.HashPassword

// SeedAdmin creates the admin account when no admin exists yet. An existing
// user with the seed e-mail is promoted and reactivated with the seed password.
// It reports whether a row was written.
func SeedAdmin(ctx context.Context, db *sql.DB, cfg config.SeedConfig, log *zap.Logger) (bool, error) {
	start := time.Now()
	log = log.With(zap.String("component", "seed"), zap.String("event", "seed_admin"))

	var admins int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&admins); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		log.Info("seed_admin_skip",
			zap.String("status", "success"),
			zap.Int("admins", admins),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return false, nil
	}

	if cfg.AdminPassword == "" {
		return false, ErrAdminPasswordRequired
	}
	if len(cfg.AdminPassword) < minSeedPasswordLen {
		return false, fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", minSeedPasswordLen)
	}

	hash, err := hashPassword(cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	_, err = db.ExecContext(ctx, `INSERT INTO users (email, name, role, password_hash, is_active)
VALUES ($1, $2, 'admin', $3, TRUE)
ON CONFLICT ((lower(email))) DO UPDATE
SET role = 'admin', password_hash = EXCLUDED.password_hash, is_active = TRUE, updated_at = now()`,
		email, cfg.AdminName, hash)
	if err != nil {
		log.Error("seed_admin_failed",
			zap.String("status", "error"),
			zap.String("error_message", err.Error()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return false, fmt.Errorf("insert admin: %w", err)
	}

	log.Info("seed_admin_success",
		zap.String("status", "success"),
		zap.String("email", email),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return true, nil
}
