// Command seed-admin creates the first admin account from ADMIN_EMAIL,
// ADMIN_NAME and ADMIN_PASSWORD, applying pending migrations first.
package main

import (
	"context"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"wallapi/internal/config"
	"wallapi/internal/database"
	"wallapi/internal/database/migration"
	"wallapi/internal/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.Location())
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Error("db_connect_failed", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Error("db_migration_failed", zap.Error(err))
		os.Exit(1)
	}

	created, err := database.SeedAdmin(ctx, db, cfg.Seed, log)
	if err != nil {
		log.Error("seed_admin_failed", zap.Error(err))
		os.Exit(1)
	}
	if !created {
		log.Info("seed_admin_noop", zap.String("reason", "an admin user already exists"))
	}
}
