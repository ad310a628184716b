package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT        NOT NULL,
  name          TEXT        NOT NULL,
  phone         TEXT,
  role          TEXT        NOT NULL CHECK (role IN ('admin', 'editor', 'customer')),
  password_hash TEXT        NOT NULL,
  is_active     BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_users_email",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email));`,
	},
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        TEXT        NOT NULL,
  slug        TEXT        NOT NULL UNIQUE,
  description TEXT,
  image_url   TEXT,
  sort_order  INTEGER     NOT NULL DEFAULT 0,
  is_active   BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_paper_types",
		SQL: `CREATE TABLE IF NOT EXISTS paper_types (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        TEXT        NOT NULL,
  slug        TEXT        NOT NULL UNIQUE,
  description TEXT,
  is_active   BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_products",
		SQL: `CREATE TABLE IF NOT EXISTS products (
  id             UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  name           TEXT          NOT NULL,
  slug           TEXT          NOT NULL UNIQUE,
  sku            TEXT          UNIQUE,
  description    TEXT,
  price          NUMERIC(12,2) NOT NULL CHECK (price > 0),
  stock          INTEGER       NOT NULL DEFAULT 0 CHECK (stock >= 0),
  category_id    UUID          REFERENCES categories (id) ON DELETE SET NULL,
  paper_type_id  UUID          REFERENCES paper_types (id) ON DELETE SET NULL,
  image_url      TEXT,
  roll_width_cm  INTEGER,
  roll_length_cm INTEGER,
  is_active      BOOLEAN       NOT NULL DEFAULT TRUE,
  created_at     TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_products_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_category_id ON products (category_id);`,
	},
	{
		Name: "create_index_products_paper_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_paper_type_id ON products (paper_type_id);`,
	},
	{
		Name: "create_table_blogs",
		SQL: `CREATE TABLE IF NOT EXISTS blogs (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title        TEXT        NOT NULL,
  slug         TEXT        NOT NULL UNIQUE,
  excerpt      TEXT,
  content      TEXT        NOT NULL DEFAULT '',
  cover_image  TEXT,
  author       TEXT,
  is_published BOOLEAN     NOT NULL DEFAULT FALSE,
  published_at TIMESTAMPTZ,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_addresses",
		SQL: `CREATE TABLE IF NOT EXISTS addresses (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id      UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  title        TEXT        NOT NULL,
  full_name    TEXT        NOT NULL,
  phone        TEXT        NOT NULL,
  city         TEXT        NOT NULL,
  district     TEXT        NOT NULL,
  address_line TEXT        NOT NULL,
  postal_code  TEXT,
  is_default   BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_addresses_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_addresses_user_id ON addresses (user_id);`,
	},
	{
		Name: "create_table_orders",
		SQL: `CREATE TABLE IF NOT EXISTS orders (
  id                    UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  order_number          TEXT          NOT NULL UNIQUE,
  user_id               UUID          REFERENCES users (id) ON DELETE SET NULL,
  customer_name         TEXT          NOT NULL,
  customer_email        TEXT          NOT NULL,
  customer_phone        TEXT          NOT NULL,
  shipping_full_name    TEXT          NOT NULL,
  shipping_phone        TEXT          NOT NULL,
  shipping_city         TEXT          NOT NULL,
  shipping_district     TEXT          NOT NULL,
  shipping_address_line TEXT          NOT NULL,
  shipping_postal_code  TEXT,
  payment_method        TEXT          NOT NULL,
  status                TEXT          NOT NULL DEFAULT 'pending',
  subtotal              NUMERIC(12,2) NOT NULL,
  shipping_fee          NUMERIC(12,2) NOT NULL,
  total                 NUMERIC(12,2) NOT NULL,
  note                  TEXT,
  created_at            TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at            TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_orders_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id, created_at DESC);`,
	},
	{
		Name: "create_table_order_items",
		SQL: `CREATE TABLE IF NOT EXISTS order_items (
  id           UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  order_id     UUID          NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
  product_id   UUID          REFERENCES products (id) ON DELETE SET NULL,
  product_name TEXT          NOT NULL,
  unit_price   NUMERIC(12,2) NOT NULL,
  quantity     INTEGER       NOT NULL CHECK (quantity > 0),
  line_total   NUMERIC(12,2) NOT NULL
);`,
	},
	{
		Name: "create_table_chatbot_conversations",
		SQL: `CREATE TABLE IF NOT EXISTS chatbot_conversations (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  session_id TEXT        NOT NULL UNIQUE,
  user_id    UUID        REFERENCES users (id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_chatbot_messages",
		SQL: `CREATE TABLE IF NOT EXISTS chatbot_messages (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  conversation_id UUID        NOT NULL REFERENCES chatbot_conversations (id) ON DELETE CASCADE,
  role            TEXT        NOT NULL CHECK (role IN ('user', 'assistant')),
  content         TEXT        NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_chatbot_messages_conversation",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_chatbot_messages_conversation ON chatbot_messages (conversation_id, created_at);`,
	},
}

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureMigrated applies every step not yet recorded in schema_migrations.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to create ledger: %v", err)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to create migration ledger: %w", err)
	}

	applied, err := appliedSteps(ctx, db)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", err.Error()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return err
	}

	pending := 0
	for _, step := range steps {
		if applied[step.Name] {
			continue
		}
		pending++
		stepStart := time.Now()

		if err := applyStep(ctx, db, step); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	if pending == 0 {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int("steps_applied", pending),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration ledger: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func applyStep(ctx context.Context, db *sql.DB, step migrationStep) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
		return err
	}
	return tx.Commit()
}
