package postgres

import (
	"context"
	"database/sql"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// AddressPostgres is a PostgreSQL implementation of repository.AddressRepository.
type AddressPostgres struct {
	db *sql.DB
}

// NewAddressPostgres creates a new AddressPostgres repository.
func NewAddressPostgres(db *sql.DB) *AddressPostgres {
	return &AddressPostgres{db: db}
}

var _ repository.AddressRepository = (*AddressPostgres)(nil)

const addressColumns = `id, user_id, title, full_name, phone, city, district, address_line, postal_code, is_default, created_at, updated_at`

func scanAddress(row interface{ Scan(...any) error }) (*model.Address, error) {
	var a model.Address
	if err := row.Scan(
		&a.ID, &a.UserID, &a.Title, &a.FullName, &a.Phone, &a.City, &a.District,
		&a.AddressLine, &a.PostalCode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an address. The user's first address always becomes the
// default; a new default clears the flag on the others.
func (r *AddressPostgres) Create(ctx context.Context, a *model.Address) (*model.Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, a.UserID); err != nil {
			return nil, err
		}
	}

	const q = `
		INSERT INTO addresses (user_id, title, full_name, phone, city, district, address_line, postal_code, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		        $9 OR NOT EXISTS (SELECT 1 FROM addresses WHERE user_id = $1))
		RETURNING ` + addressColumns
	out, err := scanAddress(tx.QueryRowContext(ctx, q,
		a.UserID, a.Title, a.FullName, a.Phone, a.City, a.District, a.AddressLine, a.PostalCode, a.IsDefault,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AddressPostgres) FindByID(ctx context.Context, userID, id string) (*model.Address, error) {
	const q = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND id = $2`
	return scanAddress(r.db.QueryRowContext(ctx, q, userID, id))
}

// ListByUser returns the default address first, then newest first.
func (r *AddressPostgres) ListByUser(ctx context.Context, userID string) ([]model.Address, error) {
	const q = `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Update writes the address fields. The default flag is changed only through SetDefault.
func (r *AddressPostgres) Update(ctx context.Context, a *model.Address) (*model.Address, error) {
	const q = `
		UPDATE addresses
		SET title = $3, full_name = $4, phone = $5, city = $6, district = $7,
		    address_line = $8, postal_code = $9, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING ` + addressColumns
	return scanAddress(r.db.QueryRowContext(ctx, q,
		a.UserID, a.ID, a.Title, a.FullName, a.Phone, a.City, a.District, a.AddressLine, a.PostalCode,
	))
}

// Delete removes an address; deleting the default promotes the most recent remaining one.
func (r *AddressPostgres) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var wasDefault bool
	err = tx.QueryRowContext(ctx,
		`DELETE FROM addresses WHERE user_id = $1 AND id = $2 RETURNING is_default`, userID, id,
	).Scan(&wasDefault)
	if err != nil {
		return err
	}

	if wasDefault {
		const q = `
			UPDATE addresses SET is_default = TRUE, updated_at = now()
			WHERE id = (SELECT id FROM addresses WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1)`
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *AddressPostgres) SetDefault(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = TRUE, updated_at = now() WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2 AND is_default`, userID, id); err != nil {
		return err
	}

	return tx.Commit()
}
