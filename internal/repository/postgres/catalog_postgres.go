package postgres

import (
	"context"
	"database/sql"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	db *sql.DB
}

// NewCategoryPostgres creates a new CategoryPostgres repository.
func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

const categoryColumns = `id, name, slug, description, image_url, sort_order, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryPostgres) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		INSERT INTO categories (name, slug, description, image_url, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + categoryColumns
	out, err := scanCategory(r.db.QueryRowContext(ctx, q, c.Name, c.Slug, c.Description, c.ImageURL, c.SortOrder, c.IsActive))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *CategoryPostgres) FindByID(ctx context.Context, id string) (*model.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, id))
}

func (r *CategoryPostgres) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, slug))
}

// List orders categories by sort_order, then name.
func (r *CategoryPostgres) List(ctx context.Context, onlyActive bool) ([]model.Category, error) {
	const q = `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE (NOT $1 OR is_active)
		ORDER BY sort_order, name
	`
	rows, err := r.db.QueryContext(ctx, q, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *CategoryPostgres) Update(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, image_url = $5, sort_order = $6, is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + categoryColumns
	out, err := scanCategory(r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.SortOrder, c.IsActive))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *CategoryPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// PaperTypePostgres is a PostgreSQL implementation of repository.PaperTypeRepository.
type PaperTypePostgres struct {
	db *sql.DB
}

// NewPaperTypePostgres creates a new PaperTypePostgres repository.
func NewPaperTypePostgres(db *sql.DB) *PaperTypePostgres {
	return &PaperTypePostgres{db: db}
}

var _ repository.PaperTypeRepository = (*PaperTypePostgres)(nil)

const paperTypeColumns = `id, name, slug, description, is_active, created_at, updated_at`

func scanPaperType(row interface{ Scan(...any) error }) (*model.PaperType, error) {
	var p model.PaperType
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaperTypePostgres) Create(ctx context.Context, p *model.PaperType) (*model.PaperType, error) {
	const q = `
		INSERT INTO paper_types (name, slug, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + paperTypeColumns
	out, err := scanPaperType(r.db.QueryRowContext(ctx, q, p.Name, p.Slug, p.Description, p.IsActive))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *PaperTypePostgres) FindByID(ctx context.Context, id string) (*model.PaperType, error) {
	const q = `SELECT ` + paperTypeColumns + ` FROM paper_types WHERE id = $1`
	return scanPaperType(r.db.QueryRowContext(ctx, q, id))
}

func (r *PaperTypePostgres) List(ctx context.Context, onlyActive bool) ([]model.PaperType, error) {
	const q = `
		SELECT ` + paperTypeColumns + `
		FROM paper_types
		WHERE (NOT $1 OR is_active)
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, q, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.PaperType, 0)
	for rows.Next() {
		p, err := scanPaperType(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r *PaperTypePostgres) Update(ctx context.Context, p *model.PaperType) (*model.PaperType, error) {
	const q = `
		UPDATE paper_types
		SET name = $2, slug = $3, description = $4, is_active = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + paperTypeColumns
	out, err := scanPaperType(r.db.QueryRowContext(ctx, q, p.ID, p.Name, p.Slug, p.Description, p.IsActive))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *PaperTypePostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM paper_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
