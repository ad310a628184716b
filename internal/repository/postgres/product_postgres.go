package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

const productSelect = `
		SELECT p.id, p.name, p.slug, p.sku, p.description, p.price, p.stock,
		       p.category_id, c.name, p.paper_type_id, pt.name,
		       p.image_url, p.roll_width_cm, p.roll_length_cm, p.is_active, p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN paper_types pt ON pt.id = p.paper_type_id`

const productReturning = `id, name, slug, sku, description, price, stock, category_id, paper_type_id,
		          image_url, roll_width_cm, roll_length_cm, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Price, &p.Stock,
		&p.CategoryID, &p.CategoryName, &p.PaperTypeID, &p.PaperTypeName,
		&p.ImageURL, &p.RollWidthCM, &p.RollLengthCM, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// scanProductRow reads a RETURNING row, which carries no joined names.
func scanProductRow(row interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.PaperTypeID,
		&p.ImageURL, &p.RollWidthCM, &p.RollLengthCM, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductPostgres) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		INSERT INTO products (name, slug, sku, description, price, stock, category_id, paper_type_id,
		                      image_url, roll_width_cm, roll_length_cm, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + productReturning
	out, err := scanProductRow(r.db.QueryRowContext(ctx, q,
		p.Name, p.Slug, p.SKU, p.Description, p.Price, p.Stock, p.CategoryID, p.PaperTypeID,
		p.ImageURL, p.RollWidthCM, p.RollLengthCM, p.IsActive,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *ProductPostgres) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
}

func (r *ProductPostgres) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.slug = $1`, slug))
}

// FindByIDs returns the products that exist among ids, in no particular order.
func (r *ProductPostgres) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := productSelect + ` WHERE p.id IN (` + strings.Join(marks, ", ") + `)`
	return r.collect(ctx, q, args...)
}

// List applies the filter and returns one page plus the total match count.
func (r *ProductPostgres) List(ctx context.Context, f model.ProductFilter) (*repository.PageResult[model.Product], error) {
	where, args := productWhere(f)

	var total int
	qCount := `SELECT COUNT(*) FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN paper_types pt ON pt.id = p.paper_type_id` + where
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 12
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	qList := productSelect + where + ` ORDER BY ` + productOrder(f.Sort) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	items, err := r.collect(ctx, qList, append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Product]{Items: items, Total: total}, nil
}

func (r *ProductPostgres) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	const q = `
		UPDATE products
		SET name = $2, slug = $3, sku = $4, description = $5, price = $6, stock = $7,
		    category_id = $8, paper_type_id = $9, image_url = $10, roll_width_cm = $11,
		    roll_length_cm = $12, is_active = $13, updated_at = now()
		WHERE id = $1
		RETURNING ` + productReturning
	out, err := scanProductRow(r.db.QueryRowContext(ctx, q,
		p.ID, p.Name, p.Slug, p.SKU, p.Description, p.Price, p.Stock, p.CategoryID, p.PaperTypeID,
		p.ImageURL, p.RollWidthCM, p.RollLengthCM, p.IsActive,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *ProductPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *ProductPostgres) collect(ctx context.Context, q string, args ...any) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func productWhere(f model.ProductFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OnlyActive {
		conds = append(conds, "p.is_active")
	}
	if f.CategorySlug != "" {
		add("c.slug = $%d", f.CategorySlug)
	}
	if f.PaperTypeSlug != "" {
		add("pt.slug = $%d", f.PaperTypeSlug)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d OR p.sku ILIKE $%[1]d)", "%"+s+"%")
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func productOrder(sort string) string {
	switch sort {
	case model.SortPriceAsc:
		return "p.price ASC, p.id"
	case model.SortPriceDesc:
		return "p.price DESC, p.id"
	case model.SortName:
		return "p.name ASC, p.id"
	default:
		return "p.created_at DESC, p.id"
	}
}
