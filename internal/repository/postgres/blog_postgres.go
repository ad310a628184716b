package postgres

import (
	"context"
	"database/sql"

	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// BlogPostgres is a PostgreSQL implementation of repository.BlogRepository.
type BlogPostgres struct {
	db *sql.DB
}

// NewBlogPostgres creates a new BlogPostgres repository.
func NewBlogPostgres(db *sql.DB) *BlogPostgres {
	return &BlogPostgres{db: db}
}

var _ repository.BlogRepository = (*BlogPostgres)(nil)

const blogColumns = `id, title, slug, excerpt, content, cover_image, author, is_published, published_at, created_at, updated_at`

func scanBlog(row interface{ Scan(...any) error }) (*model.Blog, error) {
	var b model.Blog
	if err := row.Scan(
		&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Content, &b.CoverImage, &b.Author,
		&b.IsPublished, &b.PublishedAt, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BlogPostgres) Create(ctx context.Context, b *model.Blog) (*model.Blog, error) {
	const q = `
		INSERT INTO blogs (title, slug, excerpt, content, cover_image, author, is_published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + blogColumns
	out, err := scanBlog(r.db.QueryRowContext(ctx, q,
		b.Title, b.Slug, b.Excerpt, b.Content, b.CoverImage, b.Author, b.IsPublished, b.PublishedAt,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *BlogPostgres) FindByID(ctx context.Context, id string) (*model.Blog, error) {
	const q = `SELECT ` + blogColumns + ` FROM blogs WHERE id = $1`
	return scanBlog(r.db.QueryRowContext(ctx, q, id))
}

func (r *BlogPostgres) FindBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	const q = `SELECT ` + blogColumns + ` FROM blogs WHERE slug = $1`
	return scanBlog(r.db.QueryRowContext(ctx, q, slug))
}

// List orders published articles by publish date, drafts by creation date.
func (r *BlogPostgres) List(ctx context.Context, onlyPublished bool, pq repository.PageQuery) (*repository.PageResult[model.Blog], error) {
	pq = clampPage(pq)

	const qCount = `SELECT COUNT(*) FROM blogs WHERE (NOT $1 OR is_published)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, onlyPublished).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + blogColumns + `
		FROM blogs
		WHERE (NOT $1 OR is_published)
		ORDER BY COALESCE(published_at, created_at) DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, onlyPublished, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Blog]{Items: items, Total: total}, nil
}

func (r *BlogPostgres) Update(ctx context.Context, b *model.Blog) (*model.Blog, error) {
	const q = `
		UPDATE blogs
		SET title = $2, slug = $3, excerpt = $4, content = $5, cover_image = $6, author = $7,
		    is_published = $8, published_at = $9, updated_at = now()
		WHERE id = $1
		RETURNING ` + blogColumns
	out, err := scanBlog(r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Slug, b.Excerpt, b.Content, b.CoverImage, b.Author, b.IsPublished, b.PublishedAt,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

// UpdateContent stores rewritten HTML without touching other fields.
func (r *BlogPostgres) UpdateContent(ctx context.Context, id, content string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE blogs SET content = $2, updated_at = now() WHERE id = $1`, id, content)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *BlogPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
