package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wallapi/internal/blogcontent"
	"wallapi/internal/model"
	"wallapi/internal/repository"
)

// BlogInput creates or replaces an article.
type BlogInput struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Excerpt     *string `json:"excerpt"`
	Content     string  `json:"content"`
	CoverImage  *string `json:"cover_image"`
	Author      *string `json:"author"`
	IsPublished bool    `json:"is_published"`
}

// BlogService manages articles and their inline content images.
type BlogService interface {
	// List returns only published articles when onlyPublished is set.
	List(ctx context.Context, onlyPublished bool, limit, offset int) (*ListResult[model.Blog], error)
	Get(ctx context.Context, id string) (*model.Blog, error)
	// GetPublishedBySlug hides drafts.
	GetPublishedBySlug(ctx context.Context, slug string) (*model.Blog, error)
	// Create stores the article, then externalizes its inline images into the
	// article's folder. The row and the folder are removed again if that fails.
	Create(ctx context.Context, in BlogInput) (*model.Blog, error)
	// Update stores the new HTML before content files it no longer uses are removed.
	Update(ctx context.Context, id string, in BlogInput) (*model.Blog, error)
	// Delete deletes the row, then purges the article's content folder.
	Delete(ctx context.Context, id string) error
}

type blogService struct {
	repo    repository.BlogRepository
	content *blogcontent.Processor
	log     *zap.Logger
	now     func() time.Time
}

func NewBlogService(repo repository.BlogRepository, content *blogcontent.Processor, log *zap.Logger) BlogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &blogService{repo: repo, content: content, log: log, now: time.Now}
}

func (s *blogService) List(ctx context.Context, onlyPublished bool, limit, offset int) (*ListResult[model.Blog], error) {
	pq := page(limit, offset, 10, 100)
	res, err := s.repo.List(ctx, onlyPublished, pq)
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Blog]{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *blogService) Get(ctx context.Context, id string) (*model.Blog, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (s *blogService) GetPublishedBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	b, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if !b.IsPublished {
		return nil, ErrNotFound
	}
	return b, nil
}

func blogFromInput(in BlogInput) (*model.Blog, error) {
	title, err := requireText("title", in.Title, 200)
	if err != nil {
		return nil, err
	}
	sl, err := makeSlug(in.Slug, title)
	if err != nil {
		return nil, err
	}
	if in.Content == "" {
		return nil, invalid("content", ReasonRequired)
	}
	return &model.Blog{
		Title:       title,
		Slug:        sl,
		Excerpt:     optionalText(in.Excerpt),
		Content:     in.Content,
		CoverImage:  optionalText(in.CoverImage),
		Author:      optionalText(in.Author),
		IsPublished: in.IsPublished,
	}, nil
}

func (s *blogService) Create(ctx context.Context, in BlogInput) (*model.Blog, error) {
	b, err := blogFromInput(in)
	if err != nil {
		return nil, err
	}
	if b.IsPublished {
		now := s.now().UTC()
		b.PublishedAt = &now
	}
	// The folder is named after the id, so the row goes first.
	raw := b.Content
	b.Content = blogcontent.NormalizeWhitespace(raw)
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, slugConflict(err)
	}

	res, err := s.content.Process(ctx, created.ID, raw)
	if err == nil {
		err = s.repo.UpdateContent(ctx, created.ID, res.HTML)
	}
	if err != nil {
		s.rollback(ctx, created.ID)
		return nil, fmt.Errorf("save blog content: %w", err)
	}
	created.Content = res.HTML
	s.log.Info("blog_content_saved",
		zap.String("blog_id", created.ID),
		zap.Int("written", len(res.Written)))
	return created, nil
}

func (s *blogService) rollback(ctx context.Context, id string) {
	if err := s.content.Purge(ctx, id); err != nil {
		s.log.Error("blog_rollback_purge_failed", zap.String("blog_id", id), zap.Error(err))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("blog_rollback_delete_failed", zap.String("blog_id", id), zap.Error(err))
	}
}

func (s *blogService) Update(ctx context.Context, id string, in BlogInput) (*model.Blog, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	b, err := blogFromInput(in)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	b.ID = id
	b.PublishedAt = current.PublishedAt
	if b.IsPublished && b.PublishedAt == nil {
		now := s.now().UTC()
		b.PublishedAt = &now
	}

	res, err := s.content.Process(ctx, id, b.Content)
	if err != nil {
		return nil, fmt.Errorf("save blog content: %w", err)
	}
	b.Content = res.HTML

	updated, err := s.repo.Update(ctx, b)
	if err != nil {
		// Drop what this attempt wrote; the stored HTML keeps its images.
		s.cleanup(ctx, id, current.Content)
		return nil, slugConflict(err)
	}
	removed := s.cleanup(ctx, id, res.HTML)
	s.log.Info("blog_content_saved",
		zap.String("blog_id", id),
		zap.Int("written", len(res.Written)),
		zap.Int("removed", removed))
	return updated, nil
}

// cleanup removes content files html does not reference. The row is the
// source of truth at this point, so failures are only logged.
func (s *blogService) cleanup(ctx context.Context, id, html string) int {
	removed, err := s.content.Cleanup(ctx, id, html)
	if err != nil {
		s.log.Warn("blog_content_cleanup_failed", zap.String("blog_id", id), zap.Error(err))
	}
	return len(removed)
}

func (s *blogService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	if err := s.content.Purge(ctx, id); err != nil {
		s.log.Warn("blog_content_purge_failed", zap.String("blog_id", id), zap.Error(err))
	}
	return nil
}
