package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wallapi/internal/cache"
	"wallapi/internal/model"
	"wallapi/internal/repository"
	"wallapi/internal/slug"
)

// CategoryInput creates or replaces a category.
type CategoryInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	SortOrder   int     `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// PaperTypeInput creates or replaces a paper type.
type PaperTypeInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// ProductInput creates or replaces a product.
type ProductInput struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	SKU          *string         `json:"sku"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	CategoryID   *string         `json:"category_id"`
	PaperTypeID  *string         `json:"paper_type_id"`
	ImageURL     *string         `json:"image_url"`
	RollWidthCM  *int            `json:"roll_width_cm"`
	RollLengthCM *int            `json:"roll_length_cm"`
	IsActive     *bool           `json:"is_active"`
}

// CatalogService manages categories, paper types and products.
type CatalogService interface {
	ListCategories(ctx context.Context, onlyActive bool) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	// GetCategoryBySlug returns active categories only.
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, in CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListPaperTypes(ctx context.Context, onlyActive bool) ([]model.PaperType, error)
	GetPaperType(ctx context.Context, id string) (*model.PaperType, error)
	CreatePaperType(ctx context.Context, in PaperTypeInput) (*model.PaperType, error)
	UpdatePaperType(ctx context.Context, id string, in PaperTypeInput) (*model.PaperType, error)
	DeletePaperType(ctx context.Context, id string) error

	ListProducts(ctx context.Context, f model.ProductFilter) (*ListResult[model.Product], error)
	// GetProduct accepts a UUID or a slug. Storefront callers pass onlyActive.
	GetProduct(ctx context.Context, idOrSlug string, onlyActive bool) (*model.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// Close stops the list cache sweepers.
	Close()
}

const (
	defaultProductLimit = 12
	maxProductLimit     = 100
)

type catalogService struct {
	categories repository.CategoryRepository
	paperTypes repository.PaperTypeRepository
	products   repository.ProductRepository

	categoryCache  *cache.TTLCache[bool, []model.Category]
	paperTypeCache *cache.TTLCache[bool, []model.PaperType]
}

// NewCatalogService caches category and paper type lists for ttl.
func NewCatalogService(categories repository.CategoryRepository, paperTypes repository.PaperTypeRepository, products repository.ProductRepository, ttl time.Duration) CatalogService {
	return &catalogService{
		categories:     categories,
		paperTypes:     paperTypes,
		products:       products,
		categoryCache:  cache.New[bool, []model.Category](ttl, 5*time.Minute),
		paperTypeCache: cache.New[bool, []model.PaperType](ttl, 5*time.Minute),
	}
}

func (s *catalogService) Close() {
	s.categoryCache.Close()
	s.paperTypeCache.Close()
}

// ---- categories ----

func (s *catalogService) ListCategories(ctx context.Context, onlyActive bool) ([]model.Category, error) {
	return s.categoryCache.GetOrLoad(onlyActive, func() ([]model.Category, error) {
		return s.categories.List(ctx, onlyActive)
	})
}

func (s *catalogService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if !c.IsActive {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *catalogService) categoryFromInput(in CategoryInput) (*model.Category, error) {
	name, err := requireText("name", in.Name, 120)
	if err != nil {
		return nil, err
	}
	sl, err := makeSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	return &model.Category{
		Name:        name,
		Slug:        sl,
		Description: optionalText(in.Description),
		ImageURL:    optionalText(in.ImageURL),
		SortOrder:   in.SortOrder,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	c, err := s.categoryFromInput(in)
	if err != nil {
		return nil, err
	}
	out, err := s.categories.Create(ctx, c)
	if err != nil {
		return nil, slugConflict(err)
	}
	s.categoryCache.Clear()
	return out, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*model.Category, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.categoryFromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	out, err := s.categories.Update(ctx, c)
	if err != nil {
		return nil, slugConflict(err)
	}
	s.categoryCache.Clear()
	return out, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.categoryCache.Clear()
	return nil
}

// ---- paper types ----

func (s *catalogService) ListPaperTypes(ctx context.Context, onlyActive bool) ([]model.PaperType, error) {
	return s.paperTypeCache.GetOrLoad(onlyActive, func() ([]model.PaperType, error) {
		return s.paperTypes.List(ctx, onlyActive)
	})
}

func (s *catalogService) GetPaperType(ctx context.Context, id string) (*model.PaperType, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.paperTypes.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func paperTypeFromInput(in PaperTypeInput) (*model.PaperType, error) {
	name, err := requireText("name", in.Name, 120)
	if err != nil {
		return nil, err
	}
	sl, err := makeSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	return &model.PaperType{
		Name:        name,
		Slug:        sl,
		Description: optionalText(in.Description),
		IsActive:    in.IsActive == nil || *in.IsActive,
	}, nil
}

func (s *catalogService) CreatePaperType(ctx context.Context, in PaperTypeInput) (*model.PaperType, error) {
	p, err := paperTypeFromInput(in)
	if err != nil {
		return nil, err
	}
	out, err := s.paperTypes.Create(ctx, p)
	if err != nil {
		return nil, slugConflict(err)
	}
	s.paperTypeCache.Clear()
	return out, nil
}

func (s *catalogService) UpdatePaperType(ctx context.Context, id string, in PaperTypeInput) (*model.PaperType, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := paperTypeFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	out, err := s.paperTypes.Update(ctx, p)
	if err != nil {
		return nil, slugConflict(err)
	}
	s.paperTypeCache.Clear()
	return out, nil
}

func (s *catalogService) DeletePaperType(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.paperTypes.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.paperTypeCache.Clear()
	return nil
}

// ---- products ----

func (s *catalogService) ListProducts(ctx context.Context, f model.ProductFilter) (*ListResult[model.Product], error) {
	switch f.Sort {
	case "":
		f.Sort = model.SortNewest
	case model.SortNewest, model.SortPriceAsc, model.SortPriceDesc, model.SortName:
	default:
		return nil, invalid("sort", ReasonInvalid)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, invalid("min_price", ReasonOutOfRange)
	}
	pq := page(f.Limit, f.Offset, defaultProductLimit, maxProductLimit)
	f.Limit, f.Offset = pq.Limit, pq.Offset
	f.Search = strings.TrimSpace(f.Search)

	res, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Product]{Items: res.Items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, idOrSlug string, onlyActive bool) (*model.Product, error) {
	if idOrSlug == "" {
		return nil, ErrIDRequired
	}
	var (
		p   *model.Product
		err error
	)
	if _, perr := uuid.Parse(idOrSlug); perr == nil {
		p, err = s.products.FindByID(ctx, idOrSlug)
	} else {
		p, err = s.products.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, notFound(err)
	}
	if onlyActive && !p.IsActive {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *catalogService) productFromInput(ctx context.Context, in ProductInput) (*model.Product, error) {
	name, err := requireText("name", in.Name, 200)
	if err != nil {
		return nil, err
	}
	sl, err := makeSlug(in.Slug, name)
	if err != nil {
		return nil, err
	}
	if !in.Price.IsPositive() {
		return nil, invalid("price", ReasonOutOfRange)
	}
	if in.Stock < 0 {
		return nil, invalid("stock", ReasonOutOfRange)
	}
	if in.RollWidthCM != nil && *in.RollWidthCM <= 0 {
		return nil, invalid("roll_width_cm", ReasonOutOfRange)
	}
	if in.RollLengthCM != nil && *in.RollLengthCM <= 0 {
		return nil, invalid("roll_length_cm", ReasonOutOfRange)
	}

	categoryID := optionalText(in.CategoryID)
	if categoryID != nil {
		if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
			if errors.Is(notFound(err), ErrNotFound) {
				return nil, invalid("category_id", ReasonInvalid)
			}
			return nil, err
		}
	}
	paperTypeID := optionalText(in.PaperTypeID)
	if paperTypeID != nil {
		if _, err := s.paperTypes.FindByID(ctx, *paperTypeID); err != nil {
			if errors.Is(notFound(err), ErrNotFound) {
				return nil, invalid("paper_type_id", ReasonInvalid)
			}
			return nil, err
		}
	}

	return &model.Product{
		Name:         name,
		Slug:         sl,
		SKU:          optionalText(in.SKU),
		Description:  optionalText(in.Description),
		Price:        in.Price.Round(2),
		Stock:        in.Stock,
		CategoryID:   categoryID,
		PaperTypeID:  paperTypeID,
		ImageURL:     optionalText(in.ImageURL),
		RollWidthCM:  in.RollWidthCM,
		RollLengthCM: in.RollLengthCM,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	p, err := s.productFromInput(ctx, in)
	if err != nil {
		return nil, err
	}
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, slugConflict(err)
	}
	return s.reloadProduct(ctx, created), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.productFromInput(ctx, in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	updated, err := s.products.Update(ctx, p)
	if err != nil {
		return nil, slugConflict(err)
	}
	return s.reloadProduct(ctx, updated), nil
}

// reloadProduct fetches the joined category and paper type names after a write.
// The written row is returned as-is if the reload fails.
func (s *catalogService) reloadProduct(ctx context.Context, p *model.Product) *model.Product {
	full, err := s.products.FindByID(ctx, p.ID)
	if err != nil {
		return p
	}
	return full
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.products.Delete(ctx, id))
}

// makeSlug validates an explicit slug or derives one from name.
func makeSlug(explicit, name string) (string, error) {
	src := strings.TrimSpace(explicit)
	if src == "" {
		src = name
	}
	sl := slug.Make(src)
	if sl == "" {
		return "", invalid("slug", ReasonInvalid)
	}
	return sl, nil
}

func slugConflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrSlugTaken
	}
	return notFound(err)
}
