package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products on the storefront (e.g. "Çocuk Odası").
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PaperType is the wallpaper material (vinyl, non-woven, ...).
type PaperType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a sellable wallpaper roll.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	SKU           *string         `json:"sku,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	CategoryID    *string         `json:"category_id,omitempty"`
	CategoryName  *string         `json:"category_name,omitempty"`
	PaperTypeID   *string         `json:"paper_type_id,omitempty"`
	PaperTypeName *string         `json:"paper_type_name,omitempty"`
	ImageURL      *string         `json:"image_url,omitempty"`
	RollWidthCM   *int            `json:"roll_width_cm,omitempty"`
	RollLengthCM  *int            `json:"roll_length_cm,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Product list sort orders.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// ProductFilter narrows storefront and admin product listings.
type ProductFilter struct {
	CategorySlug  string
	PaperTypeSlug string
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	OnlyActive    bool
	Sort          string
	Limit         int
	Offset        int
}
