package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapi/internal/model"
)

var productCols = []string{
	"id", "name", "slug", "sku", "description", "price", "stock",
	"category_id", "category_name", "paper_type_id", "paper_type_name",
	"image_url", "roll_width_cm", "roll_length_cm", "is_active", "created_at", "updated_at",
}

func productRow(rows *sqlmock.Rows, id, name, price string, stock int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, name, id+"-slug", nil, nil, price, stock,
		"c-1", "Çocuk Odası", nil, nil, nil, int64(53), int64(1000), true, now, now)
}

func TestProductWhere(t *testing.T) {
	minPrice := decimal.RequireFromString("100")
	where, args := productWhere(model.ProductFilter{
		OnlyActive:   true,
		CategorySlug: "cocuk-odasi",
		Search:       " çiçek ",
		MinPrice:     &minPrice,
	})

	assert.Equal(t,
		" WHERE p.is_active AND c.slug = $1 AND (p.name ILIKE $2 OR p.description ILIKE $2 OR p.sku ILIKE $2) AND p.price >= $3",
		where)
	assert.Equal(t, []any{"cocuk-odasi", "%çiçek%", minPrice}, args)

	where, args = productWhere(model.ProductFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestProductOrder(t *testing.T) {
	assert.Equal(t, "p.price ASC, p.id", productOrder(model.SortPriceAsc))
	assert.Equal(t, "p.price DESC, p.id", productOrder(model.SortPriceDesc))
	assert.Equal(t, "p.name ASC, p.id", productOrder(model.SortName))
	assert.Equal(t, "p.created_at DESC, p.id", productOrder("bogus"))
}

func TestProductPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProductPostgres(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products p`).
		WithArgs("vinil").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`ORDER BY p.price DESC, p.id LIMIT \$2 OFFSET \$3`).
		WithArgs("vinil", 2, 0).
		WillReturnRows(productRow(productRow(sqlmock.NewRows(productCols), "p-1", "Orman", "899.90", 4), "p-2", "Deniz", "450", 0))

	res, err := repo.List(context.Background(), model.ProductFilter{
		PaperTypeSlug: "vinil",
		Sort:          model.SortPriceDesc,
		Limit:         2,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.True(t, decimal.RequireFromString("899.90").Equal(res.Items[0].Price))
	assert.Equal(t, "Çocuk Odası", *res.Items[0].CategoryName)
	assert.Equal(t, 53, *res.Items[0].RollWidthCM)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_FindByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProductPostgres(db)

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	mock.ExpectQuery(`WHERE p.id IN \(\$1, \$2\)`).
		WithArgs("p-1", "p-2").
		WillReturnRows(productRow(sqlmock.NewRows(productCols), "p-1", "Orman", "10", 1))

	items, err := repo.FindByIDs(context.Background(), []string{"p-1", "p-2"})

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
