package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"wallapi/internal/model"
	"wallapi/internal/service"
)

// ListCategories returns active categories for the storefront, or every
// category when all is set (admin routes).
//
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} model.Category
// @Router /api/categories [get]
func ListCategories(svc service.CatalogService, all bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListCategories(c.UserContext(), !all)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

func GetCategoryBySlug(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := svc.GetCategoryBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cat)
	}
}

func GetCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		cat, err := svc.GetCategory(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cat)
	}
}

func CreateCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CategoryInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		cat, err := svc.CreateCategory(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

func UpdateCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		var in service.CategoryInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		cat, err := svc.UpdateCategory(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cat)
	}
}

func DeleteCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		if err := svc.DeleteCategory(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListPaperTypes mirrors ListCategories.
//
// @Summary List paper types
// @Tags catalog
// @Produce json
// @Success 200 {array} model.PaperType
// @Router /api/paper-types [get]
func ListPaperTypes(svc service.CatalogService, all bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListPaperTypes(c.UserContext(), !all)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

func GetPaperType(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		pt, err := svc.GetPaperType(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pt)
	}
}

func CreatePaperType(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PaperTypeInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		pt, err := svc.CreatePaperType(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(pt)
	}
}

func UpdatePaperType(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		var in service.PaperTypeInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		pt, err := svc.UpdatePaperType(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pt)
	}
}

func DeletePaperType(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		if err := svc.DeletePaperType(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListProducts serves the storefront grid and the admin product table.
//
// @Summary List products
// @Tags catalog
// @Produce json
// @Param category query string false "Category slug"
// @Param paper_type query string false "Paper type slug"
// @Param q query string false "Search text"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param sort query string false "newest, price_asc, price_desc or name"
// @Param limit query int false "Page size (default 12, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.ListResult[model.Product]
// @Failure 400 {object} errorPayload
// @Router /api/products [get]
func ListProducts(svc service.CatalogService, all bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pagination(c)
		if !ok {
			return err
		}
		f := model.ProductFilter{
			CategorySlug:  c.Query("category"),
			PaperTypeSlug: c.Query("paper_type"),
			Search:        c.Query("q"),
			OnlyActive:    !all,
			Sort:          c.Query("sort"),
			Limit:         limit,
			Offset:        offset,
		}
		if f.MinPrice, ok, err = queryDecimal(c, "min_price"); !ok {
			return err
		}
		if f.MaxPrice, ok, err = queryDecimal(c, "max_price"); !ok {
			return err
		}
		res, err := svc.ListProducts(c.UserContext(), f)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// GetProduct resolves :idOrSlug. Inactive products are hidden from the storefront.
//
// @Summary Get a product by id or slug
// @Tags catalog
// @Produce json
// @Param idOrSlug path string true "Product UUID or slug"
// @Success 200 {object} model.Product
// @Failure 404 {object} errorPayload
// @Router /api/products/{idOrSlug} [get]
func GetProduct(svc service.CatalogService, all bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("idOrSlug")
		if key == "" {
			key = c.Params("id")
		}
		p, err := svc.GetProduct(c.UserContext(), key, !all)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

func CreateProduct(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ProductInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		p, err := svc.CreateProduct(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

func UpdateProduct(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		var in service.ProductInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		p, err := svc.UpdateProduct(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

func DeleteProduct(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		if err := svc.DeleteProduct(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func queryDecimal(c *fiber.Ctx, name string) (*decimal.Decimal, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, false, respondError(c, &service.ValidationError{Field: name, Reason: service.ReasonInvalid})
	}
	return &d, true, nil
}
