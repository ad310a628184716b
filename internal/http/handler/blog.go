package handler

import (
	"github.com/gofiber/fiber/v2"

	"wallapi/internal/service"
)

// ListBlogs lists published articles, or every article when all is set.
//
// @Summary List published blog posts
// @Tags blogs
// @Produce json
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.ListResult[model.Blog]
// @Router /api/blogs [get]
func ListBlogs(svc service.BlogService, all bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pagination(c)
		if !ok {
			return err
		}
		res, err := svc.List(c.UserContext(), !all, limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// GetBlogBySlug godoc
// @Summary Get a published blog post
// @Tags blogs
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} model.Blog
// @Failure 404 {object} errorPayload
// @Router /api/blogs/{slug} [get]
func GetBlogBySlug(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := svc.GetPublishedBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(b)
	}
}

func GetBlog(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		b, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(b)
	}
}

// CreateBlog stores the article; inline base64 images in its content are
// moved to blogsWall/{id}/ and replaced by their public URLs.
func CreateBlog(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.BlogInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		b, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

func UpdateBlog(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		var in service.BlogInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		b, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(b)
	}
}

func DeleteBlog(svc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
