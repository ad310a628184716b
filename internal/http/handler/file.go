package handler

import (
	"github.com/gofiber/fiber/v2"

	"wallapi/internal/service"
)

type mkdirRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type pathRequest struct {
	Path string `json:"path"`
}

// ListFiles lists one directory of the uploads tree. ?path= is relative to
// the uploads root; empty means the root.
//
// @Summary List uploaded files
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param path query string false "Directory relative to the uploads root"
// @Success 200 {array} model.FileEntry
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/files/list [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), c.Query("path"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"path": c.Query("path"), "data": items})
	}
}

func Mkdir(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req mkdirRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		entry, err := svc.Mkdir(c.UserContext(), req.Path, req.Name)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// DeleteFile removes a file or a whole directory. The path comes from the
// JSON body or, for DELETE requests without one, from ?path=.
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pathRequest
		if len(c.Body()) > 0 {
			if err := parseBody(c, &req); err != nil {
				return err
			}
		}
		if req.Path == "" {
			req.Path = c.Query("path")
		}
		if err := svc.Delete(c.UserContext(), req.Path); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadFile accepts multipart/form-data with a "file" part and an optional
// "path" target directory.
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeFieldError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file", "validation.required", "field", "file")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "error.bad_request")
		}
		defer f.Close()

		entry, err := svc.Upload(c.UserContext(), c.FormValue("path"), fh.Filename, fh.Size, f)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}
