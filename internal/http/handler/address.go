package handler

import (
	"github.com/gofiber/fiber/v2"

	"wallapi/internal/http/middleware"
	"wallapi/internal/service"
)

func ListAddresses(svc service.AddressService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

func CreateAddress(svc service.AddressService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.AddressInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		a, err := svc.Create(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

func UpdateAddress(svc service.AddressService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		var in service.AddressInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		a, err := svc.Update(c.UserContext(), middleware.UserID(c), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(a)
	}
}

func DeleteAddress(svc service.AddressService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SetDefaultAddress clears the default flag on the customer's other addresses.
func SetDefaultAddress(svc service.AddressService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		if err := svc.SetDefault(c.UserContext(), middleware.UserID(c), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
