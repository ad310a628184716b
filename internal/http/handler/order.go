package handler

import (
	"github.com/gofiber/fiber/v2"

	"wallapi/internal/http/middleware"
	"wallapi/internal/service"
)

type statusRequest struct {
	Status string `json:"status"`
}

// Checkout places an order. Guests may check out; a signed-in customer's
// order is linked to the account and may use a saved address.
//
// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Param body body service.CheckoutInput true "Cart and contact details"
// @Success 201 {object} model.Order
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/orders [post]
func Checkout(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CheckoutInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		var userID *string
		if id := middleware.UserID(c); id != "" {
			userID = &id
		}
		o, err := svc.Checkout(c.UserContext(), userID, in, middleware.Lang(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(o)
	}
}

func ListMyOrders(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pagination(c)
		if !ok {
			return err
		}
		res, err := svc.ListMine(c.UserContext(), middleware.UserID(c), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

func GetMyOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		o, err := svc.GetMine(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(o)
	}
}

// TrackOrder looks an order up by number and the e-mail used at checkout.
//
// @Summary Track an order
// @Tags orders
// @Produce json
// @Param orderNumber path string true "Order number, e.g. DK-20240310-ABC234"
// @Param email query string true "Customer e-mail"
// @Success 200 {object} model.Order
// @Failure 404 {object} errorPayload
// @Router /api/orders/track/{orderNumber} [get]
func TrackOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		o, err := svc.Track(c.UserContext(), c.Params("orderNumber"), c.Query("email"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(o)
	}
}

func AdminListOrders(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pagination(c)
		if !ok {
			return err
		}
		res, err := svc.List(c.UserContext(), c.Query("status"), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

func AdminGetOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		o, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(o)
	}
}

func UpdateOrderStatus(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		var req statusRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		o, err := svc.UpdateStatus(c.UserContext(), id, req.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(o)
	}
}
