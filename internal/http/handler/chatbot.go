package handler

import (
	"github.com/gofiber/fiber/v2"

	"wallapi/internal/http/middleware"
	"wallapi/internal/service"
)

// SendChatMessage stores the visitor's message and returns the assistant reply.
//
// @Summary Send a chatbot message
// @Tags chatbot
// @Accept json
// @Produce json
// @Param body body service.ChatInput true "Session and message"
// @Success 200 {object} service.ChatReply
// @Failure 400 {object} errorPayload
// @Router /api/chatbot/messages [post]
func SendChatMessage(svc service.ChatbotService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ChatInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		var userID *string
		if id := middleware.UserID(c); id != "" {
			userID = &id
		}
		reply, err := svc.Send(c.UserContext(), userID, in, middleware.Lang(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(reply)
	}
}

func ListConversations(svc service.ChatbotService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pagination(c)
		if !ok {
			return err
		}
		res, err := svc.ListConversations(c.UserContext(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

func GetConversation(svc service.ChatbotService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		conv, err := svc.GetConversation(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(conv)
	}
}

func DeleteConversation(svc service.ChatbotService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := paramID(c)
		if !ok {
			return err
		}
		if err := svc.DeleteConversation(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
