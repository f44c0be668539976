package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/middleware"
	"github.com/okaz-app/okaz-backend/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	message, err := h.chatService.Send(c.Context(), user, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrAnnouncementNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// Conversation pages through the messages between the caller and another
// user.
func (h *ChatHandler) Conversation(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	otherID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	page, err := h.chatService.Conversation(user.ID, otherID, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	otherID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	if err := h.chatService.MarkRead(user.ID, otherID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "conversation marked read"})
}

func (h *ChatHandler) MarkDelivered(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	message, err := h.chatService.MarkDelivered(user.ID, id)
	if err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(message)
}
