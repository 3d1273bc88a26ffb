package handlers

import (
	"errors"
	"log"

	"pitwall/internal/models"
	"pitwall/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler exposes the chat proxy endpoint.
type ChatHandler struct {
	chatService *services.ChatService
	userService *services.UserService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService, userService *services.UserService) *ChatHandler {
	return &ChatHandler{chatService: chatService, userService: userService}
}

// Ask responds to POST /api/chat. Auth runs in middleware, so an invalid
// credential is rejected before the model is ever called.
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// First authenticated touch creates the profile.
	if h.userService != nil {
		name, _ := c.Locals("user_name").(string)
		email, _ := c.Locals("user_email").(string)
		if _, err := h.userService.EnsureProfile(c.Context(), userID, name, email); err != nil {
			log.Printf("⚠️  [CHAT] Failed to ensure profile for %s: %v", userID, err)
		}
	}

	response, err := h.chatService.Ask(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyConversation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Conversation must contain at least one message",
			})
		case errors.Is(err, services.ErrRateLimited):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, slow down",
			})
		default:
			log.Printf("❌ [CHAT] Upstream failure for %s: %v", userID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Assistant is unavailable, please try again",
			})
		}
	}

	return c.JSON(response)
}
