package handlers

import (
	"errors"
	"log"

	"pitwall/internal/models"
	"pitwall/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CommentHandler exposes race comment endpoints.
type CommentHandler struct {
	commentService *services.CommentService
	userService    *services.UserService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *services.CommentService, userService *services.UserService) *CommentHandler {
	return &CommentHandler{commentService: commentService, userService: userService}
}

type createCommentRequest struct {
	Text string `json:"text"`
}

// Create responds to POST /api/races/:raceId/comments. The author identity is
// taken from the verified token, never from the body.
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	raceID := c.Params("raceId")
	if raceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Race id is required",
		})
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	authorName, _ := c.Locals("user_name").(string)
	avatarURL := h.avatarFor(c, userID)

	comment, err := h.commentService.Create(c.Context(), raceID, userID, authorName, avatarURL, req.Text)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCommentText) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Comment text must be 1-500 characters",
			})
		}
		log.Printf("⚠️  Failed to create comment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create comment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// List responds to GET /api/races/:raceId/comments, oldest first.
func (h *CommentHandler) List(c *fiber.Ctx) error {
	raceID := c.Params("raceId")
	if raceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Race id is required",
		})
	}

	comments, err := h.commentService.ListByRace(c.Context(), raceID)
	if err != nil {
		log.Printf("⚠️  Failed to list comments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load comments",
		})
	}

	return c.JSON(comments)
}

func (h *CommentHandler) avatarFor(c *fiber.Ctx, userID string) string {
	if h.userService == nil {
		return ""
	}
	profile, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil || profile == nil {
		return ""
	}
	return profile.AvatarURL
}
