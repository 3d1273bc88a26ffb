package handlers

import (
	"log"

	"pitwall/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler exposes profile endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile responds to GET /api/user/profile, creating the profile on first
// authenticated touch.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	name, _ := c.Locals("user_name").(string)
	email, _ := c.Locals("user_email").(string)

	profile, err := h.userService.EnsureProfile(c.Context(), userID, name, email)
	if err != nil {
		log.Printf("⚠️  Failed to load profile for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load profile",
		})
	}

	return c.JSON(profile)
}

type favouriteDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// SetFavouriteDriver responds to PUT /api/user/favourite-driver.
func (h *UserHandler) SetFavouriteDriver(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req favouriteDriverRequest
	if err := c.BodyParser(&req); err != nil || req.DriverID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "driver_id is required",
		})
	}

	if err := h.userService.SetFavouriteDriver(c.Context(), userID, req.DriverID); err != nil {
		log.Printf("⚠️  Failed to set favourite driver for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update favourite driver",
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
