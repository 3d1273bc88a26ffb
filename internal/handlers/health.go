package handlers

import (
	"time"

	"pitwall/internal/database"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	db *database.MongoDB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.MongoDB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Handle responds to GET /health.
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	status := "healthy"
	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			status = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
