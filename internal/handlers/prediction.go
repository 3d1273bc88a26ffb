package handlers

import (
	"log"

	"pitwall/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PredictionHandler exposes race-winner pick endpoints.
type PredictionHandler struct {
	predictionService *services.PredictionService
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionService *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

type createPredictionRequest struct {
	RaceID   string `json:"race_id"`
	RaceName string `json:"race_name"`
	Winner   string `json:"winner"`
}

// Create responds to POST /api/predictions.
func (h *PredictionHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req createPredictionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.RaceID == "" || req.Winner == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "race_id and winner are required",
		})
	}

	authorName, _ := c.Locals("user_name").(string)

	prediction, err := h.predictionService.Create(c.Context(), userID, authorName, req.RaceID, req.RaceName, req.Winner)
	if err != nil {
		log.Printf("⚠️  Failed to create prediction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create prediction",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(prediction)
}

// Mine responds to GET /api/races/:raceId/prediction with the caller's active
// pick (first match), or 404 when none exists.
func (h *PredictionHandler) Mine(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	raceID := c.Params("raceId")
	prediction, err := h.predictionService.ForUserAndRace(c.Context(), userID, raceID)
	if err != nil {
		log.Printf("⚠️  Failed to load prediction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load prediction",
		})
	}
	if prediction == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No prediction for this race",
		})
	}

	return c.JSON(prediction)
}

// List responds to GET /api/races/:raceId/predictions, oldest first.
func (h *PredictionHandler) List(c *fiber.Ctx) error {
	raceID := c.Params("raceId")
	predictions, err := h.predictionService.ListByRace(c.Context(), raceID)
	if err != nil {
		log.Printf("⚠️  Failed to list predictions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load predictions",
		})
	}

	return c.JSON(predictions)
}
