package handlers

import (
	"log"

	"pitwall/internal/jobs"

	"github.com/gofiber/fiber/v2"
)

// SyncHandler lets admins re-run the data sync on demand. It reuses the
// scheduled job's logic unchanged.
type SyncHandler struct {
	job *jobs.F1SyncJob
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(job *jobs.F1SyncJob) *SyncHandler {
	return &SyncHandler{job: job}
}

// Trigger responds to POST /api/admin/sync.
func (h *SyncHandler) Trigger(c *fiber.Ctx) error {
	if err := h.job.Run(c.Context()); err != nil {
		log.Printf("❌ [SYNC] Manual run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Sync failed",
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
