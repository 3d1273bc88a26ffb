package handlers

import (
	"encoding/json"
	"log"

	"pitwall/internal/database"
	"pitwall/internal/models"
	"pitwall/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReferenceHandler serves the read-only reference and derived data: drivers,
// teams, races, race results and standings snapshots. Reads go through the
// layered cache; the sync job invalidates derived keys after each commit.
type ReferenceHandler struct {
	db    *database.MongoDB
	cache *services.CacheService
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(db *database.MongoDB, cache *services.CacheService) *ReferenceHandler {
	return &ReferenceHandler{db: db, cache: cache}
}

// ListDrivers responds to GET /api/drivers.
func (h *ReferenceHandler) ListDrivers(c *fiber.Ctx) error {
	return h.listCached(c, database.CollectionDrivers, services.CacheKeyReference+"drivers",
		bson.D{{Key: "number", Value: 1}}, &[]models.Driver{})
}

// ListTeams responds to GET /api/teams.
func (h *ReferenceHandler) ListTeams(c *fiber.Ctx) error {
	return h.listCached(c, database.CollectionTeams, services.CacheKeyReference+"teams",
		bson.D{{Key: "name", Value: 1}}, &[]models.Team{})
}

// ListRaces responds to GET /api/races.
func (h *ReferenceHandler) ListRaces(c *fiber.Ctx) error {
	return h.listCached(c, database.CollectionRaces, services.CacheKeyReference+"races",
		bson.D{{Key: "round", Value: 1}}, &[]models.Race{})
}

// GetResult responds to GET /api/results/:key where key is the canonical
// "{season}_{round:02d}" encoding.
func (h *ReferenceHandler) GetResult(c *fiber.Ctx) error {
	key, err := models.ParseResultKey(c.Params("key"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid result key",
		})
	}

	var result models.RaceResult
	return h.getCached(c, database.CollectionResults, key.String(),
		services.CacheKeyResults+key.String(), &result)
}

// GetStandings responds to GET /api/standings/:kind where kind is "drivers"
// or "constructors".
func (h *ReferenceHandler) GetStandings(c *fiber.Ctx) error {
	kind := c.Params("kind")
	if kind != models.StandingsDrivers && kind != models.StandingsConstructors {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Standings kind must be 'drivers' or 'constructors'",
		})
	}

	var snapshot models.StandingsSnapshot
	return h.getCached(c, database.CollectionStandings, kind,
		services.CacheKeyStandings+kind, &snapshot)
}

func (h *ReferenceHandler) listCached(c *fiber.Ctx, collection, cacheKey string, sort bson.D, out interface{}) error {
	if cached, found := h.cache.Get(c.Context(), cacheKey); found {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	cursor, err := h.db.Collection(collection).Find(c.Context(), bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		log.Printf("⚠️  Failed to list %s: %v", collection, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load data",
		})
	}
	defer cursor.Close(c.Context())

	if err := cursor.All(c.Context(), out); err != nil {
		log.Printf("⚠️  Failed to decode %s: %v", collection, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load data",
		})
	}

	h.cacheAndSend(c, cacheKey, out)
	return nil
}

func (h *ReferenceHandler) getCached(c *fiber.Ctx, collection, id, cacheKey string, out interface{}) error {
	if cached, found := h.cache.Get(c.Context(), cacheKey); found {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	err := h.db.Collection(collection).FindOne(c.Context(), bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}
	if err != nil {
		log.Printf("⚠️  Failed to load %s/%s: %v", collection, id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load data",
		})
	}

	h.cacheAndSend(c, cacheKey, out)
	return nil
}

func (h *ReferenceHandler) cacheAndSend(c *fiber.Ctx, cacheKey string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		// Fall back to Fiber's own serialization.
		_ = c.JSON(payload)
		return
	}

	h.cache.Set(c.Context(), cacheKey, string(body))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	_ = c.Send(body)
}
