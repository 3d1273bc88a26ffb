package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"pitwall/internal/database"
	"pitwall/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// seedFile is the on-disk shape of the reference-data seed.
type seedFile struct {
	Season  int             `json:"season"`
	Teams   []models.Team   `json:"teams"`
	Drivers []models.Driver `json:"drivers"`
	Races   []seedRace      `json:"races"`
}

type seedRace struct {
	ID      string `json:"id"`
	Round   int    `json:"round"`
	Name    string `json:"name"`
	Circuit string `json:"circuit"`
	Country string `json:"country"`
	Date    string `json:"date"` // YYYY-MM-DD
}

// SeedService loads the season reference data (teams, drivers, races) from a
// JSON file and upserts it. Safe to run on every startup.
type SeedService struct {
	db *database.MongoDB
}

// NewSeedService creates a new seed service
func NewSeedService(db *database.MongoDB) *SeedService {
	return &SeedService{db: db}
}

// Run seeds the reference collections from filePath.
func (s *SeedService) Run(ctx context.Context, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed JSON: %w", err)
	}

	races, err := buildRaces(&seed)
	if err != nil {
		return err
	}

	for _, team := range seed.Teams {
		if err := s.upsert(ctx, database.CollectionTeams, team.ID, team); err != nil {
			return err
		}
	}
	for _, driver := range seed.Drivers {
		if err := s.upsert(ctx, database.CollectionDrivers, driver.ID, driver); err != nil {
			return err
		}
	}
	for _, race := range races {
		if err := s.upsert(ctx, database.CollectionRaces, race.ID, race); err != nil {
			return err
		}
	}

	log.Printf("✅ [SEED] Seeded %d teams, %d drivers, %d races for season %d",
		len(seed.Teams), len(seed.Drivers), len(races), seed.Season)

	return nil
}

// buildRaces validates the calendar: rounds must be unique and contiguous 1..N.
func buildRaces(seed *seedFile) ([]models.Race, error) {
	sorted := make([]seedRace, len(seed.Races))
	copy(sorted, seed.Races)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Round < sorted[j].Round })

	races := make([]models.Race, 0, len(sorted))
	for i, sr := range sorted {
		if sr.Round != i+1 {
			return nil, fmt.Errorf("seed races are not contiguous: expected round %d, got %d", i+1, sr.Round)
		}

		date, err := time.Parse("2006-01-02", sr.Date)
		if err != nil {
			return nil, fmt.Errorf("seed race %q has invalid date %q: %w", sr.ID, sr.Date, err)
		}

		races = append(races, models.Race{
			ID:      sr.ID,
			Season:  seed.Season,
			Round:   sr.Round,
			Name:    sr.Name,
			Circuit: sr.Circuit,
			Country: sr.Country,
			Date:    date,
		})
	}

	return races, nil
}

func (s *SeedService) upsert(ctx context.Context, collection, id string, document interface{}) error {
	doc, err := toSetDocument(document)
	if err != nil {
		return fmt.Errorf("failed to encode seed document %s/%s: %w", collection, id, err)
	}

	_, err = s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %s/%s: %w", collection, id, err)
	}
	return nil
}
