package services

import (
	"context"
	"fmt"
	"time"

	"pitwall/internal/database"
	"pitwall/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PredictionService manages race-winner picks. Uniqueness per user and race is
// not enforced: a re-submission appends another record and the read path takes
// the earliest match.
type PredictionService struct {
	predictions *mongo.Collection
}

// NewPredictionService creates a new prediction service
func NewPredictionService(db *database.MongoDB) *PredictionService {
	return &PredictionService{predictions: db.Collection(database.CollectionPredictions)}
}

// Create stores a winner pick for a race.
func (s *PredictionService) Create(ctx context.Context, userID, authorName, raceID, raceName, winner string) (*models.Prediction, error) {
	if winner == "" {
		return nil, fmt.Errorf("predicted winner is required")
	}

	prediction := &models.Prediction{
		ID:         uuid.NewString(),
		UserID:     userID,
		AuthorName: authorName,
		RaceID:     raceID,
		RaceName:   raceName,
		Winner:     winner,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := s.predictions.InsertOne(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to insert prediction: %w", err)
	}

	return prediction, nil
}

// ForUserAndRace returns the user's active pick for a race (first match by
// creation time), or nil when the user has not picked.
func (s *PredictionService) ForUserAndRace(ctx context.Context, userID, raceID string) (*models.Prediction, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	var prediction models.Prediction
	err := s.predictions.FindOne(ctx, bson.M{"userId": userID, "raceId": raceID}, opts).Decode(&prediction)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}

	return &prediction, nil
}

// ListByRace returns all picks for a race, oldest first.
func (s *PredictionService) ListByRace(ctx context.Context, raceID string) ([]models.Prediction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.predictions.Find(ctx, bson.M{"raceId": raceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer cursor.Close(ctx)

	predictions := []models.Prediction{}
	if err := cursor.All(ctx, &predictions); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}

	return predictions, nil
}
