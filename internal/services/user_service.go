package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"pitwall/internal/database"
	"pitwall/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserService manages user profiles: creation on first sign-in, favourite
// driver, long-term memory facts and the bounded chat transcript.
type UserService struct {
	users *mongo.Collection
}

// NewUserService creates a new user service
func NewUserService(db *database.MongoDB) *UserService {
	return &UserService{users: db.Collection(database.CollectionUsers)}
}

// EnsureProfile creates the profile on first authenticated touch and refreshes
// mutable identity fields afterwards.
func (s *UserService) EnsureProfile(ctx context.Context, userID, displayName, email string) (*models.UserProfile, error) {
	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"displayName": displayName,
			"email":       email,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var profile models.UserProfile
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&profile)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile for %s: %w", userID, err)
	}

	return &profile, nil
}

// GetProfile returns the profile for userID, or nil when none exists.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}
	return &profile, nil
}

// SetFavouriteDriver records the user's favourite driver reference.
func (s *UserService) SetFavouriteDriver(ctx context.Context, userID, driverID string) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"favouriteDriver": driverID,
			"updatedAt":       time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set favourite driver for %s: %w", userID, err)
	}
	return nil
}

// AddFacts merges newly learned facts onto the profile, deduplicated and
// capped. Best effort: callers must not fail a chat reply on an error here.
func (s *UserService) AddFacts(ctx context.Context, userID string, facts []string) error {
	if len(facts) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(facts))
	for _, fact := range facts {
		values = append(values, fact)
	}

	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"memoryFacts": bson.M{"$each": values}},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add facts for %s: %w", userID, err)
	}

	// Trim the fact list back to the cap, oldest first.
	_, err = s.users.UpdateOne(ctx,
		bson.M{"_id": userID, fmt.Sprintf("memoryFacts.%d", models.MaxMemoryFacts): bson.M{"$exists": true}},
		bson.M{"$push": bson.M{"memoryFacts": bson.M{
			"$each":  bson.A{},
			"$slice": -models.MaxMemoryFacts,
		}}},
	)
	if err != nil {
		log.Printf("⚠️  [USER] Failed to trim facts for %s: %v", userID, err)
	}

	return nil
}

// AppendTranscript appends chat turns to the rolling transcript, keeping only
// the most recent models.MaxTranscriptTurns entries.
func (s *UserService) AppendTranscript(ctx context.Context, userID string, turns []models.TranscriptTurn) error {
	if len(turns) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		values = append(values, turn)
	}

	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"recentTranscript": bson.M{
				"$each":  values,
				"$slice": -models.MaxTranscriptTurns,
			}},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append transcript for %s: %w", userID, err)
	}
	return nil
}

// Context returns the personalization hints (facts + favourite driver) for a
// chat request. A missing profile yields an empty context.
func (s *UserService) Context(ctx context.Context, userID string) (*models.ChatUserContext, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &models.ChatUserContext{}, nil
	}

	return &models.ChatUserContext{
		Facts:           profile.MemoryFacts,
		FavouriteDriver: profile.FavouriteDriver,
	}, nil
}
