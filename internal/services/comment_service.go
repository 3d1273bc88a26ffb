package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pitwall/internal/database"
	"pitwall/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentService manages race comments. Comments are append-only; the author
// identity always comes from the verified token, never from the request body.
type CommentService struct {
	comments *mongo.Collection
}

// NewCommentService creates a new comment service
func NewCommentService(db *database.MongoDB) *CommentService {
	return &CommentService{comments: db.Collection(database.CollectionComments)}
}

// Create validates and stores a comment on a race.
func (s *CommentService) Create(ctx context.Context, raceID, userID, authorName, avatarURL, text string) (*models.Comment, error) {
	if err := models.ValidateCommentText(text); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:         uuid.NewString(),
		RaceID:     raceID,
		UserID:     userID,
		AuthorName: authorName,
		AvatarURL:  avatarURL,
		Text:       strings.TrimSpace(text),
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := s.comments.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	return comment, nil
}

// ListByRace returns all comments for a race, oldest first.
func (s *CommentService) ListByRace(ctx context.Context, raceID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.comments.Find(ctx, bson.M{"raceId": raceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	return comments, nil
}
