package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Comment length bounds in characters.
const (
	CommentMinLen = 1
	CommentMaxLen = 500
)

// ErrInvalidCommentText is returned when a comment body is empty or too long.
var ErrInvalidCommentText = errors.New("comment text must be 1-500 characters")

// Comment is an append-only user comment attached to a race.
type Comment struct {
	ID         string    `bson:"_id" json:"id"`
	RaceID     string    `bson:"raceId" json:"race_id"`
	UserID     string    `bson:"userId" json:"user_id"`
	AuthorName string    `bson:"authorName" json:"author_name"`
	AvatarURL  string    `bson:"avatarUrl,omitempty" json:"avatar_url,omitempty"`
	Text       string    `bson:"text" json:"text"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
}

// ValidateCommentText checks the comment body against the length bounds.
func ValidateCommentText(text string) error {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	if n < CommentMinLen || n > CommentMaxLen {
		return ErrInvalidCommentText
	}
	return nil
}

// Prediction is a user's race-winner pick. Re-submission appends another
// record; readers take the first match per user and race.
type Prediction struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"userId" json:"user_id"`
	AuthorName string    `bson:"authorName" json:"author_name"`
	RaceID     string    `bson:"raceId" json:"race_id"`
	RaceName   string    `bson:"raceName" json:"race_name"`
	Winner     string    `bson:"winner" json:"winner"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
}
