package models

import "time"

// MaxTranscriptTurns bounds the recent chat transcript stored on a profile.
const MaxTranscriptTurns = 20

// MaxMemoryFacts bounds the long-term memory fact list stored on a profile.
const MaxMemoryFacts = 50

// TranscriptTurn is one stored chat turn on a user profile.
type TranscriptTurn struct {
	Role      string    `bson:"role" json:"role"` // "user" or "assistant"
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// UserProfile is the per-user document, created on first authenticated touch
// and merge-updated afterwards.
type UserProfile struct {
	ID               string           `bson:"_id" json:"id"` // auth identity (JWT subject)
	DisplayName      string           `bson:"displayName" json:"display_name"`
	Email            string           `bson:"email" json:"email"`
	AvatarURL        string           `bson:"avatarUrl,omitempty" json:"avatar_url,omitempty"`
	FavouriteDriver  string           `bson:"favouriteDriver,omitempty" json:"favourite_driver,omitempty"` // Driver.ID
	MemoryFacts      []string         `bson:"memoryFacts,omitempty" json:"memory_facts,omitempty"`
	RecentTranscript []TranscriptTurn `bson:"recentTranscript,omitempty" json:"recent_transcript,omitempty"`
	CreatedAt        time.Time        `bson:"createdAt" json:"created_at"`
	UpdatedAt        time.Time        `bson:"updatedAt" json:"updated_at"`
}
