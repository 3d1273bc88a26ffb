package models

import "time"

// Driver is a seeded reference document describing one driver on the 2026 grid.
// Immutable during normal operation; only the portrait URL is touched by the
// out-of-band illustration job.
type Driver struct {
	ID          string     `bson:"_id" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Code        string     `bson:"code" json:"code"` // three-letter driver code, e.g. "VER"
	Number      int        `bson:"number" json:"number"`
	Nationality string     `bson:"nationality" json:"nationality"`
	TeamID      string     `bson:"teamId" json:"team_id"`
	AccentColor string     `bson:"accentColor" json:"accent_color"`
	PortraitURL string     `bson:"portraitUrl,omitempty" json:"portrait_url,omitempty"`
	UpdatedAt   *time.Time `bson:"updatedAt,omitempty" json:"updated_at,omitempty"`
}

// Team is a seeded reference document for one constructor.
type Team struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Base        string `bson:"base" json:"base"`
	AccentColor string `bson:"accentColor" json:"accent_color"`
}

// Race is a seeded reference document for one round of the season calendar.
// Rounds are 1..N, unique and contiguous within a season.
type Race struct {
	ID      string    `bson:"_id" json:"id"`
	Season  int       `bson:"season" json:"season"`
	Round   int       `bson:"round" json:"round"`
	Name    string    `bson:"name" json:"name"`
	Circuit string    `bson:"circuit" json:"circuit"`
	Country string    `bson:"country" json:"country"`
	Date    time.Time `bson:"date" json:"date"` // race day, UTC midnight
}
