package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResultKey identifies a RaceResult document by season and round. The canonical
// string encoding is "{season}_{round:02d}" (e.g. "2026_05") and is the
// document _id in the results collection. Always go through String/ParseResultKey
// so the zero-padding never drifts between writers and readers.
type ResultKey struct {
	Season int
	Round  int
}

// String returns the canonical document id for the key.
func (k ResultKey) String() string {
	return fmt.Sprintf("%d_%02d", k.Season, k.Round)
}

// ParseResultKey decodes a canonical "{season}_{round:02d}" id.
func ParseResultKey(s string) (ResultKey, error) {
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 {
		return ResultKey{}, fmt.Errorf("invalid result key %q: expected season_round", s)
	}

	season, err := strconv.Atoi(parts[0])
	if err != nil || season <= 0 {
		return ResultKey{}, fmt.Errorf("invalid result key %q: bad season", s)
	}

	if len(parts[1]) != 2 {
		return ResultKey{}, fmt.Errorf("invalid result key %q: round must be zero-padded to 2 digits", s)
	}
	round, err := strconv.Atoi(parts[1])
	if err != nil || round <= 0 {
		return ResultKey{}, fmt.Errorf("invalid result key %q: bad round", s)
	}

	return ResultKey{Season: season, Round: round}, nil
}

// ResultRow is one driver's classified result within a race.
type ResultRow struct {
	Position    int     `bson:"position" json:"position"`
	DriverCode  string  `bson:"driverCode" json:"driver_code"`
	DriverName  string  `bson:"driverName" json:"driver_name"`
	Constructor string  `bson:"constructor" json:"constructor"`
	Grid        int     `bson:"grid" json:"grid"`
	Laps        int     `bson:"laps" json:"laps"`
	Status      string  `bson:"status,omitempty" json:"status,omitempty"`
	Points      float64 `bson:"points" json:"points"`
	Time        string  `bson:"time,omitempty" json:"time,omitempty"`
	FastestLap  string  `bson:"fastestLap,omitempty" json:"fastest_lap,omitempty"`
}

// RaceResult holds the full classification of one completed race. Written
// wholesale by the sync job; never partially updated.
type RaceResult struct {
	ID        string      `bson:"_id" json:"id"` // canonical ResultKey encoding
	Season    int         `bson:"season" json:"season"`
	Round     int         `bson:"round" json:"round"`
	RaceName  string      `bson:"raceName" json:"race_name"`
	Circuit   string      `bson:"circuit" json:"circuit"`
	Date      string      `bson:"date" json:"date"` // provider calendar date, YYYY-MM-DD
	Rows      []ResultRow `bson:"rows" json:"rows"`
	UpdatedAt *time.Time  `bson:"updatedAt,omitempty" json:"updated_at,omitempty"`
}

// Key returns the composite key for the result.
func (r *RaceResult) Key() ResultKey {
	return ResultKey{Season: r.Season, Round: r.Round}
}

// Standings document ids. Exactly two snapshot documents exist, fully replaced
// on every sync cycle.
const (
	StandingsDrivers      = "drivers"
	StandingsConstructors = "constructors"
)

// StandingEntry is one ranked row of a standings snapshot. Driver entries carry
// Constructor; constructor entries leave it empty.
type StandingEntry struct {
	Position    int     `bson:"position" json:"position"`
	Name        string  `bson:"name" json:"name"`
	Nationality string  `bson:"nationality,omitempty" json:"nationality,omitempty"`
	Constructor string  `bson:"constructor,omitempty" json:"constructor,omitempty"`
	Points      float64 `bson:"points" json:"points"`
	Wins        int     `bson:"wins" json:"wins"`
}

// StandingsSnapshot is the latest known championship table for drivers or
// constructors. No history is retained; each sync overwrites the document.
type StandingsSnapshot struct {
	ID        string          `bson:"_id" json:"id"` // StandingsDrivers or StandingsConstructors
	Season    int             `bson:"season" json:"season"`
	Round     int             `bson:"round" json:"round"` // round the table is current as of
	Entries   []StandingEntry `bson:"entries" json:"entries"`
	UpdatedAt *time.Time      `bson:"updatedAt,omitempty" json:"updated_at,omitempty"`
}
