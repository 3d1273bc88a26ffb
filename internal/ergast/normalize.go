package ergast

import (
	"fmt"
	"strconv"
	"strings"

	"pitwall/internal/models"
)

// Wire shapes for the provider's nested JSON. Numeric fields arrive as strings
// and are coerced during normalization.

type envelope struct {
	MRData struct {
		RaceTable      *wireRaceTable      `json:"RaceTable"`
		StandingsTable *wireStandingsTable `json:"StandingsTable"`
	} `json:"MRData"`
}

type wireRaceTable struct {
	Races []wireRace `json:"Races"`
}

type wireRace struct {
	Season   string `json:"season"`
	Round    string `json:"round"`
	RaceName string `json:"raceName"`
	Date     string `json:"date"`
	Circuit  struct {
		CircuitName string `json:"circuitName"`
	} `json:"Circuit"`
	Results []wireResult `json:"Results"`
}

type wireResult struct {
	Position string `json:"position"`
	Points   string `json:"points"`
	Grid     string `json:"grid"`
	Laps     string `json:"laps"`
	Status   string `json:"status"`
	Driver   struct {
		Code       string `json:"code"`
		GivenName  string `json:"givenName"`
		FamilyName string `json:"familyName"`
	} `json:"Driver"`
	Constructor struct {
		Name string `json:"name"`
	} `json:"Constructor"`
	Time *struct {
		Time string `json:"time"`
	} `json:"Time,omitempty"`
	FastestLap *struct {
		Time struct {
			Time string `json:"time"`
		} `json:"Time"`
	} `json:"FastestLap,omitempty"`
}

type wireStandingsTable struct {
	StandingsLists []wireStandingsList `json:"StandingsLists"`
}

type wireStandingsList struct {
	Season               string                    `json:"season"`
	Round                string                    `json:"round"`
	DriverStandings      []wireDriverStanding      `json:"DriverStandings"`
	ConstructorStandings []wireConstructorStanding `json:"ConstructorStandings"`
}

type wireDriverStanding struct {
	Position string `json:"position"`
	Points   string `json:"points"`
	Wins     string `json:"wins"`
	Driver   struct {
		GivenName   string `json:"givenName"`
		FamilyName  string `json:"familyName"`
		Nationality string `json:"nationality"`
	} `json:"Driver"`
	Constructors []struct {
		Name string `json:"name"`
	} `json:"Constructors"`
}

type wireConstructorStanding struct {
	Position    string `json:"position"`
	Points      string `json:"points"`
	Wins        string `json:"wins"`
	Constructor struct {
		Name        string `json:"name"`
		Nationality string `json:"nationality"`
	} `json:"Constructor"`
}

func normalizeRace(race *wireRace) (*models.RaceResult, error) {
	season, err := requireInt("race season", race.Season)
	if err != nil {
		return nil, err
	}
	round, err := requireInt("race round", race.Round)
	if err != nil {
		return nil, err
	}
	if race.RaceName == "" {
		return nil, fmt.Errorf("%w: race name missing", ErrMalformedPayload)
	}

	rows := make([]models.ResultRow, 0, len(race.Results))
	for i := range race.Results {
		row, err := normalizeResultRow(&race.Results[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	key := models.ResultKey{Season: season, Round: round}
	return &models.RaceResult{
		ID:       key.String(),
		Season:   season,
		Round:    round,
		RaceName: race.RaceName,
		Circuit:  race.Circuit.CircuitName,
		Date:     race.Date,
		Rows:     rows,
	}, nil
}

func normalizeResultRow(res *wireResult) (models.ResultRow, error) {
	position, err := requireInt("result position", res.Position)
	if err != nil {
		return models.ResultRow{}, err
	}
	grid, err := requireInt("result grid", res.Grid)
	if err != nil {
		return models.ResultRow{}, err
	}
	laps, err := requireInt("result laps", res.Laps)
	if err != nil {
		return models.ResultRow{}, err
	}
	points, err := requireFloat("result points", res.Points)
	if err != nil {
		return models.ResultRow{}, err
	}

	name := strings.TrimSpace(res.Driver.GivenName + " " + res.Driver.FamilyName)
	if name == "" {
		return models.ResultRow{}, fmt.Errorf("%w: result driver name missing", ErrMalformedPayload)
	}

	row := models.ResultRow{
		Position:    position,
		DriverCode:  res.Driver.Code,
		DriverName:  name,
		Constructor: res.Constructor.Name,
		Grid:        grid,
		Laps:        laps,
		Status:      res.Status,
		Points:      points,
	}
	if res.Time != nil {
		row.Time = res.Time.Time
	}
	if res.FastestLap != nil {
		row.FastestLap = res.FastestLap.Time.Time
	}

	return row, nil
}

func normalizeDriverStanding(st *wireDriverStanding) (models.StandingEntry, error) {
	position, err := requireInt("standing position", st.Position)
	if err != nil {
		return models.StandingEntry{}, err
	}
	points, err := requireFloat("standing points", st.Points)
	if err != nil {
		return models.StandingEntry{}, err
	}
	wins, err := requireInt("standing wins", st.Wins)
	if err != nil {
		return models.StandingEntry{}, err
	}

	name := strings.TrimSpace(st.Driver.GivenName + " " + st.Driver.FamilyName)
	if name == "" {
		return models.StandingEntry{}, fmt.Errorf("%w: standing driver name missing", ErrMalformedPayload)
	}

	entry := models.StandingEntry{
		Position:    position,
		Name:        name,
		Nationality: st.Driver.Nationality,
		Points:      points,
		Wins:        wins,
	}
	if len(st.Constructors) > 0 {
		// A driver can appear for multiple constructors mid-season; the
		// current one is listed last.
		entry.Constructor = st.Constructors[len(st.Constructors)-1].Name
	}

	return entry, nil
}

func normalizeConstructorStanding(st *wireConstructorStanding) (models.StandingEntry, error) {
	position, err := requireInt("standing position", st.Position)
	if err != nil {
		return models.StandingEntry{}, err
	}
	points, err := requireFloat("standing points", st.Points)
	if err != nil {
		return models.StandingEntry{}, err
	}
	wins, err := requireInt("standing wins", st.Wins)
	if err != nil {
		return models.StandingEntry{}, err
	}
	if st.Constructor.Name == "" {
		return models.StandingEntry{}, fmt.Errorf("%w: standing constructor name missing", ErrMalformedPayload)
	}

	return models.StandingEntry{
		Position:    position,
		Name:        st.Constructor.Name,
		Nationality: st.Constructor.Nationality,
		Points:      points,
		Wins:        wins,
	}, nil
}

func requireInt(field, value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s missing", ErrMalformedPayload, field)
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not numeric (%q)", ErrMalformedPayload, field, value)
	}
	return parsed, nil
}

func requireFloat(field, value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s missing", ErrMalformedPayload, field)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not numeric (%q)", ErrMalformedPayload, field, value)
	}
	return parsed, nil
}
