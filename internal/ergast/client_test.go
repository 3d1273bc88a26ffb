package ergast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const resultsFixture = `{
  "MRData": {
    "RaceTable": {
      "Races": [
        {
          "season": "2026",
          "round": "5",
          "raceName": "Saudi Arabian Grand Prix",
          "date": "2026-04-19",
          "Circuit": { "circuitName": "Jeddah Corniche Circuit" },
          "Results": [
            {
              "position": "1",
              "points": "25",
              "grid": "2",
              "laps": "50",
              "status": "Finished",
              "Driver": { "code": "VER", "givenName": "Max", "familyName": "Verstappen" },
              "Constructor": { "name": "Red Bull Racing" },
              "Time": { "time": "1:24:19.293" },
              "FastestLap": { "Time": { "time": "1:30.734" } }
            },
            {
              "position": "2",
              "points": "18",
              "grid": "1",
              "laps": "50",
              "status": "Finished",
              "Driver": { "code": "NOR", "givenName": "Lando", "familyName": "Norris" },
              "Constructor": { "name": "McLaren" },
              "Time": { "time": "+2.337" }
            }
          ]
        }
      ]
    }
  }
}`

const driverStandingsFixture = `{
  "MRData": {
    "StandingsTable": {
      "StandingsLists": [
        {
          "season": "2026",
          "round": "5",
          "DriverStandings": [
            {
              "position": "1",
              "points": "110.5",
              "wins": "3",
              "Driver": { "givenName": "Max", "familyName": "Verstappen", "nationality": "Dutch" },
              "Constructors": [ { "name": "Red Bull Racing" } ]
            },
            {
              "position": "2",
              "points": "98",
              "wins": "2",
              "Driver": { "givenName": "Lando", "familyName": "Norris", "nationality": "British" },
              "Constructors": [ { "name": "McLaren" } ]
            }
          ]
        }
      ]
    }
  }
}`

const constructorStandingsFixture = `{
  "MRData": {
    "StandingsTable": {
      "StandingsLists": [
        {
          "season": "2026",
          "round": "5",
          "ConstructorStandings": [
            {
              "position": "1",
              "points": "208.5",
              "wins": "5",
              "Constructor": { "name": "Red Bull Racing", "nationality": "Austrian" }
            }
          ]
        }
      ]
    }
  }
}`

func fixtureServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestLastRaceResults(t *testing.T) {
	server := fixtureServer(t, resultsFixture)
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	result, err := client.LastRaceResults(context.Background(), 2026)
	if err != nil {
		t.Fatalf("LastRaceResults failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected a race result, got nil")
	}

	if result.ID != "2026_05" {
		t.Errorf("Expected document id 2026_05, got %q", result.ID)
	}
	if result.Season != 2026 || result.Round != 5 {
		t.Errorf("Expected season 2026 round 5, got %d/%d", result.Season, result.Round)
	}
	if result.RaceName != "Saudi Arabian Grand Prix" {
		t.Errorf("Unexpected race name %q", result.RaceName)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("Expected 2 result rows, got %d", len(result.Rows))
	}

	winner := result.Rows[0]
	if winner.Position != 1 || winner.Grid != 2 || winner.Laps != 50 {
		t.Errorf("Numeric coercion wrong: %+v", winner)
	}
	if winner.Points != 25 {
		t.Errorf("Expected 25 points, got %v", winner.Points)
	}
	if winner.DriverName != "Max Verstappen" || winner.DriverCode != "VER" {
		t.Errorf("Unexpected winner identity: %+v", winner)
	}
	if winner.Time != "1:24:19.293" || winner.FastestLap != "1:30.734" {
		t.Errorf("Optional time fields wrong: %+v", winner)
	}

	second := result.Rows[1]
	if second.FastestLap != "" {
		t.Errorf("Expected empty fastest lap, got %q", second.FastestLap)
	}
}

func TestLastRaceResultsEmptySeason(t *testing.T) {
	server := fixtureServer(t, `{"MRData":{"RaceTable":{"Races":[]}}}`)
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	result, err := client.LastRaceResults(context.Background(), 2026)
	if err != nil {
		t.Fatalf("Empty season should not be an error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result for empty season, got %+v", result)
	}
}

func TestLastRaceResultsMalformed(t *testing.T) {
	malformed := []string{
		`{"MRData":{"RaceTable":{"Races":[{"season":"2026","round":"abc","raceName":"X","Circuit":{"circuitName":"Y"},"Results":[]}]}}}`,
		`{"MRData":{"RaceTable":{"Races":[{"season":"2026","round":"5","Circuit":{"circuitName":"Y"},"Results":[]}]}}}`,
		`{"MRData":{"RaceTable":{"Races":[{"season":"2026","round":"5","raceName":"X","Circuit":{"circuitName":"Y"},"Results":[{"position":"first","points":"25","grid":"1","laps":"50","Driver":{"givenName":"A","familyName":"B"},"Constructor":{"name":"C"}}]}]}}}`,
		`not json at all`,
	}

	for i, body := range malformed {
		server := fixtureServer(t, body)
		client := NewClient(server.URL, 2*time.Second)
		_, err := client.LastRaceResults(context.Background(), 2026)
		server.Close()

		if !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("Case %d: expected ErrMalformedPayload, got %v", i, err)
		}
	}
}

func TestDriverStandings(t *testing.T) {
	server := fixtureServer(t, driverStandingsFixture)
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	snapshot, err := client.DriverStandings(context.Background(), 2026)
	if err != nil {
		t.Fatalf("DriverStandings failed: %v", err)
	}
	if snapshot == nil {
		t.Fatal("Expected a snapshot, got nil")
	}

	if snapshot.ID != "drivers" {
		t.Errorf("Expected id drivers, got %q", snapshot.ID)
	}
	if snapshot.Round != 5 {
		t.Errorf("Expected round 5, got %d", snapshot.Round)
	}
	if len(snapshot.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(snapshot.Entries))
	}

	leader := snapshot.Entries[0]
	if leader.Name != "Max Verstappen" || leader.Constructor != "Red Bull Racing" {
		t.Errorf("Unexpected leader: %+v", leader)
	}
	if leader.Points != 110.5 || leader.Wins != 3 {
		t.Errorf("Numeric coercion wrong: %+v", leader)
	}
}

func TestConstructorStandings(t *testing.T) {
	server := fixtureServer(t, constructorStandingsFixture)
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	snapshot, err := client.ConstructorStandings(context.Background(), 2026)
	if err != nil {
		t.Fatalf("ConstructorStandings failed: %v", err)
	}
	if snapshot == nil {
		t.Fatal("Expected a snapshot, got nil")
	}

	if snapshot.ID != "constructors" {
		t.Errorf("Expected id constructors, got %q", snapshot.ID)
	}
	if len(snapshot.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(snapshot.Entries))
	}
	if snapshot.Entries[0].Nationality != "Austrian" {
		t.Errorf("Unexpected entry: %+v", snapshot.Entries[0])
	}
}

func TestStandingsEmpty(t *testing.T) {
	server := fixtureServer(t, `{"MRData":{"StandingsTable":{"StandingsLists":[]}}}`)
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	snapshot, err := client.DriverStandings(context.Background(), 2026)
	if err != nil {
		t.Fatalf("Empty standings should not be an error, got %v", err)
	}
	if snapshot != nil {
		t.Errorf("Expected nil snapshot, got %+v", snapshot)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(resultsFixture))
	}))
	defer server.Close()

	client := NewClient(server.URL, 100*time.Millisecond)
	_, err := client.LastRaceResults(context.Background(), 2026)
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}
