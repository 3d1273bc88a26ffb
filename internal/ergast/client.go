// Package ergast is a read-only client for an Ergast-compatible Formula 1
// results API. Every response is validated into a fixed internal shape before
// any business logic touches it; required fields that are absent or
// non-numeric surface as ErrMalformedPayload.
package ergast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"pitwall/internal/models"
)

// ErrMalformedPayload is returned when the provider responds with JSON that is
// missing required fields or carries non-numeric values where numbers are
// expected.
var ErrMalformedPayload = errors.New("malformed upstream payload")

// Client fetches race results and championship standings for one season.
type Client struct {
	httpClient *retryablehttp.Client
	baseURL    string
	timeout    time.Duration
}

// NewClient creates a provider client. Each call is bounded by timeout,
// including retries.
func NewClient(baseURL string, timeout time.Duration) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 1 * time.Second
	rc.Logger = nil

	return &Client{
		httpClient: rc,
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// LastRaceResults returns the most recently completed race of the season, or
// (nil, nil) when the provider has no completed race yet.
func (c *Client) LastRaceResults(ctx context.Context, season int) (*models.RaceResult, error) {
	var payload envelope
	url := fmt.Sprintf("%s/%d/last/results.json", c.baseURL, season)
	if err := c.get(ctx, url, &payload); err != nil {
		return nil, err
	}

	if payload.MRData.RaceTable == nil || len(payload.MRData.RaceTable.Races) == 0 {
		return nil, nil
	}

	return normalizeRace(&payload.MRData.RaceTable.Races[0])
}

// DriverStandings returns the latest driver championship table, or (nil, nil)
// when the provider has no standings list yet.
func (c *Client) DriverStandings(ctx context.Context, season int) (*models.StandingsSnapshot, error) {
	url := fmt.Sprintf("%s/%d/driverstandings.json", c.baseURL, season)
	list, err := c.standingsList(ctx, url)
	if err != nil || list == nil {
		return nil, err
	}

	entries := make([]models.StandingEntry, 0, len(list.DriverStandings))
	for i := range list.DriverStandings {
		entry, err := normalizeDriverStanding(&list.DriverStandings[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return buildSnapshot(models.StandingsDrivers, list, entries)
}

// ConstructorStandings returns the latest constructor championship table, or
// (nil, nil) when the provider has no standings list yet.
func (c *Client) ConstructorStandings(ctx context.Context, season int) (*models.StandingsSnapshot, error) {
	url := fmt.Sprintf("%s/%d/constructorstandings.json", c.baseURL, season)
	list, err := c.standingsList(ctx, url)
	if err != nil || list == nil {
		return nil, err
	}

	entries := make([]models.StandingEntry, 0, len(list.ConstructorStandings))
	for i := range list.ConstructorStandings {
		entry, err := normalizeConstructorStanding(&list.ConstructorStandings[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return buildSnapshot(models.StandingsConstructors, list, entries)
}

func (c *Client) standingsList(ctx context.Context, url string) (*wireStandingsList, error) {
	var payload envelope
	if err := c.get(ctx, url, &payload); err != nil {
		return nil, err
	}

	table := payload.MRData.StandingsTable
	if table == nil || len(table.StandingsLists) == 0 {
		return nil, nil
	}

	return &table.StandingsLists[0], nil
}

func buildSnapshot(id string, list *wireStandingsList, entries []models.StandingEntry) (*models.StandingsSnapshot, error) {
	season, err := requireInt("standings season", list.Season)
	if err != nil {
		return nil, err
	}
	round, err := requireInt("standings round", list.Round)
	if err != nil {
		return nil, err
	}

	return &models.StandingsSnapshot{
		ID:      id,
		Season:  season,
		Round:   round,
		Entries: entries,
	}, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return nil
}
