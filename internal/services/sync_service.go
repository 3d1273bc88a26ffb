package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"pitwall/internal/database"
	"pitwall/internal/ergast"
	"pitwall/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAllFetchesFailed is returned when none of the provider resources could be
// fetched in a cycle. A partial outage is a skip, not an error; a total outage
// fails the invocation so the scheduler's retry/alerting applies.
var ErrAllFetchesFailed = errors.New("all provider fetches failed")

// SyncWrite is one staged full-document overwrite.
type SyncWrite struct {
	Collection string
	Key        string
	Document   interface{}
}

// SyncBatch is the set of writes for one cycle, committed all-or-nothing.
type SyncBatch struct {
	Writes []SyncWrite
}

// SyncStore commits a batch atomically. Readers must never observe a partially
// applied batch.
type SyncStore interface {
	Apply(ctx context.Context, batch SyncBatch) error
}

// MongoSyncStore applies a batch inside one MongoDB transaction, stamping
// updatedAt from the server clock so timestamps are comparable across
// invocations regardless of job-host clock skew.
type MongoSyncStore struct {
	db *database.MongoDB
}

// NewMongoSyncStore creates the Mongo-backed sync store.
func NewMongoSyncStore(db *database.MongoDB) *MongoSyncStore {
	return &MongoSyncStore{db: db}
}

// Apply commits all writes in one transaction.
func (s *MongoSyncStore) Apply(ctx context.Context, batch SyncBatch) error {
	if len(batch.Writes) == 0 {
		return nil
	}

	return s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, write := range batch.Writes {
			doc, err := toSetDocument(write.Document)
			if err != nil {
				return fmt.Errorf("failed to encode %s/%s: %w", write.Collection, write.Key, err)
			}

			update := bson.M{
				"$set":         doc,
				"$currentDate": bson.M{"updatedAt": true},
			}

			_, err = s.db.Collection(write.Collection).UpdateOne(
				sessCtx,
				bson.M{"_id": write.Key},
				update,
				options.Update().SetUpsert(true),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert %s/%s: %w", write.Collection, write.Key, err)
			}
		}
		return nil
	})
}

// toSetDocument converts a document into a $set payload, dropping _id (it is
// the filter) and updatedAt (written via $currentDate).
func toSetDocument(document interface{}) (bson.M, error) {
	raw, err := bson.Marshal(document)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	delete(doc, "_id")
	delete(doc, "updatedAt")
	return doc, nil
}

// ResultsProvider is the subset of the ergast client the sync job needs.
type ResultsProvider interface {
	LastRaceResults(ctx context.Context, season int) (*models.RaceResult, error)
	DriverStandings(ctx context.Context, season int) (*models.StandingsSnapshot, error)
	ConstructorStandings(ctx context.Context, season int) (*models.StandingsSnapshot, error)
}

// SyncService pulls the latest completed race and both championship tables
// from the results provider and persists them as one atomic batch.
type SyncService struct {
	provider ResultsProvider
	store    SyncStore
	cache    *CacheService
	metrics  *Metrics
	season   int
}

// NewSyncService creates the sync service. cache and metrics may be nil.
func NewSyncService(provider ResultsProvider, store SyncStore, cache *CacheService, metrics *Metrics, season int) *SyncService {
	return &SyncService{
		provider: provider,
		store:    store,
		cache:    cache,
		metrics:  metrics,
		season:   season,
	}
}

type fetchResults struct {
	race       *models.RaceResult
	raceErr    error
	drivers    *models.StandingsSnapshot
	driversErr error
	constr     *models.StandingsSnapshot
	constrErr  error
}

// Run executes one sync cycle. A missing or unreachable individual resource is
// skipped; the cycle only fails when every fetch failed or the commit was
// rejected.
func (s *SyncService) Run(ctx context.Context) error {
	started := time.Now()
	log.Printf("🔄 [SYNC] Starting sync cycle for season %d", s.season)

	fetched := s.fetchAll(ctx)

	failures := 0
	if fetched.raceErr != nil {
		failures++
		s.countFetchFailure("results")
		log.Printf("⚠️  [SYNC] Results fetch failed: %v", fetched.raceErr)
	}
	if fetched.driversErr != nil {
		failures++
		s.countFetchFailure("driver_standings")
		log.Printf("⚠️  [SYNC] Driver standings fetch failed: %v", fetched.driversErr)
	}
	if fetched.constrErr != nil {
		failures++
		s.countFetchFailure("constructor_standings")
		log.Printf("⚠️  [SYNC] Constructor standings fetch failed: %v", fetched.constrErr)
	}

	if failures == 3 {
		s.countCycle("failed")
		return ErrAllFetchesFailed
	}

	batch := SyncBatch{}
	invalidate := []string{}

	if fetched.race != nil {
		key := fetched.race.Key().String()
		batch.Writes = append(batch.Writes, SyncWrite{
			Collection: database.CollectionResults,
			Key:        key,
			Document:   fetched.race,
		})
		invalidate = append(invalidate, CacheKeyResults+key)
		log.Printf("📄 [SYNC] Staged results %s (%d rows)", key, len(fetched.race.Rows))
	}
	if fetched.drivers != nil {
		batch.Writes = append(batch.Writes, SyncWrite{
			Collection: database.CollectionStandings,
			Key:        models.StandingsDrivers,
			Document:   fetched.drivers,
		})
		invalidate = append(invalidate, CacheKeyStandings+models.StandingsDrivers)
		log.Printf("📄 [SYNC] Staged driver standings as of round %d (%d entries)", fetched.drivers.Round, len(fetched.drivers.Entries))
	}
	if fetched.constr != nil {
		batch.Writes = append(batch.Writes, SyncWrite{
			Collection: database.CollectionStandings,
			Key:        models.StandingsConstructors,
			Document:   fetched.constr,
		})
		invalidate = append(invalidate, CacheKeyStandings+models.StandingsConstructors)
		log.Printf("📄 [SYNC] Staged constructor standings as of round %d (%d entries)", fetched.constr.Round, len(fetched.constr.Entries))
	}

	if len(batch.Writes) == 0 {
		// Pre-season or provider hiccup: nothing new is not an error.
		log.Println("ℹ️  [SYNC] Nothing to write this cycle")
		s.countCycle("skipped")
		return nil
	}

	if err := s.store.Apply(ctx, batch); err != nil {
		s.countCycle("failed")
		return fmt.Errorf("sync commit failed: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, invalidate...)
	}

	s.countCycle("success")
	if s.metrics != nil {
		s.metrics.SyncDuration.Observe(time.Since(started).Seconds())
	}
	log.Printf("✅ [SYNC] Cycle complete: %d documents written in %v", len(batch.Writes), time.Since(started))

	return nil
}

// fetchAll issues the three provider fetches concurrently. Each call carries
// its own timeout inside the provider client.
func (s *SyncService) fetchAll(ctx context.Context) fetchResults {
	var out fetchResults
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		out.race, out.raceErr = s.provider.LastRaceResults(ctx, s.season)
	}()
	go func() {
		defer wg.Done()
		out.drivers, out.driversErr = s.provider.DriverStandings(ctx, s.season)
	}()
	go func() {
		defer wg.Done()
		out.constr, out.constrErr = s.provider.ConstructorStandings(ctx, s.season)
	}()

	wg.Wait()
	return out
}

func (s *SyncService) countCycle(status string) {
	if s.metrics != nil {
		s.metrics.SyncCycles.WithLabelValues(status).Inc()
	}
}

func (s *SyncService) countFetchFailure(resource string) {
	if s.metrics != nil {
		s.metrics.ProviderFetchFailures.WithLabelValues(resource).Inc()
	}
}

// Ensure the real client satisfies the provider interface.
var _ ResultsProvider = (*ergast.Client)(nil)
