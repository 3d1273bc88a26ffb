package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDB wraps the MongoDB client and database
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	dbName   string
}

// Collection names
const (
	CollectionDrivers     = "drivers"
	CollectionTeams       = "teams"
	CollectionRaces       = "races"
	CollectionResults     = "results"
	CollectionStandings   = "standings"
	CollectionUsers       = "users"
	CollectionComments    = "comments"
	CollectionPredictions = "predictions"
)

// NewMongoDB creates a new MongoDB connection with connection pooling
func NewMongoDB(uri string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	if dbName == "" {
		dbName = "pitwall"
	}

	db := &MongoDB{
		client:   client,
		database: client.Database(dbName),
		dbName:   dbName,
	}

	log.Printf("✅ Connected to MongoDB database: %s", dbName)

	return db, nil
}

// extractDBName extracts the database name from a MongoDB URI path component.
// mongodb://localhost:27017/pitwall?authSource=admin -> pitwall
func extractDBName(uri string) string {
	lastSlash := strings.LastIndex(uri, "/")
	if lastSlash == -1 || lastSlash == len(uri)-1 {
		return ""
	}

	name := uri[lastSlash+1:]
	if q := strings.Index(name, "?"); q != -1 {
		name = name[:q]
	}

	// Guard against the scheme's own "//"
	if strings.Contains(name, ":") || strings.Contains(name, "@") {
		return ""
	}

	return name
}

// Initialize creates indexes for all collections
func (m *MongoDB) Initialize(ctx context.Context) error {
	log.Println("📦 Initializing MongoDB indexes...")

	// Races: one document per round within a season
	if err := m.createIndexes(ctx, CollectionRaces, []mongo.IndexModel{
		{Keys: bson.D{{Key: "season", Value: 1}, {Key: "round", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create races indexes: %w", err)
	}

	// Drivers grouped by team for roster views
	if err := m.createIndexes(ctx, CollectionDrivers, []mongo.IndexModel{
		{Keys: bson.D{{Key: "teamId", Value: 1}}},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("failed to create drivers indexes: %w", err)
	}

	// Results looked up by season+round besides the canonical _id
	if err := m.createIndexes(ctx, CollectionResults, []mongo.IndexModel{
		{Keys: bson.D{{Key: "season", Value: 1}, {Key: "round", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("failed to create results indexes: %w", err)
	}

	// Comments listed per race in creation order
	if err := m.createIndexes(ctx, CollectionComments, []mongo.IndexModel{
		{Keys: bson.D{{Key: "raceId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create comments indexes: %w", err)
	}

	// Predictions: first match per user+race wins on the read path
	if err := m.createIndexes(ctx, CollectionPredictions, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "raceId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "raceId", Value: 1}, {Key: "createdAt", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create predictions indexes: %w", err)
	}

	// Users keyed by auth identity (_id), email kept queryable
	if err := m.createIndexes(ctx, CollectionUsers, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}

	log.Println("✅ MongoDB indexes initialized successfully")
	return nil
}

// createIndexes creates indexes for a collection
func (m *MongoDB) createIndexes(ctx context.Context, collectionName string, indexes []mongo.IndexModel) error {
	collection := m.database.Collection(collectionName)
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Collection returns a collection handle
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// Client returns the underlying MongoDB client
func (m *MongoDB) Client() *mongo.Client {
	return m.client
}

// Database returns the underlying MongoDB database
func (m *MongoDB) Database() *mongo.Database {
	return m.database
}

// Close closes the MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	log.Println("🔌 Closing MongoDB connection...")
	return m.client.Disconnect(ctx)
}

// Ping checks if the database connection is alive
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// WithTransaction executes a function within a transaction. Used by the sync
// job so a cycle's results and standings writes land all-or-nothing.
func (m *MongoDB) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
