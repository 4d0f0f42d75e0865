/* store.go
 * Contains the store struct and NewStore function. The store is a cache of upstream data in MongoDB, it is never the
 * source of truth. The methods for this package are split into three files: snapshots, rosters and schedules. Each of these files
 * contain methods for interacting with that part of the database
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"
	"time"

	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher gets fresh data from upstream when a cached copy has expired. Implemented by external.Client
type Fetcher interface {
	FetchEventData(ctx context.Context, tournamentID int, event string) ([]byte, error)
	FetchPlayerList(ctx context.Context, tournamentID int) ([]shared.Player, error)
	FetchSchedule(ctx context.Context, tournamentID int) ([]schedule.Item, error)
}

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Fetcher     Fetcher
	Collections struct {
		Snapshots *mongo.Collection
		Rosters   *mongo.Collection
		Schedules *mongo.Collection
	}

	now func() time.Time
}

// Function for initialising Store. Connects to the db and sets the collections used by the cache
// Preconditions: Receives context, strings containing dbName and mongoURI, and the fetcher used to refresh data
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string, fetcher Fetcher) (*Store, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName cannot be empty")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	return newStore(client, client.Database(dbName), fetcher), nil
}

// Helper function to build a store over an existing connection
func newStore(client *mongo.Client, db *mongo.Database, fetcher Fetcher) *Store {
	s := &Store{
		Client:   client,
		Database: db,
		Fetcher:  fetcher,
		now:      time.Now,
	}
	s.Collections.Snapshots = db.Collection("snapshots")
	s.Collections.Rosters = db.Collection("rosters")
	s.Collections.Schedules = db.Collection("schedules")
	return s
}

// EnsureIndexes creates the unique indexes the cache lookups rely on
// Preconditions: Receives context
// Postconditions: Indexes exist, or an error is returned
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collections.Snapshots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tournament_id", Value: 1}, {Key: "event", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}

	byTournament := mongo.IndexModel{
		Keys:    bson.D{{Key: "tournament_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err = s.Collections.Rosters.Indexes().CreateOne(ctx, byTournament); err != nil {
		return fmt.Errorf("failed to create roster index: %w", err)
	}
	if _, err = s.Collections.Schedules.Indexes().CreateOne(ctx, byTournament); err != nil {
		return fmt.Errorf("failed to create schedule index: %w", err)
	}
	return nil
}
