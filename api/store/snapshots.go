/* snapshots.go
 * Contains the methods for interacting with the snapshots collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pickleball-brackets/api/bracket"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSnapshot returns an event from the cache, fetching it from upstream first if it is missing or has expired
// Preconditions: Receives context, tournament id and event name
// Postconditions: Returns the decoded snapshot, or an error if the db lookup, the upstream fetch or decoding fails
func (s *Store) GetSnapshot(ctx context.Context, tournamentID int, event string) (*bracket.Snapshot, error) {
	var doc SnapshotDoc
	var shouldRefresh bool
	err := s.Collections.Snapshots.FindOne(ctx, snapshotFilter(tournamentID, event)).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("error fetching snapshot from db: %w", err)
		}
		shouldRefresh = true
	} else if Expired(doc.TTL, s.now()) {
		shouldRefresh = true
	}

	data := []byte(doc.Data)
	// Run if we need to refresh the data stored in the db (either there is no data stored or the TTL has expired)
	if shouldRefresh {
		data, err = s.Fetcher.FetchEventData(ctx, tournamentID, event)
		if err != nil {
			return nil, err
		}
		if err := s.StoreSnapshot(ctx, tournamentID, event, data); err != nil {
			return nil, err
		}
	}

	snapshot, err := bracket.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding cached snapshot: %w", err)
	}
	return snapshot, nil
}

// StoreSnapshot writes an event's data to the cache
// Preconditions: Receives context, tournament id, event name and the eventData json
// Postconditions: The document is inserted or replaced with a fresh ttl, or an error is returned
func (s *Store) StoreSnapshot(ctx context.Context, tournamentID int, event string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("snapshot data for %s is empty", event)
	}

	doc := SnapshotDoc{
		TournamentID: tournamentID,
		Event:        event,
		Data:         string(data),
		TTL:          ExpiresAt(s.now(), SnapshotTTL),
	}
	log.Printf("updating snapshot %d/%s in db...", tournamentID, event)

	opts := options.Update().SetUpsert(true)
	_, err := s.Collections.Snapshots.UpdateOne(ctx, snapshotFilter(tournamentID, event), bson.M{"$set": doc}, opts)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Invalidate expires a cached event so the next GetSnapshot fetches it from upstream
// Preconditions: Receives context, tournament id and event name
// Postconditions: The document's ttl is in the past. A missing document is not an error
func (s *Store) Invalidate(ctx context.Context, tournamentID int, event string) error {
	_, err := s.Collections.Snapshots.UpdateOne(ctx, snapshotFilter(tournamentID, event), bson.M{"$set": bson.M{"ttl": int64(0)}})
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshot: %w", err)
	}
	return nil
}

// Helper function to build the lookup filter of an event
func snapshotFilter(tournamentID int, event string) bson.M {
	return bson.M{"tournament_id": tournamentID, "event": event}
}
