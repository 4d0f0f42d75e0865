/* schedules.go
 * Contains the methods for interacting with the schedules collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"pickleball-brackets/api/schedule"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSchedule returns a tournament's schedule from the cache, fetching it from upstream if it is missing or expired
// Preconditions: Receives context and tournament id
// Postconditions: Returns the schedule items in page order, or an error if the lookup or the fetch fails
func (s *Store) GetSchedule(ctx context.Context, tournamentID int) ([]schedule.Item, error) {
	var doc ScheduleDoc
	err := s.Collections.Schedules.FindOne(ctx, bson.M{"tournament_id": tournamentID}).Decode(&doc)
	switch {
	case err == nil && !Expired(doc.TTL, s.now()):
		return doc.Items, nil
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("error fetching schedule from db: %w", err)
	}

	items, err := s.Fetcher.FetchSchedule(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.StoreSchedule(ctx, tournamentID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// StoreSchedule writes a tournament's schedule to the cache
// Preconditions: Receives context, tournament id and the schedule items
// Postconditions: The document is inserted or replaced with a fresh ttl, or an error is returned
func (s *Store) StoreSchedule(ctx context.Context, tournamentID int, items []schedule.Item) error {
	doc := ScheduleDoc{
		TournamentID: tournamentID,
		Items:        items,
		TTL:          ExpiresAt(s.now(), ScheduleTTL),
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.Collections.Schedules.UpdateOne(ctx, bson.M{"tournament_id": tournamentID}, bson.M{"$set": doc}, opts)
	if err != nil {
		return fmt.Errorf("failed to store schedule: %w", err)
	}
	return nil
}
