/* rosters.go
 * Contains the methods for interacting with the rosters collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"pickleball-brackets/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetRoster returns a tournament's player list from the cache, fetching it from upstream if it is missing or expired
// Preconditions: Receives context and tournament id
// Postconditions: Returns the players, or an error if the lookup or the fetch fails
func (s *Store) GetRoster(ctx context.Context, tournamentID int) ([]shared.Player, error) {
	var doc RosterDoc
	err := s.Collections.Rosters.FindOne(ctx, bson.M{"tournament_id": tournamentID}).Decode(&doc)
	switch {
	case err == nil && !Expired(doc.TTL, s.now()):
		return doc.Players, nil
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("error fetching roster from db: %w", err)
	}

	players, err := s.Fetcher.FetchPlayerList(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.StoreRoster(ctx, tournamentID, players); err != nil {
		return nil, err
	}
	return players, nil
}

// StoreRoster writes a tournament's player list to the cache
// Preconditions: Receives context, tournament id and the players
// Postconditions: The document is inserted or replaced with a fresh ttl, or an error is returned
func (s *Store) StoreRoster(ctx context.Context, tournamentID int, players []shared.Player) error {
	doc := RosterDoc{
		TournamentID: tournamentID,
		Players:      players,
		TTL:          ExpiresAt(s.now(), RosterTTL),
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.Collections.Rosters.UpdateOne(ctx, bson.M{"tournament_id": tournamentID}, bson.M{"$set": doc}, opts)
	if err != nil {
		return fmt.Errorf("failed to store roster: %w", err)
	}
	return nil
}
