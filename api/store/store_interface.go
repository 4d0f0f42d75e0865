/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 * Authors: Zachary Bower
 */

package store

import (
	"context"

	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/shared"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	GetSnapshot(ctx context.Context, tournamentID int, event string) (*bracket.Snapshot, error)
	StoreSnapshot(ctx context.Context, tournamentID int, event string, data []byte) error
	Invalidate(ctx context.Context, tournamentID int, event string) error
	GetRoster(ctx context.Context, tournamentID int) ([]shared.Player, error)
	StoreRoster(ctx context.Context, tournamentID int, players []shared.Player) error
	GetSchedule(ctx context.Context, tournamentID int) ([]schedule.Item, error)
	StoreSchedule(ctx context.Context, tournamentID int, items []schedule.Item) error

	// Getter methods for accessing fields
	GetDatabase() interface{ Name() string }
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
