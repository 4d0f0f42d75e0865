/* models.go
 * This file contain the structs and helper functions that relate to DB objects
 * Authors: Zachary Bower
 */

package store

import (
	"time"

	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/shared"
)

const (
	// SnapshotTTL is how long a cached event bracket is served before it is fetched again
	SnapshotTTL = 2 * time.Minute
	// RosterTTL is how long a cached tournament player list is served before it is fetched again
	RosterTTL = 3 * time.Hour
	// ScheduleTTL is how long a cached tournament schedule is served before it is fetched again
	ScheduleTTL = 15 * time.Minute
)

// SnapshotDoc is a cached upstream event. Data holds the eventData json as received
type SnapshotDoc struct {
	TournamentID int    `bson:"tournament_id"`
	Event        string `bson:"event"`
	Data         string `bson:"data"`
	TTL          int64  `bson:"ttl"`
}

// RosterDoc is a cached tournament player list
type RosterDoc struct {
	TournamentID int             `bson:"tournament_id"`
	Players      []shared.Player `bson:"players"`
	TTL          int64           `bson:"ttl"`
}

// ScheduleDoc is a cached tournament schedule
type ScheduleDoc struct {
	TournamentID int             `bson:"tournament_id"`
	Items        []schedule.Item `bson:"items"`
	TTL          int64           `bson:"ttl"`
}

// ExpiresAt returns the ttl value stored with a document written at now
// Preconditions: Receives the write time and how long the document stays fresh
// Postconditions: Returns unix time in seconds
func ExpiresAt(now time.Time, d time.Duration) int64 {
	return now.Add(d).Unix()
}

// Expired reports whether a document with the given ttl has to be refreshed at now
func Expired(ttl int64, now time.Time) bool {
	return ttl <= now.Unix()
}
