/* test_helpers.go
 * Contains test helper functions and mock structures for store package tests
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/shared"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MockFetcher implements Fetcher with canned upstream data and counts calls
type MockFetcher struct {
	mu          sync.Mutex
	EventData   map[string][]byte
	Players       []shared.Player
	Schedule      []schedule.Item
	FetchError    error
	EventCalls    int
	RosterCalls   int
	ScheduleCalls int
}

// NewMockFetcher creates a MockFetcher with no events
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{EventData: make(map[string][]byte)}
}

// FetchEventData mock implementation
func (m *MockFetcher) FetchEventData(_ context.Context, tournamentID int, event string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	data, ok := m.EventData[event]
	if !ok {
		return nil, fmt.Errorf("no event %s in tournament %d", event, tournamentID)
	}
	return data, nil
}

// FetchPlayerList mock implementation
func (m *MockFetcher) FetchPlayerList(_ context.Context, _ int) ([]shared.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RosterCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.Players, nil
}

// FetchSchedule mock implementation
func (m *MockFetcher) FetchSchedule(_ context.Context, _ int) ([]schedule.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScheduleCalls++
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return m.Schedule, nil
}

// NewTestStore creates a Store on a throwaway database of the server in MONGO_TEST_URI. The test is skipped when the
// variable is not set. The database is dropped when the test finishes
func NewTestStore(t *testing.T, fetcher Fetcher) *Store {
	t.Helper()

	mongoURI := os.Getenv("MONGO_TEST_URI")
	if mongoURI == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not reachable: %v", err)
	}

	db := client.Database(fmt.Sprintf("test_pickleball_%d", time.Now().UnixNano()))
	s := newStore(client, db, fetcher)

	t.Cleanup(func() {
		db.Drop(context.Background())
		client.Disconnect(context.Background())
	})
	return s
}

// CreateSampleEventData creates a minimal event data json for testing
func CreateSampleEventData(name string) []byte {
	return []byte(fmt.Sprintf(`{"name": %q, "teams": [], "bracket": {"roundRobin": []}}`, name))
}

// CreateSampleSchedule creates a sample schedule for testing
func CreateSampleSchedule() []schedule.Item {
	return []schedule.Item{
		{Date: "Friday, May 3", Time: "8:00 AM", Venue: "Court A", Event: "Mixed Doubles 4.0", Link: true},
		{Date: "Friday, May 3", Time: "8:00 AM", Venue: "Court B", Event: "Men's Singles 4.0"},
	}
}

// CreateSamplePlayers creates sample players for testing
func CreateSamplePlayers() []shared.Player {
	return []shared.Player{
		{ID: 1, FirstName: "John", LastName: "Smith", NickNames: []string{}, From: "Austin, TX"},
		{ID: 2, FirstName: "Robert", LastName: "Brown", NickNames: []string{"Bob"}, From: "Denver, CO"},
	}
}
