/* test_mocks.go
 * Contains mock structures and interfaces for testing the API package
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/external"
	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/shared"
	"pickleball-brackets/api/store"
)

// MockStore implements the store Interface for testing
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data, keyed by event name
	Events   map[string][]byte
	Players  []shared.Player
	Schedule []schedule.Item

	// Error injection for testing error paths
	GetSnapshotError error
	GetRosterError   error
	GetScheduleError error
	InvalidateError  error

	// SnapshotDelay slows every GetSnapshot down to widen races in concurrency tests
	SnapshotDelay time.Duration

	// Call tracking
	SnapshotCalls int
	Invalidated   []string

	DatabaseName string
}

// Ensure MockStore implements store.Interface
var _ store.Interface = (*MockStore)(nil)

// mockDatabase implements the minimal Database interface needed for tests
type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

// mockClient implements the minimal Client interface needed for tests
type mockClient struct{}

func (m *mockClient) Disconnect(_ context.Context) error {
	return nil
}

// NewMockStore creates a new MockStore with no events
func NewMockStore() *MockStore {
	return &MockStore{
		Events:       make(map[string][]byte),
		DatabaseName: "test_db",
	}
}

// GetSnapshot mock implementation
func (m *MockStore) GetSnapshot(_ context.Context, _ int, event string) (*bracket.Snapshot, error) {
	time.Sleep(m.SnapshotDelay)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotCalls++
	if m.GetSnapshotError != nil {
		return nil, m.GetSnapshotError
	}
	data, ok := m.Events[event]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", event, external.ErrNotFound)
	}
	return bracket.DecodeSnapshot(data)
}

// StoreSnapshot mock implementation
func (m *MockStore) StoreSnapshot(_ context.Context, _ int, event string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events[event] = data
	return nil
}

// Invalidate mock implementation
func (m *MockStore) Invalidate(_ context.Context, _ int, event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InvalidateError != nil {
		return m.InvalidateError
	}
	m.Invalidated = append(m.Invalidated, event)
	return nil
}

// InvalidatedEvents returns a copy of the events that have been invalidated, safe to call while refreshes run
func (m *MockStore) InvalidatedEvents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Invalidated...)
}

// GetRoster mock implementation
func (m *MockStore) GetRoster(_ context.Context, _ int) ([]shared.Player, error) {
	if m.GetRosterError != nil {
		return nil, m.GetRosterError
	}
	return m.Players, nil
}

// StoreRoster mock implementation
func (m *MockStore) StoreRoster(_ context.Context, _ int, players []shared.Player) error {
	m.Players = players
	return nil
}

// GetSchedule mock implementation
func (m *MockStore) GetSchedule(_ context.Context, _ int) ([]schedule.Item, error) {
	if m.GetScheduleError != nil {
		return nil, m.GetScheduleError
	}
	return m.Schedule, nil
}

// StoreSchedule mock implementation
func (m *MockStore) StoreSchedule(_ context.Context, _ int, items []schedule.Item) error {
	m.Schedule = items
	return nil
}

// CallsToGetSnapshot returns how many times GetSnapshot ran, safe to call while sessions load
func (m *MockStore) CallsToGetSnapshot() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SnapshotCalls
}

// GetDatabase mock implementation
func (m *MockStore) GetDatabase() interface{ Name() string } {
	return &mockDatabase{name: m.DatabaseName}
}

// GetClient mock implementation
func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return &mockClient{}
}

// Players used by the sample events
const (
	smith = `{"id": 1, "firstName": "John", "lastName": "Smith", "nickNames": []}`
	jones = `{"id": 2, "firstName": "Amy", "lastName": "Jones", "nickNames": []}`
	brown = `{"id": 3, "firstName": "Robert", "lastName": "Brown", "nickNames": ["Bobby"]}`
	lee   = `{"id": 4, "firstName": "Kim", "lastName": "Lee", "nickNames": []}`
	davis = `{"id": 5, "firstName": "Dan", "lastName": "Davis", "nickNames": []}`
	clark = `{"id": 6, "firstName": "Eve", "lastName": "Clark", "nickNames": []}`
	young = `{"id": 7, "firstName": "Sam", "lastName": "Young", "nickNames": []}`
	hall  = `{"id": 8, "firstName": "Pat", "lastName": "Hall", "nickNames": []}`
)

// doubleElimEvent is a four team draw. Smith/Jones beat Brown/Lee in match 1, Davis/Clark beat Young/Hall in match 2
// and Smith/Jones won the final
const doubleElimEvent = `{
	"name": "Mixed Doubles 4.0",
	"tournament": {"id": 7, "name": "Spring Open"},
	"teams": [[` + smith + `,` + jones + `], [` + brown + `,` + lee + `], [` + davis + `,` + clark + `], [` + young + `,` + hall + `]],
	"bracket": {"doubleElim": [["Winners", {
		"id": 3, "winner": [` + smith + `,` + jones + `], "scores": [[11, 8]],
		"children": [
			{"match": {"id": 1, "winner": [` + smith + `,` + jones + `], "scores": [[11, 3]], "winnerTo": 3, "children": [
				{"seed": [` + smith + `,` + jones + `]}, {"seed": [` + brown + `,` + lee + `]}]}},
			{"match": {"id": 2, "winner": [` + davis + `,` + clark + `], "scores": [[11, 9]], "winnerTo": 3, "children": [
				{"seed": [` + davis + `,` + clark + `]}, {"seed": [` + young + `,` + hall + `]}]}}
		]
	}]]}
}`

// roundRobinEvent is a three team pool where Davis wins both of their matches
const roundRobinEvent = `{
	"name": "Singles Pool",
	"tournament": {"id": 7, "name": "Spring Open"},
	"teams": [[` + smith + `], [` + brown + `], [` + davis + `]],
	"bracket": {"roundRobin": [
		[{"id": 1, "winner": [` + smith + `], "scores": [[11, 4]], "children": [{"seed": [` + smith + `]}, {"seed": [` + brown + `]}]}],
		[{"id": 2, "winner": [` + davis + `], "scores": [[11, 9]], "children": [{"seed": [` + smith + `]}, {"seed": [` + davis + `]}]}],
		[{"id": 3, "winner": [` + davis + `], "scores": [[11, 2]], "children": [{"seed": [` + brown + `]}, {"seed": [` + davis + `]}]}]
	]}
}`

// NewLoadedMockStore creates a MockStore holding a double elimination event named "Mixed Doubles 4.0" and a round
// robin event named "Singles Pool"
func NewLoadedMockStore() *MockStore {
	m := NewMockStore()
	m.Events["Mixed Doubles 4.0"] = []byte(doubleElimEvent)
	m.Events["Singles Pool"] = []byte(roundRobinEvent)
	m.Players = []shared.Player{
		{ID: 1, FirstName: "John", LastName: "Smith", From: "Austin, TX"},
		{ID: 3, FirstName: "Robert", LastName: "Brown", From: "Denver, CO"},
	}
	m.Schedule = []schedule.Item{
		{Date: "Friday, May 3", Time: "8:00 AM", Venue: "Court A", Event: "Mixed Doubles 4.0", Link: true},
		{Date: "Friday, May 3", Time: "8:00 AM", Venue: "Court B", Event: "Singles Pool", Link: true},
		{Date: "Friday, May 3", Time: "1:00 PM", Venue: "Court A", Event: "Men's Doubles 3.5"},
		{Date: "Saturday, May 4", Time: "9:00 AM", Venue: "Court B", Event: "Mixed Doubles 3.0", Link: true},
	}
	return m
}
