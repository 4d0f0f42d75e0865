/* api.go
 * This file contains the public methods for interacting with this package. The bot and web surfaces should only call
 * functions from this file, not the sub packages. The API keeps one session per event: sessions are loaded from the
 * store on first use and reloaded when an event is refreshed
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/external"
	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/search"
	"pickleball-brackets/api/session"
	"pickleball-brackets/api/shared"
	"pickleball-brackets/api/standings"
	"pickleball-brackets/api/store"
)

// API provides methods for interacting with the bracket data layer
type API struct {
	Store        store.Interface
	TournamentID int

	mu       sync.Mutex
	sessions map[string]*session.Session
	loads    map[string]*sync.Mutex // held while an event is first fetched
}

// NewAPI creates a new API instance backed by a MongoDB cache that refreshes from upstream
// Preconditions: Receives context, db name, mongo uri, the upstream client and the tournament id
// Postconditions: Returns the API, or an error if the store could not be initialised
func NewAPI(ctx context.Context, dbName string, mongoURI string, client *external.Client, tournamentID int) (*API, error) {
	if dbName == "" || client == nil || tournamentID <= 0 {
		return nil, fmt.Errorf("dbName, client and tournamentID are required")
	}

	s, err := store.NewStore(ctx, dbName, mongoURI, client)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		log.Printf("could not create indexes: %v", err)
	}

	return New(s, tournamentID), nil
}

// New creates an API over an existing store. A nil store is allowed when snapshots are loaded with LoadSnapshot
func New(s store.Interface, tournamentID int) *API {
	return &API{
		Store:        s,
		TournamentID: tournamentID,
		sessions:     make(map[string]*session.Session),
		loads:        make(map[string]*sync.Mutex),
	}
}

// Session returns the session of an event, loading it from the store on first use
// Preconditions: Receives context and event name
// Postconditions: Returns a loaded session, or an error if the event could not be loaded
func (a *API) Session(ctx context.Context, event string) (*session.Session, error) {
	s, load := a.entry(event)
	if s.Snapshot() != nil {
		return s, nil
	}
	if a.Store == nil {
		return nil, fmt.Errorf("event %s: %w: %w", event, session.ErrNotLoaded, ErrNoStore)
	}

	// callers racing on the first use wait for one fetch instead of each loading and resetting the session
	load.Lock()
	defer load.Unlock()
	if s.Snapshot() != nil {
		return s, nil
	}

	snapshot, err := a.fetch(ctx, event)
	if err != nil {
		return nil, err
	}
	s.Load(snapshot)
	return s, nil
}

// LoadSnapshot replaces the snapshot of an event, creating its session if needed
// Preconditions: Receives event name and a decoded snapshot
// Postconditions: The session of the event holds the snapshot and its subscribers have been sent the new view
func (a *API) LoadSnapshot(event string, snapshot *bracket.Snapshot) {
	s, _ := a.entry(event)
	s.Load(snapshot)
}

// Helper function to get the session of an event and its load lock, creating both if needed
func (a *API) entry(event string) (*session.Session, *sync.Mutex) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[event]
	if !ok {
		s = session.New()
		a.sessions[event] = s
		a.loads[event] = &sync.Mutex{}
	}
	return s, a.loads[event]
}

// Refresh expires the cached copy of an event and reloads its session from upstream
// Preconditions: Receives context and event name. Requires a store
// Postconditions: The session holds the fresh snapshot, or an error is returned and the session is unchanged
func (a *API) Refresh(ctx context.Context, event string) error {
	if a.Store == nil {
		return ErrNoStore
	}
	if err := a.Store.Invalidate(ctx, a.TournamentID, event); err != nil {
		return err
	}
	snapshot, err := a.fetch(ctx, event)
	if err != nil {
		return err
	}
	a.LoadSnapshot(event, snapshot)
	log.Printf("refreshed event %s", event)
	return nil
}

// RefreshAll refreshes every event that has a session
// Preconditions: Receives context
// Postconditions: Returns the errors of the events that failed joined together, or nil
func (a *API) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, event := range a.Events() {
		if err := a.Refresh(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", event, err))
		}
	}
	return errors.Join(errs...)
}

// Events returns the names of the events with a session, sorted
func (a *API) Events() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	events := make([]string, 0, len(a.sessions))
	for event := range a.sessions {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

// GetView returns the current view of an event
// Preconditions: Receives context and event name
// Postconditions: Returns the view or an error if the event could not be loaded
func (a *API) GetView(ctx context.Context, event string) (session.View, error) {
	s, err := a.Session(ctx, event)
	if err != nil {
		return session.View{}, err
	}
	return s.View()
}

// Dispatch applies a renderer event to an event's session
// Preconditions: Receives context, event name and the renderer event
// Postconditions: Returns the view after the event, or an error if the event was rejected
func (a *API) Dispatch(ctx context.Context, event string, e session.Event) (session.View, error) {
	s, err := a.Session(ctx, event)
	if err != nil {
		return session.View{}, err
	}
	if err := s.Dispatch(e); err != nil {
		return session.View{}, err
	}
	return s.View()
}

// GetTeams returns the sorted roster of an event filtered by a query. An empty query returns every team
// Preconditions: Receives context, event name and the raw filter
// Postconditions: Returns the teams or an error if the event could not be loaded
func (a *API) GetTeams(ctx context.Context, event string, filter string) ([]shared.Team, error) {
	s, err := a.Session(ctx, event)
	if err != nil {
		return nil, err
	}
	return search.FilterList(filter, shared.SortRoster(s.Snapshot().Teams), shared.Team.SearchKey), nil
}

// GetStandings returns the ranked standings of a round robin event
// Preconditions: Receives context and event name
// Postconditions: Returns the standings, or ErrNotRoundRobin if the event has a double elimination draw
func (a *API) GetStandings(ctx context.Context, event string) ([]standings.Standing, error) {
	s, err := a.Session(ctx, event)
	if err != nil {
		return nil, err
	}
	snapshot := s.Snapshot()
	if !snapshot.IsRoundRobin() {
		return nil, fmt.Errorf("event %s: %w", event, ErrNotRoundRobin)
	}
	return standings.Compute(snapshot.RoundRobin, snapshot.Teams), nil
}

// GetSchedule returns the tournament schedule filtered by event name and grouped by date, time and venue
// Preconditions: Receives context and the raw filter. Requires a store
// Postconditions: Returns the schedule view, with NoMatches set when no event matches the filter
func (a *API) GetSchedule(ctx context.Context, filter string) (schedule.View, error) {
	if a.Store == nil {
		return schedule.View{}, ErrNoStore
	}
	items, err := a.Store.GetSchedule(ctx, a.TournamentID)
	if err != nil {
		return schedule.View{}, fmt.Errorf("error loading schedule of tournament %d: %w", a.TournamentID, err)
	}
	return schedule.Filter(items, filter), nil
}

// Helper function to get an event from the store and fill in each player's hometown from the tournament roster. A
// roster that cannot be fetched is logged and skipped
func (a *API) fetch(ctx context.Context, event string) (*bracket.Snapshot, error) {
	snapshot, err := a.Store.GetSnapshot(ctx, a.TournamentID, event)
	if err != nil {
		return nil, fmt.Errorf("error loading event %s: %w", event, err)
	}

	players, err := a.Store.GetRoster(ctx, a.TournamentID)
	if err != nil {
		log.Printf("could not load roster for tournament %d: %v", a.TournamentID, err)
		return snapshot, nil
	}
	addHometowns(snapshot, players)
	return snapshot, nil
}

// Helper function to copy the From field of roster players into the teams of a snapshot that has not been loaded yet
func addHometowns(snapshot *bracket.Snapshot, players []shared.Player) {
	from := make(map[int]string, len(players))
	for _, p := range players {
		if p.From != "" {
			from[p.ID] = p.From
		}
	}
	for _, team := range snapshot.Teams {
		for i := range team {
			if team[i].From == "" {
				team[i].From = from[team[i].ID]
			}
		}
	}
}
