/* session.go
 * This file contains the Session store object. A session holds one event's snapshot, the filter query and the
 * selection. It is populated by Load when data arrives and afterwards only changes through Dispatch. Every change
 * publishes a fresh View to subscribers
 * Authors: Zachary Bower
 */

package session

import (
	"errors"
	"fmt"
	"sync"

	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/selection"
	"pickleball-brackets/api/shared"
)

var (
	// ErrNotLoaded is returned when a session is used before a snapshot has been loaded
	ErrNotLoaded = errors.New("no snapshot loaded")
	// ErrUnknownNode is returned when an event refers to a node that is not in the bracket
	ErrUnknownNode = errors.New("unknown bracket node")
	// ErrUnknownEvent is returned for an event type the session does not handle
	ErrUnknownEvent = errors.New("unknown event type")
)

// EventType of an event sent by a renderer
type EventType string

const (
	FilterChanged EventType = "filter"
	HoverEnter    EventType = "hoverEnter"
	HoverLeave    EventType = "hoverLeave"
	Click         EventType = "click"
	Clear         EventType = "clear"
)

// Event received from a renderer. Node events name either a match by MatchID or a seed by its player ids
type Event struct {
	Type    EventType `json:"type"`
	Filter  string    `json:"filter,omitempty"`
	MatchID *int      `json:"matchId,omitempty"`
	Seed    []int     `json:"seed,omitempty"`
}

// Session is the store object for one event
type Session struct {
	mu       sync.Mutex
	snapshot *bracket.Snapshot
	query    string
	tracker  *selection.Tracker

	subscribers map[int]chan View
	nextID      int
}

// New returns an empty session
func New() *Session {
	return &Session{
		tracker:     selection.NewTracker(),
		subscribers: make(map[int]chan View),
	}
}

// Load replaces the session's snapshot
// Preconditions: Receives a decoded snapshot, which must not be modified afterwards
// Postconditions: The selection is cleared, the filter query is kept and subscribers receive the new view
func (s *Session) Load(snapshot *bracket.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
	s.tracker.Reset()
	s.publish()
}

// Snapshot returns the loaded snapshot, or nil
func (s *Session) Snapshot() *bracket.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Dispatch applies an event to the session
// Preconditions: Receives an event. A snapshot must have been loaded
// Postconditions: The transition has completed and subscribers have been sent the new view, or an error is returned
// and the session is unchanged
func (s *Session) Dispatch(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return ErrNotLoaded
	}

	switch e.Type {
	case FilterChanged:
		s.query = e.Filter
	case Clear:
		s.tracker.Reset()
	case HoverEnter, HoverLeave, Click:
		node, err := s.resolve(e)
		if err != nil {
			return err
		}
		switch e.Type {
		case HoverEnter:
			s.tracker.HoverEnter(node)
		case HoverLeave:
			s.tracker.HoverLeave(node)
		default:
			s.tracker.Click(node)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownEvent, e.Type)
	}

	s.publish()
	return nil
}

// View returns the current view
func (s *Session) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return View{}, ErrNotLoaded
	}
	return BuildView(s.snapshot, s.query, s.tracker.State()), nil
}

// Subscribe registers for view updates. The channel holds at most one view, a view that has not been received yet is
// replaced by the newer one
// Preconditions: None
// Postconditions: Returns the channel and a function that unsubscribes and closes it. If a snapshot is loaded the
// current view is already in the channel
func (s *Session) Subscribe() (<-chan View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan View, 1)
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch
	if s.snapshot != nil {
		ch <- BuildView(s.snapshot, s.query, s.tracker.State())
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// Helper function to send the current view to every subscriber. Must be called with mu held
func (s *Session) publish() {
	if len(s.subscribers) == 0 || s.snapshot == nil {
		return
	}
	view := BuildView(s.snapshot, s.query, s.tracker.State())
	for _, ch := range s.subscribers {
		// Drop a stale view the subscriber has not read yet
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

// Helper function to find the node an event refers to. Seeds are looked up in the roster and in the bracket as it is
// currently shown, so summary seeds of a filtered bracket can be selected
func (s *Session) resolve(e Event) (bracket.Node, error) {
	if e.MatchID != nil {
		roots := append(s.snapshot.Roots(), s.snapshot.RoundRobin.Matches()...)
		if m := bracket.FindMatch(roots, *e.MatchID); m != nil {
			return m, nil
		}
		return nil, fmt.Errorf("%w: match %d", ErrUnknownNode, *e.MatchID)
	}

	if len(e.Seed) == 0 {
		return nil, fmt.Errorf("%w: event has neither a match id nor a seed", ErrUnknownNode)
	}
	tag := seedTag(e.Seed)
	for _, team := range s.snapshot.Teams {
		if team.Tag() == tag {
			return &bracket.Seed{Team: team}, nil
		}
	}

	var found bracket.Node
	for _, root := range bracket.Prune(s.snapshot.Roots(), s.query) {
		bracket.Walk(root, func(n bracket.Node) bool {
			if seed, ok := n.(*bracket.Seed); ok && found == nil && seed.Team.Tag() == tag {
				found = seed
			}
			return found == nil
		})
	}
	if found == nil {
		return nil, fmt.Errorf("%w: seed %s", ErrUnknownNode, tag)
	}
	return found, nil
}

// Helper function to build the identity tag of a list of player ids
func seedTag(ids []int) string {
	team := make(shared.Team, len(ids))
	for i, id := range ids {
		team[i] = shared.Player{ID: id}
	}
	return team.Tag()
}
