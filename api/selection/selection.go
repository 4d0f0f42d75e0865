/* selection.go
 * Contains the hover/click selection state machine for bracket nodes, and the function used to derive which nodes are
 * highlighted from the current selection and filter
 * Authors: Zachary Bower
 */

package selection

import (
	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/search"
)

// Kind of selection currently active
type Kind int

const (
	Idle Kind = iota
	Hover
	Held
)

func (k Kind) String() string {
	switch k {
	case Hover:
		return "hover"
	case Held:
		return "held"
	default:
		return "idle"
	}
}

// State is the current selection. Node is nil when Kind is Idle
type State struct {
	Kind Kind
	Node bracket.Node
}

// Active reports whether a node is hovered or held
func (s State) Active() bool {
	return s.Kind != Idle && s.Node != nil
}

// Tracker holds the selection state of one bracket view. It is not safe for concurrent use, callers serialise
// transitions (see session.Session)
type Tracker struct {
	state State
}

// NewTracker returns a tracker in the Idle state
func NewTracker() *Tracker {
	return &Tracker{}
}

// State returns the current selection state
func (t *Tracker) State() State {
	return t.state
}

// HoverEnter is called when the pointer enters a node
// Preconditions: Receives the hovered node
// Postconditions: Idle or Hover becomes Hover(node). A held selection is not changed
func (t *Tracker) HoverEnter(node bracket.Node) {
	if t.state.Kind == Held {
		return
	}
	t.state = State{Kind: Hover, Node: node}
}

// HoverLeave is called when the pointer leaves a node
// Preconditions: Receives the node that was left
// Postconditions: Hover becomes Idle. A held selection is not changed
func (t *Tracker) HoverLeave(node bracket.Node) {
	if t.state.Kind == Hover {
		t.state = State{}
	}
}

// Click toggles a held selection
// Preconditions: Receives the clicked node
// Postconditions: Clicking the same team as the held selection returns to Idle, anything else holds node
func (t *Tracker) Click(node bracket.Node) {
	if t.state.Kind == Held && bracket.SameTeam(t.state.Node, node) {
		t.state = State{}
		return
	}
	t.state = State{Kind: Held, Node: node}
}

// Reset returns the tracker to Idle, used when a new snapshot is loaded
func (t *Tracker) Reset() {
	t.state = State{}
}

// Highlight derives the emphasis of a node from the selection and the filter query
// Preconditions: Receives a node, the current selection state and the raw filter query
// Postconditions: Returns emphasized if the node is the same team as the selection or matches a non-empty query, and
// deemphasized if a selection or query is active and the node is neither emphasized nor a navigation target of the
// selection. Both are false when there is no selection and no query
func Highlight(node bracket.Node, state State, query string) (emphasized, deemphasized bool) {
	hasQuery := !search.IsEmpty(query)
	if !state.Active() && !hasQuery {
		return false, false
	}

	emphasized = (state.Active() && bracket.SameTeam(node, state.Node)) || bracket.NodeMatches(node, query)
	if emphasized {
		return true, false
	}
	return false, !IsNavigationTarget(node, state)
}

// IsNavigationTarget reports whether node is the match the selected match's winner or loser moves on to
func IsNavigationTarget(node bracket.Node, state State) bool {
	if !state.Active() {
		return false
	}
	selected, ok := state.Node.(*bracket.Match)
	if !ok || selected == nil {
		return false
	}
	target, ok := node.(*bracket.Match)
	if !ok || target == nil {
		return false
	}
	return (selected.WinnerTo != nil && *selected.WinnerTo == target.ID) ||
		(selected.LoserTo != nil && *selected.LoserTo == target.ID)
}
