/* models.go
 * This file contains the bracket tree: a node is either a Seed (a slot holding a team) or a Match with exactly two
 * children. Double elimination draws are a list of sections each with a root match, round robin pools are rounds of
 * flat matches. Trees are read only once decoded, anything that transforms them works on copies
 * Authors: Zachary Bower
 */

package bracket

import "pickleball-brackets/api/shared"

// Node is implemented by *Seed and *Match only
type Node interface {
	isNode()
}

// Seed is a bracket slot without a recorded match result
type Seed struct {
	Team shared.Team
}

// Score of one game. For is the points of the match winner's side
type Score struct {
	For     int
	Against int
}

// Match is a played or upcoming match. Winner is empty until the match is decided
type Match struct {
	ID       int
	Winner   shared.Team
	Scores   []Score
	Children [2]Node
	WinnerTo *int // id of the match the winner plays next, if it is in another section
	LoserTo  *int // id of the match the loser drops to
}

func (*Seed) isNode()  {}
func (*Match) isNode() {}

// Section of a double elimination draw, e.g. the winners and losers brackets. Title is nil when the upstream page has
// no heading for it
type Section struct {
	Title *string
	Root  *Match
}

// Pool is a round robin draw: rounds of matches whose children are both seeds
type Pool [][]*Match

// Snapshot is one event as received from upstream. Exactly one of DoubleElim or RoundRobin is set, unless the event
// has no bracket yet
type Snapshot struct {
	Name       string
	Tournament Tournament
	Teams      []shared.Team
	DoubleElim []Section
	RoundRobin Pool
}

// Tournament an event belongs to
type Tournament struct {
	ID   int
	Name string
}

// IsRoundRobin reports whether the snapshot holds a round robin pool
func (s *Snapshot) IsRoundRobin() bool {
	return s.RoundRobin != nil
}

// HasBracket reports whether upstream has published a bracket for this event
func (s *Snapshot) HasBracket() bool {
	return s.DoubleElim != nil || s.RoundRobin != nil
}

// Roots returns the root match of every section
func (s *Snapshot) Roots() []*Match {
	roots := make([]*Match, 0, len(s.DoubleElim))
	for _, section := range s.DoubleElim {
		roots = append(roots, section.Root)
	}
	return roots
}

// Matches flattens the rounds of a pool in order
func (p Pool) Matches() []*Match {
	var matches []*Match
	for _, round := range p {
		matches = append(matches, round...)
	}
	return matches
}

// Walk visits every node of a tree depth first, parents before children. Returning false from fn skips the node's
// children
// Preconditions: Receives root node, nil is allowed
// Postconditions: fn has been called for every visited node
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	if m, ok := node.(*Match); ok {
		for _, c := range m.Children {
			Walk(c, fn)
		}
	}
}

// FindMatch returns the match with the given id from a forest, or nil if it is not present
func FindMatch(roots []*Match, id int) *Match {
	var found *Match
	for _, root := range roots {
		if root == nil {
			continue
		}
		Walk(root, func(n Node) bool {
			if m, ok := n.(*Match); ok && m.ID == id {
				found = m
			}
			return found == nil
		})
		if found != nil {
			return found
		}
	}
	return nil
}
