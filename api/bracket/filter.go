/* filter.go
 * Contains the logic used to prune a bracket down to the branches relevant to a text filter. Pruning never modifies
 * the input tree, every call returns new nodes so it can be re-run each time the filter text changes
 * Authors: Zachary Bower
 */

package bracket

import (
	"pickleball-brackets/api/search"
	"pickleball-brackets/api/shared"
)

// SectionForest is a section of a draw after pruning. A section can split into several roots or none
type SectionForest struct {
	Title *string
	Roots []*Match
}

// NodeMatches checks if any player of the team a node stands for matches the query
// Preconditions: Receives a node and a raw query
// Postconditions: Returns false for empty queries and nodes without a team
func NodeMatches(node Node, query string) bool {
	for _, p := range PlayersOf(node) {
		if search.MatchesSingle(p.DisplayName(), query) {
			return true
		}
	}
	return false
}

// Prune reduces a forest of matches to the branches containing nodes that match the query
// Preconditions: Receives root matches and a raw query. The roots are not modified
// Postconditions: Returns a new forest where every matching node is kept, subtrees without a match are collapsed into
// seeds, and a non-matching root is replaced by the highest non-matching matches that have a matching child. Returns an
// empty slice if nothing matches
func Prune(roots []*Match, query string) []*Match {
	pruned := make([]*Match, 0)
	if search.IsEmpty(query) {
		return pruned
	}

	// First pass: record which subtrees contain a matching node
	contains := make(map[Node]bool)
	for _, root := range roots {
		if root != nil {
			markMatches(root, query, contains)
		}
	}

	// Second pass: pick the new roots and copy them
	for _, root := range roots {
		if root == nil || !contains[root] {
			continue
		}
		for _, r := range findRoots(root, query, contains) {
			pruned = append(pruned, copyPruned(r, contains))
		}
	}
	return pruned
}

// PruneSections prunes every section of a double elimination draw separately, dropping sections with no matches
// Preconditions: Receives sections and a raw query
// Postconditions: Returns sections with at least one root, keeping their titles and order
func PruneSections(sections []Section, query string) []SectionForest {
	forests := make([]SectionForest, 0, len(sections))
	for _, section := range sections {
		roots := Prune([]*Match{section.Root}, query)
		if len(roots) == 0 {
			continue
		}
		forests = append(forests, SectionForest{Title: section.Title, Roots: roots})
	}
	return forests
}

// Helper function to record in contains whether each node's subtree has a node matching the query
func markMatches(node Node, query string, contains map[Node]bool) bool {
	found := NodeMatches(node, query)
	if m, ok := node.(*Match); ok {
		for _, c := range m.Children {
			if c != nil && markMatches(c, query, contains) {
				found = true
			}
		}
	}
	contains[node] = found
	return found
}

// Helper function to find the roots of the pruned forest for a single tree. A matching root is kept whole, otherwise
// the topmost non-matching matches with a matching child are used
func findRoots(root *Match, query string, contains map[Node]bool) []*Match {
	if NodeMatches(root, query) {
		return []*Match{root}
	}

	var roots []*Match
	var descend func(node Node)
	descend = func(node Node) {
		m, ok := node.(*Match)
		if !ok || !contains[m] || NodeMatches(m, query) {
			return
		}
		for _, c := range m.Children {
			if NodeMatches(c, query) {
				roots = append(roots, m)
				return
			}
		}
		for _, c := range m.Children {
			descend(c)
		}
	}
	descend(root)
	return roots
}

// Helper function to copy a match, collapsing children whose subtree has no matching node into a seed
func copyPruned(m *Match, contains map[Node]bool) *Match {
	cp := copyMatchFields(m)
	for i, c := range m.Children {
		switch child := c.(type) {
		case *Seed:
			cp.Children[i] = &Seed{Team: copyTeam(child.Team)}
		case *Match:
			if contains[child] {
				cp.Children[i] = copyPruned(child, contains)
			} else {
				cp.Children[i] = &Seed{Team: summarise(child)}
			}
		}
	}
	return cp
}

// Helper function to get the players that would have played in a collapsed subtree. A decided match is summarised by
// its winner, an undecided one by the players of its children
func summarise(node Node) shared.Team {
	if team := PlayersOf(node); len(team) > 0 {
		return copyTeam(team)
	}
	m, ok := node.(*Match)
	if !ok {
		return shared.Team{}
	}

	seen := make(map[int]bool)
	team := shared.Team{}
	for _, c := range m.Children {
		for _, p := range summarise(c) {
			if !seen[p.ID] {
				seen[p.ID] = true
				team = append(team, p)
			}
		}
	}
	return team
}

// Helper function to copy everything from a match except its children
func copyMatchFields(m *Match) *Match {
	cp := &Match{
		ID:     m.ID,
		Winner: copyTeam(m.Winner),
	}
	if m.Scores != nil {
		cp.Scores = make([]Score, len(m.Scores))
		copy(cp.Scores, m.Scores)
	}
	if m.WinnerTo != nil {
		to := *m.WinnerTo
		cp.WinnerTo = &to
	}
	if m.LoserTo != nil {
		to := *m.LoserTo
		cp.LoserTo = &to
	}
	return cp
}

// Helper function to deep copy a team
func copyTeam(t shared.Team) shared.Team {
	if t == nil {
		return nil
	}
	cp := make(shared.Team, len(t))
	for i, p := range t {
		cp[i] = p
		if p.NickNames != nil {
			cp[i].NickNames = append([]string(nil), p.NickNames...)
		}
	}
	return cp
}

// Clone returns a deep copy of a tree
func Clone(node Node) Node {
	switch n := node.(type) {
	case *Seed:
		return &Seed{Team: copyTeam(n.Team)}
	case *Match:
		cp := copyMatchFields(n)
		for i, c := range n.Children {
			if c != nil {
				cp.Children[i] = Clone(c)
			}
		}
		return cp
	default:
		return nil
	}
}
