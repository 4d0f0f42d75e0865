/* identity.go
 * Contains the functions used to decide which team a bracket node stands for and if two nodes are the same team
 * Authors: Zachary Bower
 */

package bracket

import "pickleball-brackets/api/shared"

// PlayersOf returns the team a node stands for: the winner of a match (empty if undecided) or the team in a seed
func PlayersOf(node Node) shared.Team {
	switch n := node.(type) {
	case *Match:
		if n == nil {
			return nil
		}
		return n.Winner
	case *Seed:
		if n == nil {
			return nil
		}
		return n.Team
	default:
		return nil
	}
}

// IdentityTag returns the sorted player id tag of the team a node stands for, or "" if no team is assigned yet
func IdentityTag(node Node) string {
	return PlayersOf(node).Tag()
}

// SameTeam checks if two nodes stand for the same team. Nodes without a team are never the same as anything
func SameTeam(a, b Node) bool {
	tag := IdentityTag(a)
	return tag != "" && tag == IdentityTag(b)
}

// IsWinnerSlot reports whether child is the slot the parent match's winner came from
func IsWinnerSlot(parent *Match, child Node) bool {
	return parent != nil && len(parent.Winner) > 0 && SameTeam(parent, child)
}
