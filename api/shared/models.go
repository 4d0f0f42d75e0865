/* models.go
 * This file contain the structs and helper functions that are shared between sub packages: players, teams and the
 * identity tag used to decide if two bracket slots hold the same team
 * Authors: Zachary Bower
 */

package shared

import (
	"sort"
	"strconv"
	"strings"
)

// Player as listed on the upstream tournament player list
type Player struct {
	ID        int      `json:"id" bson:"id"`
	FirstName string   `json:"firstName" bson:"first_name"`
	LastName  string   `json:"lastName" bson:"last_name"`
	NickNames []string `json:"nickNames" bson:"nick_names,omitempty"` // most recently preferred nickname is last
	From      string   `json:"from,omitempty" bson:"from,omitempty"`
}

// Team is an ordered sequence of 1-2 players. Seeds produced by pruning may summarise more
type Team []Player

// DisplayName returns the name a player goes by: their latest nickname if they have one, else their first name,
// followed by their last name
// Preconditions: None
// Postconditions: Returns string of the form "<first or nickname> <last>"
func (p Player) DisplayName() string {
	first := p.FirstName
	if len(p.NickNames) > 0 {
		first = p.NickNames[len(p.NickNames)-1]
	}
	return first + " " + p.LastName
}

// Tag returns the identity tag of a team. Player ids are sorted so the tag does not depend on slot or presentation
// order
// Preconditions: None
// Postconditions: Returns comma separated sorted player ids, or an empty string if the team has no players
func (t Team) Tag() string {
	if len(t) == 0 {
		return ""
	}
	ids := make([]int, len(t))
	for i, p := range t {
		ids[i] = p.ID
	}
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Same reports whether two teams share a non-empty identity tag
func (t Team) Same(other Team) bool {
	tag := t.Tag()
	return tag != "" && tag == other.Tag()
}

// Names returns the display names of the team's players joined with " / "
func (t Team) Names() string {
	names := make([]string, len(t))
	for i, p := range t {
		names[i] = p.DisplayName()
	}
	return strings.Join(names, " / ")
}

// SearchKey returns the text a team is filtered on: every player's display name separated by spaces
func (t Team) SearchKey() string {
	names := make([]string, len(t))
	for i, p := range t {
		names[i] = p.DisplayName()
	}
	return strings.Join(names, " ")
}

// SortRoster orders a roster for display. Players within a team are sorted by last then first name, and teams are
// sorted by their players' last names
// Preconditions: Receives slice of teams, this slice is not modified
// Postconditions: Returns a new sorted slice of new teams
func SortRoster(teams []Team) []Team {
	sorted := make([]Team, len(teams))
	for i, team := range teams {
		players := make(Team, len(team))
		copy(players, team)
		sort.SliceStable(players, func(a, b int) bool {
			return players[a].LastName+players[a].FirstName < players[b].LastName+players[b].FirstName
		})
		sorted[i] = players
	}

	sort.SliceStable(sorted, func(a, b int) bool {
		return lastNamesKey(sorted[a]) < lastNamesKey(sorted[b])
	})
	return sorted
}

// Helper function used to compare teams by the last names of their players
func lastNamesKey(t Team) string {
	names := make([]string, len(t))
	for i, p := range t {
		names[i] = p.LastName
	}
	return strings.Join(names, ",")
}
