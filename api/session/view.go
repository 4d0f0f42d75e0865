/* view.go
 * Contains the read only views rendered by the bot and web surfaces, and the functions used to derive them from a
 * snapshot, the filter query and the selection state
 * Authors: Zachary Bower
 */

package session

import (
	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/search"
	"pickleball-brackets/api/selection"
	"pickleball-brackets/api/shared"
	"pickleball-brackets/api/standings"
)

// maxSuggestions shown with a "no matches" result
const maxSuggestions = 3

// NodeView is a bracket node with its highlight flags. Kind is "match" or "seed"
type NodeView struct {
	Kind         string          `json:"kind"`
	ID           int             `json:"id,omitempty"`
	Team         shared.Team     `json:"team"`
	Scores       []bracket.Score `json:"scores,omitempty"`
	WinnerTo     *int            `json:"winnerTo,omitempty"`
	LoserTo      *int            `json:"loserTo,omitempty"`
	Emphasized   bool            `json:"emphasized"`
	Deemphasized bool            `json:"deemphasized"`
	Winner       bool            `json:"winner"` // the parent's winner came from this slot
	Children     []NodeView      `json:"children,omitempty"`
}

// SectionView is one titled part of a double elimination draw, possibly split into several roots by the filter
type SectionView struct {
	Title *string    `json:"title"`
	Roots []NodeView `json:"roots"`
}

// View is everything a renderer needs to draw one event
type View struct {
	Name        string               `json:"name"`
	Tournament  string               `json:"tournament"`
	Published   bool                 `json:"published"` // upstream has posted the draw
	Query       string               `json:"query"`
	Selection   string               `json:"selection"`
	Teams       []shared.Team        `json:"teams"`
	Sections    []SectionView        `json:"sections,omitempty"`
	Rounds      [][]NodeView         `json:"rounds,omitempty"`
	Standings   []standings.Standing `json:"standings,omitempty"`
	Byes        []*shared.Team       `json:"byes,omitempty"`
	NoMatches   bool                 `json:"noMatches"`
	Suggestions []string             `json:"suggestions,omitempty"`
}

// BuildView derives the view of a snapshot for a filter query and selection
// Preconditions: Receives a decoded snapshot, the raw query and the selection state
// Postconditions: Returns a view. The snapshot is not modified
func BuildView(snapshot *bracket.Snapshot, query string, state selection.State) View {
	view := View{
		Name:       snapshot.Name,
		Tournament: snapshot.Tournament.Name,
		Query:      query,
		Selection:  state.Kind.String(),
		Published:  snapshot.HasBracket(),
	}

	roster := shared.SortRoster(snapshot.Teams)
	view.Teams = search.FilterList(query, roster, shared.Team.SearchKey)
	hasQuery := !search.IsEmpty(query)

	switch {
	case snapshot.IsRoundRobin():
		view.Rounds = make([][]NodeView, len(snapshot.RoundRobin))
		for r, round := range snapshot.RoundRobin {
			view.Rounds[r] = make([]NodeView, 0, len(round))
			for _, m := range round {
				view.Rounds[r] = append(view.Rounds[r], buildNode(m, nil, query, state))
			}
		}
		view.Standings = standings.Compute(snapshot.RoundRobin, snapshot.Teams)
		view.Byes = standings.Byes(snapshot.RoundRobin, snapshot.Teams)
		view.NoMatches = hasQuery && len(view.Teams) == 0

	case snapshot.DoubleElim != nil:
		if hasQuery {
			for _, forest := range bracket.PruneSections(snapshot.DoubleElim, query) {
				view.Sections = append(view.Sections, buildSection(forest.Title, forest.Roots, query, state))
			}
			view.NoMatches = len(view.Sections) == 0
		} else {
			for _, section := range snapshot.DoubleElim {
				view.Sections = append(view.Sections, buildSection(section.Title, []*bracket.Match{section.Root}, query, state))
			}
		}

	default:
		view.NoMatches = hasQuery && len(view.Teams) == 0
	}

	if view.NoMatches {
		view.Suggestions = search.Suggest(query, playerNames(snapshot.Teams), maxSuggestions)
	}
	return view
}

// Helper function to build a section view from its roots
func buildSection(title *string, roots []*bracket.Match, query string, state selection.State) SectionView {
	section := SectionView{Title: title, Roots: make([]NodeView, 0, len(roots))}
	for _, root := range roots {
		section.Roots = append(section.Roots, buildNode(root, nil, query, state))
	}
	return section
}

// Helper function to build the view of a node and its subtree
func buildNode(node bracket.Node, parent *bracket.Match, query string, state selection.State) NodeView {
	var nv NodeView
	switch n := node.(type) {
	case *bracket.Match:
		nv = NodeView{
			Kind:     "match",
			ID:       n.ID,
			Team:     n.Winner,
			Scores:   n.Scores,
			WinnerTo: n.WinnerTo,
			LoserTo:  n.LoserTo,
		}
		nv.Children = make([]NodeView, 0, len(n.Children))
		for _, c := range n.Children {
			nv.Children = append(nv.Children, buildNode(c, n, query, state))
		}
	case *bracket.Seed:
		nv = NodeView{Kind: "seed", Team: n.Team}
	}
	if nv.Team == nil {
		nv.Team = shared.Team{}
	}

	nv.Emphasized, nv.Deemphasized = selection.Highlight(node, state, query)
	nv.Winner = bracket.IsWinnerSlot(parent, node)
	return nv
}

// Helper function to list every player's display name once, used as suggestion candidates
func playerNames(teams []shared.Team) []string {
	seen := make(map[int]bool)
	var names []string
	for _, team := range teams {
		for _, p := range team {
			if !seen[p.ID] {
				seen[p.ID] = true
				names = append(names, p.DisplayName())
			}
		}
	}
	return names
}
