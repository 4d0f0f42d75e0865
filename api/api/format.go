/* format.go
 * Contains the plain text renderings of views, rosters, standings and schedules used by the bot and the show command
 * Authors: Zachary Bower
 */

package api

import (
	"fmt"
	"strings"

	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/search"
	"pickleball-brackets/api/session"
	"pickleball-brackets/api/shared"
	"pickleball-brackets/api/standings"
)

// FormatTeams renders a roster, one numbered team per line
// Preconditions: Receives slice of teams in display order
// Postconditions: Returns the rendered roster, or a message saying no teams matched
func FormatTeams(teams []shared.Team) string {
	if len(teams) == 0 {
		return "No teams match that filter"
	}
	var b strings.Builder
	for i, team := range teams {
		fmt.Fprintf(&b, "%d. %s", i+1, team.Names())
		if from := hometowns(team); from != "" {
			fmt.Fprintf(&b, " (%s)", from)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatStandings renders a standings table
// Preconditions: Receives ranked standings
// Postconditions: Returns one line per team with rank, record, point differential and points
func FormatStandings(rows []standings.Standing) string {
	if len(rows) == 0 {
		return "No standings yet"
	}
	var b strings.Builder
	b.WriteString("Rank | Team | W-L | PD | Pts\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%d | %s | %d-%d | %+d | %d\n", row.Rank, row.Team.Names(), row.Wins, row.Losses,
			row.PointDifferential, row.Points)
	}
	return b.String()
}

// FormatSchedule renders a schedule view grouped by day and time, one line per event with its venue
// Preconditions: Receives a view built by schedule.Filter
// Postconditions: Returns the rendered schedule, or a message saying nothing is scheduled or nothing matched
func FormatSchedule(view schedule.View) string {
	var b strings.Builder
	if view.Query != "" {
		fmt.Fprintf(&b, "Filter: %s\n", view.Query)
	}
	if view.NoMatches {
		if search.IsEmpty(view.Query) {
			b.WriteString("No events have been scheduled yet\n")
		} else {
			b.WriteString("No scheduled events match the filter\n")
		}
		return b.String()
	}

	for i, day := range view.Days {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", day.Date)
		for _, slot := range day.Slots {
			fmt.Fprintf(&b, "  %s\n", slot.Time)
			for _, venue := range view.Venues {
				for _, item := range slot.Venues[venue] {
					fmt.Fprintf(&b, "    %s: %s\n", venue, item.Event)
				}
			}
		}
	}
	return b.String()
}

// FormatView renders the draw of a view as an indented tree. Emphasized lines start with "*" and deemphasized
// lines with "."
// Preconditions: Receives a view built by a session
// Postconditions: Returns the rendered text
func FormatView(view session.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", view.Tournament, view.Name)
	if view.Query != "" {
		fmt.Fprintf(&b, "Filter: %s\n", view.Query)
	}

	if !view.Published {
		b.WriteString("The draw has not been published yet\n")
		return b.String()
	}

	if view.NoMatches {
		b.WriteString("No matches found")
		if len(view.Suggestions) > 0 {
			fmt.Fprintf(&b, ". Did you mean: %s?", strings.Join(view.Suggestions, ", "))
		}
		b.WriteString("\n")
		return b.String()
	}

	for _, section := range view.Sections {
		if section.Title != nil {
			fmt.Fprintf(&b, "\n%s\n", *section.Title)
		} else {
			b.WriteString("\n")
		}
		for _, root := range section.Roots {
			writeNode(&b, root, 0)
		}
	}

	for r, round := range view.Rounds {
		fmt.Fprintf(&b, "\nRound %d\n", r+1)
		for _, m := range round {
			writeNode(&b, m, 0)
		}
	}
	if len(view.Standings) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatStandings(view.Standings))
	}
	for r, bye := range view.Byes {
		if bye != nil {
			fmt.Fprintf(&b, "Round %d bye: %s\n", r+1, bye.Names())
		}
	}
	return b.String()
}

// Helper function to write one node and its children, indented by depth
func writeNode(b *strings.Builder, n session.NodeView, depth int) {
	marker := " "
	switch {
	case n.Emphasized:
		marker = "*"
	case n.Deemphasized:
		marker = "."
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(marker)
	b.WriteString(" ")

	if n.Kind == "seed" {
		b.WriteString(teamOrTBD(n.Team))
		b.WriteString("\n")
		return
	}

	fmt.Fprintf(b, "Match %d: %s", n.ID, teamOrTBD(n.Team))
	if len(n.Scores) > 0 {
		games := make([]string, len(n.Scores))
		for i, s := range n.Scores {
			games[i] = fmt.Sprintf("%d-%d", s.For, s.Against)
		}
		fmt.Fprintf(b, " (%s)", strings.Join(games, ", "))
	}
	b.WriteString("\n")
	for _, child := range n.Children {
		writeNode(b, child, depth+1)
	}
}

// Helper function to name a team, or TBD if the slot is undecided
func teamOrTBD(t shared.Team) string {
	if len(t) == 0 {
		return "TBD"
	}
	return t.Names()
}

// Helper function to list the distinct hometowns of a team's players
func hometowns(t shared.Team) string {
	var from []string
	seen := make(map[string]bool)
	for _, p := range t {
		if p.From != "" && !seen[p.From] {
			seen[p.From] = true
			from = append(from, p.From)
		}
	}
	return strings.Join(from, " / ")
}
