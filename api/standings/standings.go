/* standings.go
 * Contains the logic used to compute ranked standings for a round robin pool, and to find the team sitting out each
 * round
 * Authors: Zachary Bower
 */

package standings

import (
	"log"
	"sort"

	"pickleball-brackets/api/bracket"
	"pickleball-brackets/api/shared"
)

// Standing is one row of a round robin table
type Standing struct {
	Team              shared.Team    `json:"team"`
	Rank              int            `json:"rank"`
	Wins              int            `json:"wins"`
	Losses            int            `json:"losses"`
	Played            int            `json:"played"`
	HeadToHead        map[string]int `json:"headToHead"` // opponent tag -> 1 if this team won their meeting
	LocalHeadToHead   int            `json:"localHeadToHead"`
	PointDifferential int            `json:"pointDifferential"`
	Points            int            `json:"points"`
}

// Compute accumulates results for every roster team over the played matches of a pool and ranks them
// Preconditions: Receives a round robin pool and the roster of teams in it
// Postconditions: Returns one standing per roster team ordered by wins, head to head among teams with the same number
// of wins, point differential and points. Remaining ties keep roster order. Matches whose winner is neither of the
// two teams are skipped
func Compute(pool bracket.Pool, roster []shared.Team) []Standing {
	rows := make([]Standing, len(roster))
	index := make(map[string]int, len(roster))
	for i, team := range roster {
		rows[i] = Standing{Team: team, HeadToHead: make(map[string]int)}
		if tag := team.Tag(); tag != "" {
			index[tag] = i
		}
	}

	for _, m := range pool.Matches() {
		if len(m.Winner) == 0 {
			continue
		}
		winnerTag := m.Winner.Tag()
		a, b := bracket.IdentityTag(m.Children[0]), bracket.IdentityTag(m.Children[1])

		var loserTag string
		switch winnerTag {
		case a:
			loserTag = b
		case b:
			loserTag = a
		default:
			log.Printf("skipping match %d: winner %s is neither %s nor %s", m.ID, winnerTag, a, b)
			continue
		}

		diff, winnerPoints, loserPoints := 0, 0, 0
		for _, s := range m.Scores {
			diff += s.For - s.Against
			winnerPoints += s.For
			loserPoints += s.Against
		}

		if i, ok := index[winnerTag]; ok {
			rows[i].Wins++
			rows[i].Played++
			rows[i].HeadToHead[loserTag] = 1
			rows[i].PointDifferential += diff
			rows[i].Points += winnerPoints
		}
		if i, ok := index[loserTag]; ok {
			rows[i].Losses++
			rows[i].Played++
			if _, seen := rows[i].HeadToHead[winnerTag]; !seen {
				rows[i].HeadToHead[winnerTag] = 0
			}
			rows[i].PointDifferential -= diff
			rows[i].Points += loserPoints
		}
	}

	// Head to head only counts against teams on the same number of wins
	for i := range rows {
		for opponent, won := range rows[i].HeadToHead {
			if j, ok := index[opponent]; ok && rows[j].Wins == rows[i].Wins {
				rows[i].LocalHeadToHead += won
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.LocalHeadToHead != b.LocalHeadToHead {
			return a.LocalHeadToHead > b.LocalHeadToHead
		}
		if a.PointDifferential != b.PointDifferential {
			return a.PointDifferential > b.PointDifferential
		}
		return a.Points > b.Points
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Byes finds the team sitting out each round of a pool
// Preconditions: Receives a round robin pool and its roster. At most one roster team sits out each round
// Postconditions: Returns one entry per round, the roster team absent from every seed of that round or nil. If more
// than one team is absent the first in roster order is returned
func Byes(pool bracket.Pool, roster []shared.Team) []*shared.Team {
	byes := make([]*shared.Team, len(pool))
	for r, round := range pool {
		playing := make(map[string]bool)
		for _, m := range round {
			for _, c := range m.Children {
				if seed, ok := c.(*bracket.Seed); ok {
					playing[seed.Team.Tag()] = true
				}
			}
		}

		for i := range roster {
			if !playing[roster[i].Tag()] {
				byes[r] = &roster[i]
				break
			}
		}
	}
	return byes
}
