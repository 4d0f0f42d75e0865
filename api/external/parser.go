/* parser.go
 * Contains the logic used to parse the player list and the schedule out of a tournament info page
 * Authors: Zachary Bower
 */

package external

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"pickleball-brackets/api/schedule"
	"pickleball-brackets/api/shared"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	playerRowSelector  = "#menuPlayerList .playerlist-wrap table tr"
	playerNameSelector = ".col-player > a"
	playerFromSelector = ".col-from"

	scheduleDaySelector    = "#menuSchedule table"
	scheduleHeaderSelector = "tr th"
	scheduleTimeSelector   = "td b"
	scheduleEventsSelector = "td:not(:first-child)"
	scheduleHeaderRows     = 2
)

var (
	playerIDPattern       = regexp.MustCompile(`[?&]id=(\d+)`)
	playerNickNamePattern = regexp.MustCompile(`\(([^)]+)\)`)
)

// ParsePlayerList reads the players listed on a tournament info page. Player links look like
// <a href="...&id=123"><span>Last</span>, First (Nick)</a>
// Preconditions: Receives reader over the page html
// Postconditions: Returns the players in page order. Rows without a player link, such as headers, are skipped
func ParsePlayerList(r io.Reader) ([]shared.Player, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing player list html: %w", err)
	}

	players := make([]shared.Player, 0)
	var parseErr error
	doc.Find(playerRowSelector).EachWithBreak(func(i int, row *goquery.Selection) bool {
		link := row.Find(playerNameSelector).First()
		if link.Length() == 0 {
			return true
		}

		player, err := parsePlayerLink(link)
		if err != nil {
			parseErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		player.From = strings.TrimSpace(row.Find(playerFromSelector).First().Text())
		players = append(players, player)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return players, nil
}

// Helper function to get the id and names of a player from their link
func parsePlayerLink(link *goquery.Selection) (shared.Player, error) {
	href, _ := link.Attr("href")
	idMatch := playerIDPattern.FindStringSubmatch(href)
	if idMatch == nil {
		return shared.Player{}, fmt.Errorf("no player id in link %q", href)
	}
	id, err := strconv.Atoi(idMatch[1])
	if err != nil {
		return shared.Player{}, fmt.Errorf("invalid player id %q: %w", idMatch[1], err)
	}

	lastName := strings.TrimSpace(link.Find("span").First().Text())
	text := link.Text()
	_, rest, found := strings.Cut(text, ",")
	if lastName == "" || !found {
		return shared.Player{}, fmt.Errorf("unexpected player name %q", text)
	}

	firstName, _, _ := strings.Cut(rest, "(")
	nickNames := make([]string, 0)
	for _, m := range playerNickNamePattern.FindAllStringSubmatch(rest, -1) {
		nickNames = append(nickNames, m[1])
	}

	return shared.Player{
		ID:        id,
		FirstName: strings.TrimSpace(firstName),
		LastName:  lastName,
		NickNames: nickNames,
	}, nil
}

// ParseSchedule reads the schedule listed on a tournament info page. Each day is a table whose header holds the date
// followed by the venues, and whose rows hold a time then one cell of events per venue. Events in a cell are separated
// by line breaks and are links when the event has a draw
// Preconditions: Receives reader over the page html
// Postconditions: Returns the schedule items in page order. Cells that start in bold (wait lists and notes) are skipped
func ParseSchedule(r io.Reader) ([]schedule.Item, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing schedule html: %w", err)
	}

	items := make([]schedule.Item, 0)
	doc.Find(scheduleDaySelector).Each(func(_ int, day *goquery.Selection) {
		headers := day.Find(scheduleHeaderSelector)
		if headers.Length() < 2 {
			return
		}
		date := strings.TrimSpace(headers.First().Text())
		venues := make([]string, 0, headers.Length()-2)
		// the last header is not a venue
		headers.Slice(1, headers.Length()-1).Each(func(_ int, h *goquery.Selection) {
			venues = append(venues, strings.TrimSpace(h.Text()))
		})

		day.Find("tr").Slice(scheduleHeaderRows, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
			timeCell := row.Find(scheduleTimeSelector).First()
			if timeCell.Length() == 0 {
				return
			}
			start := strings.TrimSpace(timeCell.Text())

			row.Find(scheduleEventsSelector).Each(func(i int, cell *goquery.Selection) {
				if i >= len(venues) || startsBold(cell) {
					return
				}
				for _, e := range cellEvents(cell) {
					e.Date, e.Time, e.Venue = date, start, venues[i]
					items = append(items, e)
				}
			})
		})
	})
	return items, nil
}

// Helper function to check if the first non blank content of a cell is bold
func startsBold(cell *goquery.Selection) bool {
	for _, node := range cell.Contents().Nodes {
		if node.Type == html.TextNode && strings.TrimSpace(node.Data) == "" {
			continue
		}
		return node.Type == html.ElementNode && node.Data == "b"
	}
	return false
}

// Helper function to split the events of a cell on line breaks. Blank lines, including &nbsp;, are dropped
func cellEvents(cell *goquery.Selection) []schedule.Item {
	items := make([]schedule.Item, 0)
	var name strings.Builder
	link := false
	flush := func() {
		if event := strings.TrimSpace(name.String()); event != "" {
			items = append(items, schedule.Item{Event: event, Link: link})
		}
		name.Reset()
		link = false
	}

	cell.Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		switch {
		case node.Type == html.ElementNode && node.Data == "br":
			flush()
		case node.Type == html.ElementNode && node.Data == "a":
			if _, ok := s.Attr("href"); ok {
				link = true
			}
			name.WriteString(s.Text())
		default:
			name.WriteString(s.Text())
		}
	})
	flush()
	return items
}
