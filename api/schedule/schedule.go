/* schedule.go
 * Contains the tournament schedule and the grouping used to show it. A schedule is filtered by event name and the
 * remaining items are grouped by date, then time, then venue
 * Authors: Zachary Bower
 */

package schedule

import (
	"sort"

	"pickleball-brackets/api/search"
)

// Item is one event starting at a venue at a given time
type Item struct {
	Date  string `json:"date" bson:"date"`
	Time  string `json:"time" bson:"time"`
	Venue string `json:"venue" bson:"venue"`
	Event string `json:"event" bson:"event"`
	Link  bool   `json:"link" bson:"link"` // the event has a draw that can be opened
}

// Slot is everything starting at one time of a day, keyed by venue
type Slot struct {
	Time   string            `json:"time"`
	Venues map[string][]Item `json:"venues"`
}

// Day is the slots of one date in schedule order
type Day struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// View is a filtered schedule ready to render
type View struct {
	Query     string   `json:"query"`
	Venues    []string `json:"venues"`
	Days      []Day    `json:"days"`
	NoMatches bool     `json:"noMatches"`
}

// Venues returns every venue of a schedule once, sorted
func Venues(items []Item) []string {
	seen := make(map[string]bool)
	venues := make([]string, 0)
	for _, item := range items {
		if !seen[item.Venue] {
			seen[item.Venue] = true
			venues = append(venues, item.Venue)
		}
	}
	sort.Strings(venues)
	return venues
}

// Group splits schedule items into days and time slots. A new day or slot starts whenever the date or time changes
// from the previous item, so the schedule order is kept
// Preconditions: Receives items in schedule order
// Postconditions: Returns the days, empty if there are no items
func Group(items []Item) []Day {
	days := make([]Day, 0)
	for _, item := range items {
		if len(days) == 0 || days[len(days)-1].Date != item.Date {
			days = append(days, Day{Date: item.Date, Slots: make([]Slot, 0)})
		}
		day := &days[len(days)-1]
		if len(day.Slots) == 0 || day.Slots[len(day.Slots)-1].Time != item.Time {
			day.Slots = append(day.Slots, Slot{Time: item.Time, Venues: make(map[string][]Item)})
		}
		slot := &day.Slots[len(day.Slots)-1]
		slot.Venues[item.Venue] = append(slot.Venues[item.Venue], item)
	}
	return days
}

// Filter builds the view of a schedule for a query on event names
// Preconditions: Receives the whole schedule in order and a raw query
// Postconditions: Returns the grouped matching items. Venues always lists every venue of the schedule so columns
// stay put while filtering
func Filter(items []Item, query string) View {
	matching := search.FilterList(query, items, func(i Item) string { return i.Event })
	days := Group(matching)
	return View{
		Query:     query,
		Venues:    Venues(items),
		Days:      days,
		NoMatches: len(days) == 0,
	}
}
