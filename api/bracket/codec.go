/* codec.go
 * Contains the logic used to decode event data json from upstream into a Snapshot and to encode it back. The json
 * shape is the one served to the original front end:
 *   {"doubleElim": [[title|null, match], ...]} or {"roundRobin": [[match, ...], ...]}
 * where children are {"match": {...}} or {"seed": [players]}
 * Authors: Zachary Bower
 */

package bracket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"pickleball-brackets/api/shared"
)

// ErrMalformed is returned when event data does not have the expected bracket shape
var ErrMalformed = errors.New("malformed bracket")

type wireEvent struct {
	Name       string         `json:"name"`
	Teams      []shared.Team  `json:"teams"`
	Bracket    *wireBracket   `json:"bracket"`
	Tournament wireTournament `json:"tournament"`
}

type wireTournament struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type wireBracket struct {
	DoubleElim [][2]json.RawMessage `json:"doubleElim"`
	RoundRobin [][]*wireMatch       `json:"roundRobin"`
}

// MarshalJSON writes only the kind of bracket that is present. An empty double elimination draw is written as
// "doubleElim": [] so it does not read back as a round robin
func (b wireBracket) MarshalJSON() ([]byte, error) {
	if b.DoubleElim != nil {
		return json.Marshal(struct {
			DoubleElim [][2]json.RawMessage `json:"doubleElim"`
		}{b.DoubleElim})
	}
	rounds := b.RoundRobin
	if rounds == nil {
		rounds = [][]*wireMatch{}
	}
	return json.Marshal(struct {
		RoundRobin [][]*wireMatch `json:"roundRobin"`
	}{rounds})
}

type wireMatch struct {
	ID       int         `json:"id"`
	Winner   shared.Team `json:"winner"`
	Scores   [][2]int    `json:"scores"`
	Children []wireChild `json:"children"`
	WinnerTo *int        `json:"winnerTo"`
	LoserTo  *int        `json:"loserTo"`
}

type wireChild struct {
	Match json.RawMessage `json:"match,omitempty"`
	Seed  json.RawMessage `json:"seed,omitempty"`
}

// DecodeSnapshot parses the event data json of one event
// Preconditions: Receives raw json bytes of an eventData object
// Postconditions: Returns a Snapshot, or an error wrapping ErrMalformed if the bracket shape is invalid
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var event wireEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("error parsing event data: %w", err)
	}

	snapshot := &Snapshot{
		Name:       event.Name,
		Tournament: Tournament{ID: event.Tournament.ID, Name: event.Tournament.Name},
		Teams:      event.Teams,
	}
	if event.Bracket == nil {
		return snapshot, nil
	}

	b := event.Bracket
	if b.DoubleElim != nil && b.RoundRobin != nil {
		return nil, fmt.Errorf("%w: both doubleElim and roundRobin present", ErrMalformed)
	}

	if b.DoubleElim != nil {
		snapshot.DoubleElim = make([]Section, 0, len(b.DoubleElim))
		for i, pair := range b.DoubleElim {
			section, err := decodeSection(pair)
			if err != nil {
				return nil, fmt.Errorf("section %d: %w", i, err)
			}
			snapshot.DoubleElim = append(snapshot.DoubleElim, section)
		}
		return snapshot, nil
	}

	// An empty bracket object is treated as an empty round robin, the same default upstream uses
	snapshot.RoundRobin = make(Pool, 0, len(b.RoundRobin))
	for r, round := range b.RoundRobin {
		matches := make([]*Match, 0, len(round))
		for _, wm := range round {
			m, err := decodeMatch(wm)
			if err != nil {
				return nil, fmt.Errorf("round %d: %w", r, err)
			}
			for _, c := range m.Children {
				if _, ok := c.(*Seed); !ok {
					return nil, fmt.Errorf("%w: round robin match %d has a match as a child", ErrMalformed, m.ID)
				}
			}
			matches = append(matches, m)
		}
		snapshot.RoundRobin = append(snapshot.RoundRobin, matches)
	}
	return snapshot, nil
}

// EncodeSnapshot writes a snapshot back out in the same json shape DecodeSnapshot reads
// Preconditions: Receives a well formed snapshot
// Postconditions: Returns json bytes or an error
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	event := wireEvent{
		Name:       s.Name,
		Teams:      s.Teams,
		Tournament: wireTournament{ID: s.Tournament.ID, Name: s.Tournament.Name},
	}

	switch {
	case s.DoubleElim != nil:
		event.Bracket = &wireBracket{DoubleElim: make([][2]json.RawMessage, 0, len(s.DoubleElim))}
		for _, section := range s.DoubleElim {
			title, err := json.Marshal(section.Title)
			if err != nil {
				return nil, err
			}
			root, err := json.Marshal(encodeMatch(section.Root))
			if err != nil {
				return nil, err
			}
			event.Bracket.DoubleElim = append(event.Bracket.DoubleElim, [2]json.RawMessage{title, root})
		}
	case s.RoundRobin != nil:
		event.Bracket = &wireBracket{RoundRobin: make([][]*wireMatch, 0, len(s.RoundRobin))}
		for _, round := range s.RoundRobin {
			matches := make([]*wireMatch, 0, len(round))
			for _, m := range round {
				matches = append(matches, encodeMatch(m))
			}
			event.Bracket.RoundRobin = append(event.Bracket.RoundRobin, matches)
		}
	}

	return json.Marshal(event)
}

// MarshalNode encodes a single node as {"match": ...} or {"seed": ...}
func MarshalNode(node Node) ([]byte, error) {
	child, err := encodeChild(node)
	if err != nil {
		return nil, err
	}
	return json.Marshal(child)
}

// Helper function to decode a [title, match] pair
func decodeSection(pair [2]json.RawMessage) (Section, error) {
	var section Section
	if len(pair[0]) > 0 && !bytes.Equal(pair[0], []byte("null")) {
		var title string
		if err := json.Unmarshal(pair[0], &title); err != nil {
			return Section{}, fmt.Errorf("%w: section title is not a string", ErrMalformed)
		}
		section.Title = &title
	}

	var wm wireMatch
	if err := json.Unmarshal(pair[1], &wm); err != nil {
		return Section{}, fmt.Errorf("%w: section root: %v", ErrMalformed, err)
	}
	root, err := decodeMatch(&wm)
	if err != nil {
		return Section{}, err
	}
	section.Root = root
	return section, nil
}

// Helper function to convert a wire match and its subtree into a Match
func decodeMatch(wm *wireMatch) (*Match, error) {
	if wm == nil {
		return nil, fmt.Errorf("%w: null match", ErrMalformed)
	}
	if len(wm.Children) != 2 {
		return nil, fmt.Errorf("%w: match %d has %d children, expected 2", ErrMalformed, wm.ID, len(wm.Children))
	}

	m := &Match{
		ID:       wm.ID,
		Winner:   wm.Winner,
		WinnerTo: wm.WinnerTo,
		LoserTo:  wm.LoserTo,
	}
	if len(wm.Scores) > 0 {
		m.Scores = make([]Score, len(wm.Scores))
		for i, s := range wm.Scores {
			m.Scores[i] = Score{For: s[0], Against: s[1]}
		}
	}

	for i, wc := range wm.Children {
		child, err := decodeChild(wc)
		if err != nil {
			return nil, fmt.Errorf("match %d child %d: %w", wm.ID, i, err)
		}
		m.Children[i] = child
	}
	return m, nil
}

// Helper function to decode a child that must be exactly one of match or seed
func decodeChild(wc wireChild) (Node, error) {
	hasMatch := len(wc.Match) > 0 && !bytes.Equal(wc.Match, []byte("null"))
	hasSeed := len(wc.Seed) > 0 && !bytes.Equal(wc.Seed, []byte("null"))

	switch {
	case hasMatch && hasSeed:
		return nil, fmt.Errorf("%w: child is both a match and a seed", ErrMalformed)
	case hasMatch:
		var wm wireMatch
		if err := json.Unmarshal(wc.Match, &wm); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return decodeMatch(&wm)
	case hasSeed:
		var team shared.Team
		if err := json.Unmarshal(wc.Seed, &team); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return &Seed{Team: team}, nil
	default:
		return nil, fmt.Errorf("%w: child is neither a match nor a seed", ErrMalformed)
	}
}

// Helper function to convert a Match back into its wire form
func encodeMatch(m *Match) *wireMatch {
	wm := &wireMatch{
		ID:       m.ID,
		Winner:   m.Winner,
		Scores:   make([][2]int, len(m.Scores)),
		WinnerTo: m.WinnerTo,
		LoserTo:  m.LoserTo,
	}
	if wm.Winner == nil {
		wm.Winner = shared.Team{}
	}
	for i, s := range m.Scores {
		wm.Scores[i] = [2]int{s.For, s.Against}
	}
	for _, c := range m.Children {
		// Children of a decoded tree are always a match or a seed, so this cannot fail
		child, _ := encodeChild(c)
		wm.Children = append(wm.Children, child)
	}
	return wm
}

// Helper function to convert a node into its wrapped wire form
func encodeChild(node Node) (wireChild, error) {
	switch n := node.(type) {
	case *Match:
		raw, err := json.Marshal(encodeMatch(n))
		if err != nil {
			return wireChild{}, err
		}
		return wireChild{Match: raw}, nil
	case *Seed:
		team := n.Team
		if team == nil {
			team = shared.Team{}
		}
		raw, err := json.Marshal(team)
		if err != nil {
			return wireChild{}, err
		}
		return wireChild{Seed: raw}, nil
	default:
		return wireChild{}, fmt.Errorf("%w: unknown node type %T", ErrMalformed, node)
	}
}
