/* search.go
 * Contains the text matching used when filtering team lists and brackets. Queries and candidates are split into
 * lowercase tokens and a candidate matches if every query token is the start of one of its tokens
 * Authors: Zachary Bower
 */

package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Characters removed from text without breaking a token, e.g. O'Neil -> oneil
const quoteChars = "'\"`‘’“”"

// Characters replaced with a space, these split tokens
const symbolChars = "!@#$%^&*()[]{}/?\\;:|<>_=,.+~-"

// Normalize converts a string into search tokens
// Preconditions: Receives any string
// Postconditions: Returns lowercase tokens with quotes removed and symbols treated as whitespace. Never contains empty
// tokens
func Normalize(s string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case strings.ContainsRune(quoteChars, r):
			continue
		case strings.ContainsRune(symbolChars, r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

// TokensMatch checks if every query token is a prefix of at least one candidate token. Two query tokens may match the
// same candidate token
// Preconditions: Receives normalised query and candidate tokens
// Postconditions: Returns true if all query tokens match, an empty query always matches
func TokensMatch(query []string, candidate []string) bool {
	for _, q := range query {
		found := false
		for _, c := range candidate {
			if strings.HasPrefix(c, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FilterList filters items by a query on the text returned by key. An empty query means show everything
// Preconditions: Receives raw query string, slice of items and a function returning the searchable text of an item
// Postconditions: Returns items unchanged if the query has no tokens, else a new slice with the matching items in
// their original order
func FilterList[T any](query string, items []T, key func(T) string) []T {
	tokens := Normalize(query)
	if len(tokens) == 0 {
		return items
	}

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if TokensMatch(tokens, Normalize(key(item))) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// MatchesSingle checks a single piece of text against a query. Unlike FilterList an empty query matches nothing, so
// "no query" means nothing is highlighted
// Preconditions: Receives text and raw query
// Postconditions: Returns true if the query has tokens and they all match the text
func MatchesSingle(text string, query string) bool {
	tokens := Normalize(query)
	if len(tokens) == 0 {
		return false
	}
	return TokensMatch(tokens, Normalize(text))
}

// IsEmpty reports whether a raw query has no tokens after normalising
func IsEmpty(query string) bool {
	return len(Normalize(query)) == 0
}

// Suggest finds the candidates closest to a query, used for a "did you mean" line when a filter matches nothing.
// This does not change what a filter matches
// Preconditions: Receives raw query, candidate strings and the max number of suggestions
// Postconditions: Returns up to limit candidates ordered by fuzzy distance, or nil if the query is empty
func Suggest(query string, candidates []string, limit int) []string {
	tokens := Normalize(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil
	}
	source := strings.Join(tokens, " ")

	// Fuzzy ranking needs the query characters in order, so also try with only the longest token
	longest := tokens[0]
	for _, t := range tokens[1:] {
		if len(t) > len(longest) {
			longest = t
		}
	}

	best := make(map[string]int)
	for _, s := range []string{source, longest} {
		for _, rank := range fuzzy.RankFindNormalizedFold(s, candidates) {
			if d, ok := best[rank.Target]; !ok || rank.Distance < d {
				best[rank.Target] = rank.Distance
			}
		}
	}

	// Fall back to edit distance so typos past the end of a name (e.g. "smithh") still produce a suggestion
	if len(best) == 0 {
		for _, c := range candidates {
			for _, word := range Normalize(c) {
				d := fuzzy.LevenshteinDistance(longest, word)
				if d <= len(longest)/3+1 {
					if prev, ok := best[c]; !ok || d < prev {
						best[c] = d
					}
				}
			}
		}
	}

	suggestions := make([]string, 0, len(best))
	for target := range best {
		suggestions = append(suggestions, target)
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if best[suggestions[i]] != best[suggestions[j]] {
			return best[suggestions[i]] < best[suggestions[j]]
		}
		return suggestions[i] < suggestions[j]
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
