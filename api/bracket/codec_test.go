/* codec_test.go
 * Contains unit tests for codec.go functions
 * Authors: Zachary Bower
 */

package bracket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doubleElimJSON = `{
	"name": "Mixed Doubles 4.0",
	"tournament": {"id": 42, "name": "Spring Open"},
	"teams": [
		[{"id": 1, "firstName": "John", "lastName": "Smith", "nickNames": []}, {"id": 2, "firstName": "Ann", "lastName": "Jones", "nickNames": []}],
		[{"id": 3, "firstName": "Bob", "lastName": "Brown", "nickNames": ["Bobby"]}, {"id": 4, "firstName": "Kim", "lastName": "Lee", "nickNames": []}]
	],
	"bracket": {"doubleElim": [
		["Winners", {
			"id": 1,
			"winner": [{"id": 2, "firstName": "Ann", "lastName": "Jones", "nickNames": []}, {"id": 1, "firstName": "John", "lastName": "Smith", "nickNames": []}],
			"scores": [[11, 5], [11, 7]],
			"children": [
				{"seed": [{"id": 1, "firstName": "John", "lastName": "Smith", "nickNames": []}, {"id": 2, "firstName": "Ann", "lastName": "Jones", "nickNames": []}]},
				{"seed": [{"id": 3, "firstName": "Bob", "lastName": "Brown", "nickNames": ["Bobby"]}, {"id": 4, "firstName": "Kim", "lastName": "Lee", "nickNames": []}]}
			],
			"winnerTo": null,
			"loserTo": 2
		}],
		[null, {
			"id": 2,
			"winner": [],
			"scores": [],
			"children": [
				{"match": {"id": 9, "winner": [], "scores": [], "children": [{"seed": []}, {"seed": []}]}},
				{"seed": []}
			]
		}]
	]}
}`

const roundRobinJSON = `{
	"name": "Pool A",
	"teams": [],
	"bracket": {"roundRobin": [[
		{"id": 1, "winner": [], "scores": [], "children": [{"seed": [{"id": 1, "firstName": "A", "lastName": "B"}]}, {"seed": [{"id": 2, "firstName": "C", "lastName": "D"}]}]}
	]]}
}`

// region DecodeSnapshot tests

// TestDecodeSnapshot_DoubleElim tests decoding a double elimination draw with titled and untitled sections
func TestDecodeSnapshot_DoubleElim(t *testing.T) {
	snapshot, err := DecodeSnapshot([]byte(doubleElimJSON))

	require.NoError(t, err)
	assert.Equal(t, "Mixed Doubles 4.0", snapshot.Name)
	assert.Equal(t, 42, snapshot.Tournament.ID)
	assert.Len(t, snapshot.Teams, 2)
	assert.False(t, snapshot.IsRoundRobin())
	assert.True(t, snapshot.HasBracket())
	require.Len(t, snapshot.DoubleElim, 2)

	winners := snapshot.DoubleElim[0]
	require.NotNil(t, winners.Title)
	assert.Equal(t, "Winners", *winners.Title)
	assert.Equal(t, []Score{{11, 5}, {11, 7}}, winners.Root.Scores)
	assert.Nil(t, winners.Root.WinnerTo)
	require.NotNil(t, winners.Root.LoserTo)
	assert.Equal(t, 2, *winners.Root.LoserTo)
	assert.True(t, IsWinnerSlot(winners.Root, winners.Root.Children[0]))
	assert.Equal(t, []string{"Bobby"}, winners.Root.Children[1].(*Seed).Team[0].NickNames)

	losers := snapshot.DoubleElim[1]
	assert.Nil(t, losers.Title)
	assert.Empty(t, losers.Root.Winner)
	inner, ok := losers.Root.Children[0].(*Match)
	require.True(t, ok)
	assert.Equal(t, 9, inner.ID)
}

// TestDecodeSnapshot_RoundRobin tests decoding a round robin pool
func TestDecodeSnapshot_RoundRobin(t *testing.T) {
	snapshot, err := DecodeSnapshot([]byte(roundRobinJSON))

	require.NoError(t, err)
	assert.True(t, snapshot.IsRoundRobin())
	require.Len(t, snapshot.RoundRobin, 1)
	assert.Len(t, snapshot.RoundRobin.Matches(), 1)
}

// TestDecodeSnapshot_NoBracket tests an event without a published bracket
func TestDecodeSnapshot_NoBracket(t *testing.T) {
	snapshot, err := DecodeSnapshot([]byte(`{"name": "Singles", "teams": [], "bracket": null}`))

	require.NoError(t, err)
	assert.False(t, snapshot.HasBracket())
}

// TestDecodeSnapshot_EmptyBracketObject tests an empty bracket object is an empty round robin
func TestDecodeSnapshot_EmptyBracketObject(t *testing.T) {
	snapshot, err := DecodeSnapshot([]byte(`{"name": "Singles", "bracket": {}}`))

	require.NoError(t, err)
	assert.True(t, snapshot.IsRoundRobin())
	assert.Empty(t, snapshot.RoundRobin)
}

// TestDecodeSnapshot_BothKinds tests a bracket with both kinds is rejected
func TestDecodeSnapshot_BothKinds(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"bracket": {"doubleElim": [], "roundRobin": []}}`))

	assert.ErrorIs(t, err, ErrMalformed)
}

// TestDecodeSnapshot_OneChild tests a match with a single child is rejected
func TestDecodeSnapshot_OneChild(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"bracket": {"doubleElim": [[null, {"id": 1, "children": [{"seed": []}]}]]}}`))

	assert.ErrorIs(t, err, ErrMalformed)
}

// TestDecodeSnapshot_ChildBothKinds tests a child that is both a match and a seed is rejected
func TestDecodeSnapshot_ChildBothKinds(t *testing.T) {
	data := `{"bracket": {"doubleElim": [[null, {"id": 1, "children": [
		{"seed": [], "match": {"id": 2, "children": [{"seed": []}, {"seed": []}]}},
		{"seed": []}
	]}]]}}`
	_, err := DecodeSnapshot([]byte(data))

	assert.ErrorIs(t, err, ErrMalformed)
}

// TestDecodeSnapshot_EmptyChild tests a child that is neither a match nor a seed is rejected
func TestDecodeSnapshot_EmptyChild(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"bracket": {"doubleElim": [[null, {"id": 1, "children": [{}, {"seed": []}]}]]}}`))

	assert.ErrorIs(t, err, ErrMalformed)
}

// TestDecodeSnapshot_RoundRobinNestedMatch tests a round robin match with a match child is rejected
func TestDecodeSnapshot_RoundRobinNestedMatch(t *testing.T) {
	data := `{"bracket": {"roundRobin": [[{"id": 1, "children": [
		{"match": {"id": 2, "children": [{"seed": []}, {"seed": []}]}},
		{"seed": []}
	]}]]}}`
	_, err := DecodeSnapshot([]byte(data))

	assert.ErrorIs(t, err, ErrMalformed)
}

// TestDecodeSnapshot_InvalidJSON tests invalid json returns an error that is not ErrMalformed
func TestDecodeSnapshot_InvalidJSON(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"name":`))

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
}

// endregion

// region EncodeSnapshot tests

// TestEncodeSnapshot_RoundTrip tests an encoded snapshot decodes to the same snapshot
func TestEncodeSnapshot_RoundTrip(t *testing.T) {
	original, err := DecodeSnapshot([]byte(doubleElimJSON))
	require.NoError(t, err)

	data, err := EncodeSnapshot(original)
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, original.Name, decoded.Name)
	assert.Equal(t, original.DoubleElim[0].Title, decoded.DoubleElim[0].Title)
	assert.Nil(t, decoded.DoubleElim[1].Title)
	assert.Equal(t, collectMatchIDs(original.Roots()), collectMatchIDs(decoded.Roots()))
	assert.Equal(t, original.DoubleElim[0].Root.Scores, decoded.DoubleElim[0].Root.Scores)
}

// TestEncodeSnapshot_EmptyDoubleElim tests a double elimination draw without sections stays double elimination
func TestEncodeSnapshot_EmptyDoubleElim(t *testing.T) {
	original := &Snapshot{Name: "Mixed Doubles", DoubleElim: []Section{}}

	data, err := EncodeSnapshot(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bracket":{"doubleElim":[]}`)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.NotNil(t, decoded.DoubleElim)
	assert.Empty(t, decoded.DoubleElim)
	assert.Nil(t, decoded.RoundRobin)
	assert.False(t, decoded.IsRoundRobin())
}

// TestEncodeSnapshot_EmptyRoundRobin tests an empty round robin is written as one
func TestEncodeSnapshot_EmptyRoundRobin(t *testing.T) {
	data, err := EncodeSnapshot(&Snapshot{Name: "Singles Pool", RoundRobin: Pool{}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bracket":{"roundRobin":[]}`)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.True(t, decoded.IsRoundRobin())
	assert.Nil(t, decoded.DoubleElim)
}

// TestMarshalNode_Seed tests a seed is wrapped in a seed key
func TestMarshalNode_Seed(t *testing.T) {
	data, err := MarshalNode(seed(teamSmith))
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Contains(t, out, "seed")
	assert.NotContains(t, out, "match")
}

// TestMarshalNode_Match tests an undecided match encodes an empty winner list
func TestMarshalNode_Match(t *testing.T) {
	data, err := MarshalNode(match(7, nil, seed(teamSmith), seed(teamBrown)))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"winner":[]`)
	assert.Contains(t, string(data), `"id":7`)
}

// endregion
