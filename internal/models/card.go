// internal/models/card.go
package models

import "github.com/google/uuid"

// Card is a single immutable card instance. Rank 1 is the best card, 12 the
// most ordinary, 13 the Jester wildcard.
type Card struct {
	ID       uuid.UUID `json:"id"`
	Rank     int       `json:"rank"`
	Name     string    `json:"name"`
	IsJester bool      `json:"isJester,omitempty"`
}

// JesterRank is the rank a wildcard-only selection resolves to.
const JesterRank = 13

// CardDefinition describes one rank of the canonical deck: its rank, how many
// copies exist, and the display name.
type CardDefinition struct {
	Rank     int
	Count    int
	Name     string
	IsJester bool
}

// CardDefinitions is the fixed deck composition: n copies of rank n for ranks
// 1 through 12, plus two Jesters.
var CardDefinitions = []CardDefinition{
	{Rank: 1, Count: 1, Name: "Dalmuti"},
	{Rank: 2, Count: 2, Name: "Archbishop"},
	{Rank: 3, Count: 3, Name: "Earl Marshal"},
	{Rank: 4, Count: 4, Name: "Baroness"},
	{Rank: 5, Count: 5, Name: "Abbess"},
	{Rank: 6, Count: 6, Name: "Knight"},
	{Rank: 7, Count: 7, Name: "Seamstress"},
	{Rank: 8, Count: 8, Name: "Mason"},
	{Rank: 9, Count: 9, Name: "Cook"},
	{Rank: 10, Count: 10, Name: "Shepherdess"},
	{Rank: 11, Count: 11, Name: "Stonecutter"},
	{Rank: 12, Count: 12, Name: "Peasant"},
	{Rank: JesterRank, Count: 2, Name: "Jester", IsJester: true},
}

// DeckSize is the total number of cards in the canonical deck.
func DeckSize() int {
	n := 0
	for _, def := range CardDefinitions {
		n += def.Count
	}
	return n
}
