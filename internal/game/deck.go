// internal/game/deck.go
package game

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/dalmuti-online/server/internal/models"
)

// NewDeck builds the canonical deck from the fixed composition, giving every
// card a fresh instance id.
func NewDeck() []*models.Card {
	var deck []*models.Card
	for _, def := range models.CardDefinitions {
		for i := 0; i < def.Count; i++ {
			id, _ := uuid.NewRandom()
			deck = append(deck, &models.Card{
				ID:       id,
				Rank:     def.Rank,
				Name:     def.Name,
				IsJester: def.IsJester,
			})
		}
	}
	return deck
}

// Shuffle returns a shuffled copy of the deck.
func Shuffle(deck []*models.Card) []*models.Card {
	shuffled := make([]*models.Card, len(deck))
	copy(shuffled, deck)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Deal shuffles the deck and distributes every card round-robin across the
// players. Transient per-player state (pass flag, finish rank) is cleared and
// each hand is sorted rank-ascending.
func Deal(players []*models.Player, deck []*models.Card) {
	shuffled := Shuffle(deck)

	for _, p := range players {
		p.Hand = make([]*models.Card, 0, len(shuffled)/len(players)+1)
		p.HasPassed = false
		p.FinishedRank = 0
	}

	for i, card := range shuffled {
		p := players[i%len(players)]
		p.Hand = append(p.Hand, card)
	}

	for _, p := range players {
		sort.Slice(p.Hand, func(i, j int) bool {
			return p.Hand[i].Rank < p.Hand[j].Rank
		})
	}
}
