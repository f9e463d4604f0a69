// internal/models/player.go
package models

import (
	"github.com/google/uuid"
)

// BotLevel selects the bot decision policy.
type BotLevel string

const (
	BotEasy   BotLevel = "easy"
	BotMedium BotLevel = "medium"
	BotHard   BotLevel = "hard"
)

// CharacterIDs are the cosmetic avatar identifiers a new player can be
// assigned.
var CharacterIDs = []string{
	"king", "queen", "knight", "merchant", "peasant", "jester", "wizard", "thief",
}

// Player is one seat in a room's roster. Position in the roster list is the
// turn order. Hand is kept sorted rank-ascending.
type Player struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Hand          []*Card   `json:"hand"`
	IsBot         bool      `json:"isBot"`
	BotDifficulty BotLevel  `json:"botDifficulty,omitempty"`
	HasPassed     bool      `json:"hasPassed"`
	FinishedRank  int       `json:"finishedRank,omitempty"`
	CharacterID   string    `json:"characterId"`

	// Connected tracks whether a live websocket client is bound to this
	// seat. Disconnects keep the seat; reconnection rebinds it.
	Connected bool `json:"connected"`
}

// Active reports whether the player still holds cards.
func (p *Player) Active() bool {
	return len(p.Hand) > 0
}
