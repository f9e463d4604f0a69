// internal/game/rules.go
package game

import "github.com/dalmuti-online/server/internal/models"

// EffectiveRank is the rank a set of cards compares at: the rank of the first
// non-Jester card, or 13 when the set is entirely Jesters.
func EffectiveRank(cards []*models.Card) int {
	for _, c := range cards {
		if !c.IsJester {
			return c.Rank
		}
	}
	return models.JesterRank
}

// IsValidMove reports whether selected may legally be played onto tableTop.
// A nil tableTop means the trick is open and any non-empty single-rank set
// may lead. Otherwise the selection must match tableTop's size exactly and
// beat it with a strictly lower effective rank (lower is better). Jesters
// adopt the rank of the cards they accompany; mixed non-Jester ranks are
// never legal. Pure function, no side effects.
func IsValidMove(selected, tableTop []*models.Card) bool {
	if len(selected) == 0 {
		return false
	}

	moveRank := models.JesterRank
	for _, c := range selected {
		if c.IsJester {
			continue
		}
		if moveRank == models.JesterRank {
			moveRank = c.Rank
		} else if c.Rank != moveRank {
			return false
		}
	}

	if tableTop == nil {
		return true
	}

	if len(selected) != len(tableTop) {
		return false
	}

	return moveRank < EffectiveRank(tableTop)
}
