// internal/game/rules_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dalmuti-online/server/internal/models"
)

func cards(ranks ...int) []*models.Card {
	out := make([]*models.Card, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, &models.Card{
			ID:       uuid.New(),
			Rank:     r,
			IsJester: r == models.JesterRank,
		})
	}
	return out
}

func TestEffectiveRank(t *testing.T) {
	assert.Equal(t, 7, EffectiveRank(cards(7, 7)))
	assert.Equal(t, 5, EffectiveRank(cards(13, 5, 5)), "jesters adopt the accompanying rank")
	assert.Equal(t, 13, EffectiveRank(cards(13, 13)), "pure jesters rank 13")
}

func TestIsValidMoveLeading(t *testing.T) {
	assert.True(t, IsValidMove(cards(9), nil), "any single card may lead")
	assert.True(t, IsValidMove(cards(4, 4, 4), nil), "any uniform set may lead")
	assert.True(t, IsValidMove(cards(6, 13), nil), "jester joins a rank group")
	assert.True(t, IsValidMove(cards(13, 13), nil), "pure jesters may lead")
	assert.False(t, IsValidMove(nil, nil), "empty selection never plays")
	assert.False(t, IsValidMove(cards(4, 5), nil), "mixed non-jester ranks never play")
}

func TestIsValidMoveResponding(t *testing.T) {
	table := cards(8, 8)

	assert.True(t, IsValidMove(cards(5, 5), table), "lower rank, same size")
	assert.True(t, IsValidMove(cards(7, 13), table), "jester completes a lower pair")
	assert.False(t, IsValidMove(cards(8, 8), table), "equal rank does not beat")
	assert.False(t, IsValidMove(cards(9, 9), table), "higher rank does not beat")
	assert.False(t, IsValidMove(cards(5), table), "size must match")
	assert.False(t, IsValidMove(cards(5, 5, 5), table), "size must match")
	assert.False(t, IsValidMove(cards(13, 13), table), "pure jesters beat nothing")
	assert.False(t, IsValidMove(cards(3, 4), table), "mixed ranks rejected even if lower")
}

func TestIsValidMoveOnPureJesterTable(t *testing.T) {
	table := cards(13, 13)
	assert.True(t, IsValidMove(cards(12, 12), table), "any real pair beats a pure jester pair")
}
