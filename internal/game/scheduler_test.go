// internal/game/scheduler_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dalmuti-online/server/internal/models"
)

func seat(passed bool, handSize int) *models.Player {
	p := &models.Player{HasPassed: passed}
	for i := 0; i < handSize; i++ {
		p.Hand = append(p.Hand, &models.Card{Rank: 5})
	}
	return p
}

func TestNextEligibleIndexSkipsPassedAndFinished(t *testing.T) {
	players := []*models.Player{
		seat(false, 3), // 0
		seat(true, 3),  // 1 passed
		seat(false, 0), // 2 finished
		seat(false, 3), // 3
	}
	assert.Equal(t, 3, nextEligibleIndex(players, 0))
	assert.Equal(t, 0, nextEligibleIndex(players, 3), "wraps around")
}

func TestNextEligibleIndexSelfReturn(t *testing.T) {
	players := []*models.Player{
		seat(false, 3), // 0, the only eligible seat
		seat(true, 3),
		seat(true, 3),
	}
	assert.Equal(t, 0, nextEligibleIndex(players, 0), "scan comes back to the mover")
}

func TestNextEligibleIndexTerminatesWithNoneEligible(t *testing.T) {
	players := []*models.Player{
		seat(true, 3),
		seat(true, 0),
		seat(true, 3),
	}
	got := nextEligibleIndex(players, 0)
	assert.GreaterOrEqual(t, got, 0)
	assert.Less(t, got, len(players))
}

func TestNextActiveIndexIgnoresPassFlags(t *testing.T) {
	players := []*models.Player{
		seat(false, 0), // 0 finished
		seat(true, 2),  // 1 passed but active
		seat(false, 2), // 2
	}
	assert.Equal(t, 1, nextActiveIndex(players, 0))
	assert.Equal(t, 1, nextActiveIndex(players, 2), "skips the finished seat while wrapping")
}
