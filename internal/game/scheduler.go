// internal/game/scheduler.go
package game

import "github.com/dalmuti-online/server/internal/models"

// nextEligibleIndex scans forward from the seat after `from`, wrapping
// around, for the next player who has not passed this round and still holds
// cards. The scan is bounded to len(players) probes so it terminates even
// when nobody is eligible; it then lands back where it started, which the
// caller must treat as a terminal condition (self-return or round over).
func nextEligibleIndex(players []*models.Player, from int) int {
	next := (from + 1) % len(players)
	for probes := 0; probes < len(players); probes++ {
		p := players[next]
		if !p.HasPassed && p.Active() {
			return next
		}
		next = (next + 1) % len(players)
	}
	return next
}

// nextActiveIndex scans forward from the seat after `from` for the next
// player still holding cards, ignoring pass flags. Used to seat the opening
// lead when a trick winner has already emptied their hand. Same bounded-scan
// guarantee as nextEligibleIndex.
func nextActiveIndex(players []*models.Player, from int) int {
	next := (from + 1) % len(players)
	for probes := 0; probes < len(players); probes++ {
		if players[next].Active() {
			return next
		}
		next = (next + 1) % len(players)
	}
	return next
}
