// internal/game/bot.go
package game

import (
	"math/rand"
	"sort"

	"github.com/dalmuti-online/server/internal/models"
)

// rankGroups buckets a hand by rank, Jesters under rank 13.
func rankGroups(hand []*models.Card) map[int][]*models.Card {
	groups := make(map[int][]*models.Card)
	for _, c := range hand {
		groups[c.Rank] = append(groups[c.Rank], c)
	}
	return groups
}

// sortedRanksDesc returns the group ranks ordered worst-to-best
// (numerically descending; high rank = weak card).
func sortedRanksDesc(groups map[int][]*models.Card) []int {
	ranks := make([]int, 0, len(groups))
	for r := range groups {
		ranks = append(ranks, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	return ranks
}

// BestMove computes the bot's play for the given hand and table state, or
// nil when the bot should pass.
//
// Leading an open trick, every tier plays the full group of the worst rank
// held. Responding, the legal candidates are the rank groups that beat the
// table's effective rank and hold enough cards to match its size; easy picks
// one uniformly at random, medium and hard win as cheaply as possible by
// taking the worst legal rank, keeping strong cards back. Deterministic for
// identical inputs except for the easy tier's random pick.
func BestMove(hand, tableTop []*models.Card, level models.BotLevel) []*models.Card {
	if len(hand) == 0 {
		return nil
	}
	groups := rankGroups(hand)

	if tableTop == nil {
		ranks := sortedRanksDesc(groups)
		return groups[ranks[0]]
	}

	required := len(tableTop)
	tableRank := EffectiveRank(tableTop)

	var candidates []int
	for _, r := range sortedRanksDesc(groups) {
		if r < tableRank && len(groups[r]) >= required {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	pick := candidates[0]
	if level == models.BotEasy {
		pick = candidates[rand.Intn(len(candidates))]
	}
	return groups[pick][:required]
}
