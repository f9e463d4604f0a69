// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"

	"github.com/dalmuti-online/server/internal/models"
)

// Snapshot is the full room state broadcast to every client after each
// accepted mutation. The server is authoritative; clients render this
// verbatim.
type Snapshot struct {
	RoomID           string           `json:"roomId"`
	Players          []*models.Player `json:"players"`
	CurrentTurnIndex int              `json:"currentTurnIndex"`
	LastPlayedCards  []*models.Card   `json:"lastPlayedCards"`
	LastPlayerID     string           `json:"lastPlayerId,omitempty"`
	Deck             []*models.Card   `json:"deck"`
	Status           Status           `json:"status"`
	Round            int              `json:"round"`
	Winners          []*models.Player `json:"winners"`
	TurnTimeLimit    int              `json:"turnTimeLimit,omitempty"`
	TurnStartTime    int64            `json:"turnStartTime,omitempty"` // unix millis
}

// snapshot builds the broadcast view of the room. Assumes the lock is held;
// the result references live state and must be marshaled before the lock is
// released.
func (r *Room) snapshot() Snapshot {
	snap := Snapshot{
		RoomID:           r.ID,
		Players:          r.Players,
		CurrentTurnIndex: r.CurrentTurnIndex,
		LastPlayedCards:  r.LastPlayedCards,
		Deck:             r.Deck,
		Status:           r.Status,
		Round:            r.Round,
		Winners:          r.Winners,
		TurnTimeLimit:    r.TurnTimeLimit,
	}
	if r.LastPlayerID != uuid.Nil {
		snap.LastPlayerID = r.LastPlayerID.String()
	}
	if !r.TurnStartTime.IsZero() {
		snap.TurnStartTime = r.TurnStartTime.UnixMilli()
	}
	return snap
}
