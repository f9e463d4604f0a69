// internal/game/room.go
package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dalmuti-online/server/internal/cache"
	"github.com/dalmuti-online/server/internal/models"
)

// Status is the room's lifecycle state. Transitions only move
// waiting -> playing -> finished; finished is terminal for that game and a
// new one requires resetting back to waiting.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Room holds the entire authoritative state for one game room. All mutation
// goes through the exported methods, which serialize on Mu; broadcast and
// timer re-arming happen before the lock is released, so snapshots always go
// out in mutation order.
type Room struct {
	ID string

	Players          []*models.Player
	CurrentTurnIndex int
	LastPlayedCards  []*models.Card // nil means the trick is open
	LastPlayerID     uuid.UUID      // uuid.Nil when the trick is open
	Deck             []*models.Card
	Status           Status
	Round            int
	Winners          []*models.Player

	TurnTimeLimit int // seconds; <= 0 means unlimited
	TurnStartTime time.Time

	// sessions maps a connection session id to the player it is bound to.
	// Rebinding on join goes session id first, display name second.
	sessions map[uuid.UUID]uuid.UUID

	// turnSerial increments whenever the turn changes hands or the room is
	// reset. A timer callback armed for an older serial is stale and must
	// not synthesize a pass.
	turnSerial int

	Mu sync.Mutex

	// BroadcastFn sends a state snapshot to every connected client of the
	// room. If nil, no broadcast is done.
	BroadcastFn func(snap Snapshot)

	timers *TimerSupervisor
}

// NewRoom builds an empty waiting room attached to the shared timer
// supervisor.
func NewRoom(id string, timers *TimerSupervisor) *Room {
	return &Room{
		ID:       id,
		Status:   StatusWaiting,
		Round:    1,
		sessions: make(map[uuid.UUID]uuid.UUID),
		timers:   timers,
	}
}

// Join binds a session to a player in this room, creating the room roster
// entry if needed. Rebinding order: an existing binding for the session id
// wins; otherwise a roster entry with the same display name is rebound to
// this session (reconnection by name); otherwise a fresh player is appended.
// Valid in any room status.
func (r *Room) Join(sessionID uuid.UUID, name string) *models.Player {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if playerID, ok := r.sessions[sessionID]; ok {
		if p := r.playerByID(playerID); p != nil {
			p.Connected = true
			log.Printf("Room %s: session %s re-joined as player %s", r.ID, sessionID, p.Name)
			r.broadcastState()
			return p
		}
		delete(r.sessions, sessionID)
	}

	for _, p := range r.Players {
		if !p.IsBot && p.Name == name {
			// Reconnection by display name: rebind identity to this session.
			for sid, pid := range r.sessions {
				if pid == p.ID {
					delete(r.sessions, sid)
				}
			}
			r.sessions[sessionID] = p.ID
			p.Connected = true
			log.Printf("Room %s: player %s reconnected under new session %s", r.ID, name, sessionID)
			r.logAction(p.ID, "player_rejoin", nil)
			r.broadcastState()
			return p
		}
	}

	id, _ := uuid.NewRandom()
	p := &models.Player{
		ID:          id,
		Name:        name,
		Hand:        []*models.Card{},
		Connected:   true,
		CharacterID: models.CharacterIDs[rand.Intn(len(models.CharacterIDs))],
	}
	r.Players = append(r.Players, p)
	r.sessions[sessionID] = p.ID
	log.Printf("Room %s: player %s joined (%d players)", r.ID, name, len(r.Players))
	r.logAction(p.ID, "player_join", map[string]interface{}{"name": name})
	r.broadcastState()
	return p
}

// AddBot appends a bot seat with the given difficulty. Only valid while
// waiting; rejected silently otherwise.
func (r *Room) AddBot(level models.BotLevel) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusWaiting {
		log.Printf("Room %s: add_bot ignored, status is %s", r.ID, r.Status)
		return
	}
	if level != models.BotEasy && level != models.BotMedium && level != models.BotHard {
		level = models.BotMedium
	}

	id, _ := uuid.NewRandom()
	bot := &models.Player{
		ID:            id,
		Name:          fmt.Sprintf("Bot %d (%s)", len(r.Players)+1, level),
		Hand:          []*models.Card{},
		IsBot:         true,
		BotDifficulty: level,
		Connected:     true,
		CharacterID:   models.CharacterIDs[rand.Intn(len(models.CharacterIDs))],
	}
	r.Players = append(r.Players, bot)
	r.logAction(bot.ID, "bot_add", map[string]interface{}{"difficulty": string(level)})
	r.broadcastState()
}

// SetTimeLimit configures the per-turn time limit in seconds. Zero or
// negative means unlimited. Only valid while waiting.
func (r *Room) SetTimeLimit(seconds int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusWaiting {
		log.Printf("Room %s: set_time_limit ignored, status is %s", r.ID, r.Status)
		return
	}
	r.TurnTimeLimit = seconds
	log.Printf("Room %s: turn time limit set to %ds", r.ID, seconds)
	r.logAction(uuid.Nil, "set_time_limit", map[string]interface{}{"seconds": seconds})
	r.broadcastState()
}

// StartGame deals a fresh shuffled deck and begins play. The holder of the
// sole rank-1 card leads; if no one holds it an arbitrary seat is chosen.
func (r *Room) StartGame() {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusWaiting {
		log.Printf("Room %s: start_game ignored, status is %s", r.ID, r.Status)
		return
	}
	if len(r.Players) == 0 {
		log.Printf("Room %s: start_game ignored, no players", r.ID)
		return
	}
	if len(r.Players) < 2 {
		log.Printf("Room %s: starting with %d player(s), 2+ recommended", r.ID, len(r.Players))
	}

	r.Status = StatusPlaying
	r.Deck = NewDeck()
	Deal(r.Players, r.Deck)
	r.Deck = nil // fully dealt
	r.LastPlayedCards = nil
	r.LastPlayerID = uuid.Nil

	lead := -1
	for i, p := range r.Players {
		for _, c := range p.Hand {
			if c.Rank == 1 {
				lead = i
				break
			}
		}
		if lead != -1 {
			break
		}
	}
	if lead == -1 {
		// Defensive fallback; a full deal always places the rank-1 card.
		lead = rand.Intn(len(r.Players))
	}
	r.setTurn(lead)

	log.Printf("Room %s: game started with %d players, %s leads", r.ID, len(r.Players), r.Players[lead].Name)
	r.logAction(r.Players[lead].ID, "game_start", map[string]interface{}{"players": len(r.Players)})
	r.broadcastState()
	r.armTurnTimer()
	r.runBotTurns()
}

// PlayCards plays the identified cards from the actor's hand onto the trick.
// Rejected silently when it is not the actor's turn, a card is not in their
// hand, or the move fails validation; the actor then retains the turn and no
// state changes.
func (r *Room) PlayCards(playerID uuid.UUID, cardIDs []uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusPlaying {
		log.Printf("Room %s: play ignored, status is %s", r.ID, r.Status)
		return
	}
	idx := r.indexOf(playerID)
	if idx == -1 || idx != r.CurrentTurnIndex {
		log.Printf("Room %s: play ignored, player %s does not hold the turn", r.ID, playerID)
		return
	}

	selected := pickFromHand(r.Players[idx].Hand, cardIDs)
	if selected == nil {
		log.Printf("Room %s: play ignored, cards not in hand of %s", r.ID, r.Players[idx].Name)
		return
	}
	if !IsValidMove(selected, r.LastPlayedCards) {
		log.Printf("Room %s: illegal move by %s (%d cards on %d)", r.ID, r.Players[idx].Name, len(selected), len(r.LastPlayedCards))
		return
	}

	r.applyPlay(idx, selected)
	r.runBotTurns()
}

// Pass marks the actor as passed for this round and resolves the trick if
// that leaves at most one eligible player.
func (r *Room) Pass(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusPlaying {
		log.Printf("Room %s: pass ignored, status is %s", r.ID, r.Status)
		return
	}
	idx := r.indexOf(playerID)
	if idx == -1 || idx != r.CurrentTurnIndex {
		log.Printf("Room %s: pass ignored, player %s does not hold the turn", r.ID, playerID)
		return
	}

	r.applyPass(idx)
	r.runBotTurns()
}

// Leave removes the player from the roster entirely. Below two players
// mid-game the whole room resets to waiting; otherwise the turn index is
// repaired and, if the leaver held the turn, play moves to the next eligible
// seat.
func (r *Room) Leave(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := r.indexOf(playerID)
	if idx == -1 {
		return
	}
	name := r.Players[idx].Name
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	for sid, pid := range r.sessions {
		if pid == playerID {
			delete(r.sessions, sid)
		}
	}
	log.Printf("Room %s: player %s left (%d players remain)", r.ID, name, len(r.Players))
	r.logAction(playerID, "player_leave", nil)

	if r.Status == StatusPlaying {
		if len(r.Players) < 2 {
			r.resetToWaiting()
			r.broadcastState()
			return
		}

		if idx < r.CurrentTurnIndex {
			r.CurrentTurnIndex--
		}
		if r.CurrentTurnIndex >= len(r.Players) {
			r.CurrentTurnIndex = 0
		}
		if idx == r.CurrentTurnIndex {
			// The leaver held the turn: scan from this seat onward.
			next := r.CurrentTurnIndex % len(r.Players)
			for probes := 0; probes < len(r.Players); probes++ {
				p := r.Players[next]
				if !p.HasPassed && p.Active() {
					break
				}
				next = (next + 1) % len(r.Players)
			}
			r.CurrentTurnIndex = next
		}
		r.turnSerial++
		r.broadcastState()
		r.armTurnTimer()
		r.runBotTurns()
		return
	}

	r.broadcastState()
}

// HandleDisconnect marks the player's connection as gone without removing
// them; only an explicit leave removes a seat.
func (r *Room) HandleDisconnect(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if p := r.playerByID(playerID); p != nil && p.Connected {
		p.Connected = false
		log.Printf("Room %s: player %s disconnected", r.ID, p.Name)
		r.broadcastState()
	}
}

// applyPlay mutates state for one accepted play: removes the cards, records
// the trick, books a finished hand, detects game over, advances the turn
// (clearing the trick on self-return), broadcasts and re-arms the timer.
// Assumes the lock is held.
func (r *Room) applyPlay(idx int, selected []*models.Card) {
	player := r.Players[idx]
	player.Hand = removeCards(player.Hand, selected)
	r.LastPlayedCards = selected
	r.LastPlayerID = player.ID
	r.logAction(player.ID, "play_cards", map[string]interface{}{
		"count": len(selected),
		"rank":  EffectiveRank(selected),
	})

	if len(player.Hand) == 0 {
		player.FinishedRank = len(r.Winners) + 1
		r.Winners = append(r.Winners, player)
		log.Printf("Room %s: %s finished at rank %d", r.ID, player.Name, player.FinishedRank)

		if len(r.Winners) >= len(r.Players)-1 {
			r.finishGame()
			r.broadcastState()
			return
		}
	}

	next := nextEligibleIndex(r.Players, r.CurrentTurnIndex)
	if r.Players[next].ID == player.ID {
		// Everyone else has passed or finished: the trick closes and the
		// same player leads again.
		r.clearTrick()
	}
	r.setTurn(next)

	r.broadcastState()
	r.armTurnTimer()
}

// applyPass mutates state for one accepted pass, resolving the round when
// the pass leaves at most one eligible player, and applying the safety-net
// resolution when the scan returns to whoever played the current trick.
// Assumes the lock is held.
func (r *Room) applyPass(idx int) {
	passer := r.Players[idx]
	passer.HasPassed = true
	r.logAction(passer.ID, "pass_turn", nil)

	var active, unpassed []*models.Player
	for _, p := range r.Players {
		if p.Active() {
			active = append(active, p)
			if !p.HasPassed {
				unpassed = append(unpassed, p)
			}
		}
	}

	var winner *models.Player
	switch {
	case len(unpassed) == 1:
		winner = unpassed[0]
	case len(unpassed) == 0 && len(active) > 0:
		// Everyone passed: the trick goes to whoever last played, or to the
		// first active seat if nobody has played yet this round.
		winner = r.playerByID(r.LastPlayerID)
		if winner == nil {
			winner = active[0]
		}
	}

	if winner != nil {
		r.resolveRound(winner)
	} else {
		next := nextEligibleIndex(r.Players, r.CurrentTurnIndex)
		if r.LastPlayerID != uuid.Nil && r.Players[next].ID == r.LastPlayerID {
			// Safety net: turn order cycled all the way back to the player
			// who played the trick without the pass count catching it.
			r.resolveRound(r.Players[next])
		} else {
			r.setTurn(next)
		}
	}

	r.broadcastState()
	r.armTurnTimer()
}

// resolveRound closes the current trick in winner's favor: the round counter
// increments, the table and pass flags clear, and the winner (or the next
// active seat after them when they have already emptied their hand) leads
// the next trick. Ends the game instead when at most one active player
// remains. Assumes the lock is held.
func (r *Room) resolveRound(winner *models.Player) {
	r.Round++
	r.clearTrick()
	log.Printf("Room %s: round %d over, trick to %s", r.ID, r.Round-1, winner.Name)
	r.logAction(winner.ID, "round_over", map[string]interface{}{"round": r.Round - 1})

	if r.activeCount() <= 1 {
		r.finishGame()
		return
	}

	widx := r.indexOf(winner.ID)
	if !winner.Active() {
		r.setTurn(nextActiveIndex(r.Players, widx))
	} else {
		r.setTurn(widx)
	}
}

// finishGame seats the last remaining player at the bottom rank and moves
// the room to its terminal status. Assumes the lock is held.
func (r *Room) finishGame() {
	r.Status = StatusFinished
	for _, p := range r.Players {
		if p.Active() {
			p.FinishedRank = len(r.Players)
			r.Winners = append(r.Winners, p)
			break
		}
	}
	r.turnSerial++
	r.timers.Cancel(r.ID)
	r.TurnStartTime = time.Time{}
	log.Printf("Room %s: game finished after %d rounds", r.ID, r.Round)
	r.logAction(uuid.Nil, "game_finished", map[string]interface{}{"rounds": r.Round})
}

// runBotTurns plays out consecutive bot turns as an explicit loop, emitting
// a snapshot per step, until a human holds the turn or the game ends.
// Assumes the lock is held.
func (r *Room) runBotTurns() {
	for r.Status == StatusPlaying {
		cur := r.Players[r.CurrentTurnIndex]
		if !cur.IsBot {
			return
		}
		move := BestMove(cur.Hand, r.LastPlayedCards, cur.BotDifficulty)
		if len(move) == 0 {
			r.applyPass(r.CurrentTurnIndex)
			continue
		}
		r.applyPlay(r.CurrentTurnIndex, move)
	}
}

// armTurnTimer records the turn start and (re)arms the room's countdown when
// a limit is configured. The expiry callback captures the turn serial and
// seat armed for, and re-validates both before synthesizing a pass, so a
// timer that outlived its turn is a no-op. Assumes the lock is held.
func (r *Room) armTurnTimer() {
	if r.Status != StatusPlaying || r.TurnTimeLimit <= 0 {
		r.timers.Cancel(r.ID)
		return
	}
	r.TurnStartTime = time.Now()
	serial := r.turnSerial
	seat := r.CurrentTurnIndex
	r.timers.Arm(r.ID, time.Duration(r.TurnTimeLimit)*time.Second, func() {
		r.handleTurnTimeout(serial, seat)
	})
}

// handleTurnTimeout synthesizes a pass for the seat the timer was armed for,
// unless the turn has moved on since.
func (r *Room) handleTurnTimeout(serial, seat int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Status != StatusPlaying || serial != r.turnSerial || seat != r.CurrentTurnIndex {
		log.Printf("Room %s: stale turn timer fired (serial %d, seat %d), ignoring", r.ID, serial, seat)
		return
	}
	log.Printf("Room %s: turn time limit exceeded for %s, passing", r.ID, r.Players[seat].Name)
	r.logAction(r.Players[seat].ID, "turn_timeout", nil)
	r.applyPass(seat)
	r.runBotTurns()
}

// resetToWaiting clears the whole game back to roster assembly. Assumes the
// lock is held.
func (r *Room) resetToWaiting() {
	r.Status = StatusWaiting
	r.Round = 1
	r.CurrentTurnIndex = 0
	r.LastPlayedCards = nil
	r.LastPlayerID = uuid.Nil
	r.Deck = nil
	r.Winners = nil
	for _, p := range r.Players {
		p.Hand = []*models.Card{}
		p.HasPassed = false
		p.FinishedRank = 0
	}
	r.turnSerial++
	r.timers.Cancel(r.ID)
	r.TurnStartTime = time.Time{}
	log.Printf("Room %s: reset to waiting", r.ID)
}

// clearTrick opens the table and clears every pass flag. Assumes the lock is
// held.
func (r *Room) clearTrick() {
	r.LastPlayedCards = nil
	r.LastPlayerID = uuid.Nil
	for _, p := range r.Players {
		p.HasPassed = false
	}
}

// setTurn moves the turn to the given seat and bumps the serial guarding
// stale timers. Assumes the lock is held.
func (r *Room) setTurn(idx int) {
	r.CurrentTurnIndex = idx
	r.turnSerial++
}

func (r *Room) activeCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Active() {
			n++
		}
	}
	return n
}

func (r *Room) indexOf(playerID uuid.UUID) int {
	for i, p := range r.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) playerByID(playerID uuid.UUID) *models.Player {
	if playerID == uuid.Nil {
		return nil
	}
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// broadcastState emits the full room snapshot to all connected clients.
// Assumes the lock is held; the handler layer marshals synchronously so
// snapshots leave in mutation order.
func (r *Room) broadcastState() {
	if r.BroadcastFn != nil {
		r.BroadcastFn(r.snapshot())
	}
}

// logAction pushes an action record onto the external feed, if configured.
func (r *Room) logAction(actorID uuid.UUID, action string, payload map[string]interface{}) {
	if cache.Rdb == nil {
		return
	}
	record := cache.RoomActionRecord{
		RoomID:     r.ID,
		ActorID:    actorID,
		ActionType: action,
		Payload:    payload,
		Timestamp:  time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := cache.PublishRoomAction(ctx, record); err != nil {
			log.Printf("Room %s: failed to publish action %s: %v", r.ID, action, err)
		}
	}()
}

// pickFromHand resolves card ids against a hand, returning the matching
// cards or nil if any id is missing or duplicated.
func pickFromHand(hand []*models.Card, cardIDs []uuid.UUID) []*models.Card {
	if len(cardIDs) == 0 {
		return nil
	}
	selected := make([]*models.Card, 0, len(cardIDs))
	seen := make(map[uuid.UUID]bool, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] {
			return nil
		}
		seen[id] = true
		found := false
		for _, c := range hand {
			if c.ID == id {
				selected = append(selected, c)
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}
	return selected
}

// removeCards returns hand minus the given cards, preserving order.
func removeCards(hand, cards []*models.Card) []*models.Card {
	drop := make(map[uuid.UUID]bool, len(cards))
	for _, c := range cards {
		drop[c.ID] = true
	}
	kept := hand[:0]
	for _, c := range hand {
		if !drop[c.ID] {
			kept = append(kept, c)
		}
	}
	return kept
}
