// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dalmuti-online/server/internal/game"
	"github.com/dalmuti-online/server/internal/middleware"
	"github.com/dalmuti-online/server/internal/models"
)

// ClientMessage is the JSON envelope for every inbound websocket message.
// Fields are populated per action type; unknown or malformed actions are
// ignored silently per the room's no-op error model.
type ClientMessage struct {
	Type       string      `json:"type"`
	RoomID     string      `json:"roomId,omitempty"`
	Nickname   string      `json:"nickname,omitempty"`
	Difficulty string      `json:"difficulty,omitempty"`
	Limit      int         `json:"limit,omitempty"`
	Cards      []uuid.UUID `json:"cards,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// stateUpdate is the single outbound broadcast type carrying the full room
// snapshot.
type stateUpdate struct {
	Type  string        `json:"type"`
	State game.Snapshot `json:"state"`
}

// chatMessage is relayed to the room unchanged; the core never inspects it.
type chatMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// client is one websocket connection. Outbound messages go through a
// buffered channel drained by writePump, so fan-out never blocks room logic
// and per-connection ordering is preserved.
type client struct {
	sessionID uuid.UUID
	playerID  uuid.UUID
	roomID    string
	conn      *websocket.Conn
	out       chan []byte
	logger    *logrus.Logger
}

// send enqueues non-blockingly; a full or closed channel drops the message
// with a warning (slow consumer, connection on the way out).
func (c *client) send(data []byte) {
	select {
	case c.out <- data:
	default:
		c.logger.Warnf("client %s: outbound channel full, dropping message", c.sessionID)
	}
}

// writePump drains the outbound channel onto the websocket until the channel
// closes or a write fails.
func (c *client) writePump(ctx context.Context) {
	for data := range c.out {
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := c.conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			c.logger.Warnf("client %s: write failed: %v", c.sessionID, err)
			return
		}
	}
}

// RoomWSHandler upgrades the connection, attaches a session identity, counts
// the visitor, and runs the read loop routing actions to rooms.
func RoomWSHandler(logger *logrus.Logger, s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Cookie must be set before the upgrade writes headers.
		sessionID, err := EnsureSession(w, r)
		if err != nil {
			logger.Warnf("session setup failed: %v", err)
			http.Error(w, "session setup failed", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"dalmuti"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		c := &client{
			sessionID: sessionID,
			conn:      conn,
			out:       make(chan []byte, 64),
			logger:    logger,
		}
		s.addClient(c)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go c.writePump(ctx)

		// Every connection counts as a visit; broadcast the new total live.
		count, err := s.Visitors.Increment()
		if err != nil {
			logger.Warnf("visitor counter: %v", err)
		}
		if data, err := json.Marshal(map[string]interface{}{"type": "visitor_count", "count": count}); err == nil {
			s.sendToAll(data)
		}

		readClientMessages(ctx, c, s)

		s.removeClient(c)
		close(c.out)
		if c.roomID != "" && c.playerID != uuid.Nil {
			if room, ok := s.Rooms.Get(c.roomID); ok {
				room.HandleDisconnect(c.playerID)
			}
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readClientMessages decodes inbound envelopes and routes them until the
// connection closes or the context is cancelled.
func readClientMessages(ctx context.Context, c *client, s *RoomServer) {
	logger := c.logger
	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				logger.Infof("client %s: websocket closed", c.sessionID)
			} else {
				logger.Warnf("client %s: read error: %v", c.sessionID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("client %s: invalid JSON: %v", c.sessionID, err)
			continue
		}
		logger.Debugf("client %s: action %s room %s", c.sessionID, msg.Type, msg.RoomID)

		switch msg.Type {
		case "join_room":
			if msg.RoomID == "" || msg.Nickname == "" {
				continue
			}
			room := s.Rooms.GetOrCreate(msg.RoomID)
			attachBroadcast(room, s)
			s.attachToRoom(c, msg.RoomID)
			p := room.Join(c.sessionID, msg.Nickname)
			c.playerID = p.ID

		case "add_bot":
			if room, ok := s.Rooms.Get(msg.RoomID); ok {
				room.AddBot(models.BotLevel(msg.Difficulty))
			}

		case "set_time_limit":
			if room, ok := s.Rooms.Get(msg.RoomID); ok {
				room.SetTimeLimit(msg.Limit)
			}

		case "start_game":
			if room, ok := s.Rooms.Get(msg.RoomID); ok {
				room.StartGame()
			}

		case "play_cards":
			if room, ok := s.Rooms.Get(msg.RoomID); ok {
				room.PlayCards(c.playerID, msg.Cards)
			}

		case "pass_turn":
			if room, ok := s.Rooms.Get(msg.RoomID); ok {
				room.Pass(c.playerID)
			}

		case "leave_room":
			if room, ok := s.Rooms.Get(msg.RoomID); ok {
				room.Leave(c.playerID)
				c.playerID = uuid.Nil
			}

		case "chat_message":
			// Relayed unchanged; only an id and timestamp are attached.
			if msg.RoomID == "" {
				continue
			}
			id, _ := uuid.NewRandom()
			relay := chatMessage{
				Type:      "chat_message",
				ID:        id.String(),
				Sender:    msg.Nickname,
				Message:   msg.Message,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
			if data, err := json.Marshal(relay); err == nil {
				s.sendToRoom(msg.RoomID, data)
			}

		case "ping":
			c.send([]byte(`{"type":"pong"}`))

		default:
			logger.Warnf("client %s: unknown action type %q", c.sessionID, msg.Type)
		}
	}
}

// attachBroadcast wires the room's snapshot broadcast into the server's
// fan-out, once per room. Marshaling happens inside the callback, while the
// room lock is held, so snapshots are serialized in mutation order.
func attachBroadcast(room *game.Room, s *RoomServer) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if room.BroadcastFn != nil {
		return
	}
	roomID := room.ID
	room.BroadcastFn = func(snap game.Snapshot) {
		data, err := json.Marshal(stateUpdate{Type: "game_state_update", State: snap})
		if err != nil {
			s.Logger.Errorf("room %s: failed to marshal snapshot: %v", roomID, err)
			return
		}
		s.sendToRoom(roomID, data)
	}
}
