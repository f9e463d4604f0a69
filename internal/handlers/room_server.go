// internal/handlers/room_server.go
package handlers

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dalmuti-online/server/internal/game"
	"github.com/dalmuti-online/server/internal/visitors"
)

// RoomServer ties the room registry, the shared timer supervisor, and the
// visitor counter to the websocket transport. It tracks which clients are
// attached to which room so room broadcasts and the global visitor count can
// fan out.
type RoomServer struct {
	Rooms    *game.RoomStore
	Timers   *game.TimerSupervisor
	Visitors *visitors.Counter
	Logger   *logrus.Logger

	mu          sync.Mutex
	clients     map[*client]bool
	roomClients map[string]map[*client]bool
}

// NewRoomServer builds a server with an empty registry and a fresh timer
// supervisor.
func NewRoomServer(logger *logrus.Logger, counter *visitors.Counter) *RoomServer {
	timers := game.NewTimerSupervisor()
	return &RoomServer{
		Rooms:       game.NewRoomStore(timers),
		Timers:      timers,
		Visitors:    counter,
		Logger:      logger,
		clients:     make(map[*client]bool),
		roomClients: make(map[string]map[*client]bool),
	}
}

func (s *RoomServer) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = true
}

func (s *RoomServer) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
	if c.roomID != "" {
		if peers, ok := s.roomClients[c.roomID]; ok {
			delete(peers, c)
			if len(peers) == 0 {
				delete(s.roomClients, c.roomID)
			}
		}
	}
}

// attachToRoom registers the client as a receiver of the room's broadcasts,
// detaching it from any previous room first.
func (s *RoomServer) attachToRoom(c *client, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.roomID != "" && c.roomID != roomID {
		if peers, ok := s.roomClients[c.roomID]; ok {
			delete(peers, c)
		}
	}
	c.roomID = roomID
	if s.roomClients[roomID] == nil {
		s.roomClients[roomID] = make(map[*client]bool)
	}
	s.roomClients[roomID][c] = true
}

// sendToRoom enqueues the already-marshaled message to every client attached
// to the room, in registration order of the fan-out map. Per-client channels
// preserve per-room ordering as long as enqueues happen under the room lock,
// which the broadcast path guarantees.
func (s *RoomServer) sendToRoom(roomID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.roomClients[roomID] {
		c.send(data)
	}
}

// sendToAll enqueues the message to every connected client.
func (s *RoomServer) sendToAll(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.send(data)
	}
}
