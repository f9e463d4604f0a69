// internal/game/room_store.go
package game

import "sync"

// RoomStore is the process-wide registry of active rooms keyed by room id.
// Rooms are created lazily on first join and live for the process lifetime.
type RoomStore struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	timers *TimerSupervisor
}

// NewRoomStore creates an empty registry sharing one timer supervisor
// across all rooms.
func NewRoomStore(timers *TimerSupervisor) *RoomStore {
	return &RoomStore{
		rooms:  make(map[string]*Room),
		timers: timers,
	}
}

// GetOrCreate returns the room for id, creating a fresh waiting room if none
// exists yet.
func (s *RoomStore) GetOrCreate(id string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		return r
	}
	r := NewRoom(id, s.timers)
	s.rooms[id] = r
	return r
}

// Get returns the room for id, or nil and false when it does not exist.
func (s *RoomStore) Get(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}
