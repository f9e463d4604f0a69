// internal/game/room_store_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStoreGetOrCreate(t *testing.T) {
	s := NewRoomStore(NewTimerSupervisor())

	r1 := s.GetOrCreate("alpha")
	require.NotNil(t, r1)
	assert.Equal(t, "alpha", r1.ID)
	assert.Equal(t, StatusWaiting, r1.Status)

	r2 := s.GetOrCreate("alpha")
	assert.Same(t, r1, r2, "same id returns the same room")

	r3 := s.GetOrCreate("beta")
	assert.NotSame(t, r1, r3)
}

func TestRoomStoreGet(t *testing.T) {
	s := NewRoomStore(NewTimerSupervisor())

	_, ok := s.Get("missing")
	assert.False(t, ok)

	created := s.GetOrCreate("alpha")
	got, ok := s.Get("alpha")
	assert.True(t, ok)
	assert.Same(t, created, got)
}
