// internal/handlers/session_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalmuti-online/server/internal/auth"
)

func TestEnsureSessionMintsAndReplays(t *testing.T) {
	require.NoError(t, auth.Init())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)

	sessionID, err := EnsureSession(w, r)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sessionID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)

	// Replaying the cookie keeps the same session id and sets nothing new.
	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r2.AddCookie(cookies[0])

	again, err := EnsureSession(w2, r2)
	require.NoError(t, err)
	assert.Equal(t, sessionID, again)
	assert.Empty(t, w2.Result().Cookies())
}

func TestEnsureSessionReplacesBadCookie(t *testing.T) {
	require.NoError(t, auth.Init())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})

	sessionID, err := EnsureSession(w, r)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sessionID)
	require.Len(t, w.Result().Cookies(), 1, "a fresh cookie replaces the invalid one")
}
