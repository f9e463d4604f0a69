// internal/handlers/session.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dalmuti-online/server/internal/auth"
)

const sessionCookieName = "dalmuti_session"

// EnsureSession returns the session id carried by the request's session
// cookie, minting a fresh ephemeral session (and setting the cookie) when
// the cookie is absent or fails verification. Must run before the websocket
// upgrade writes response headers.
func EnsureSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sessionID, err := auth.VerifySessionToken(cookie.Value); err == nil {
			return sessionID, nil
		}
	}

	sessionID, token, err := auth.NewSessionToken()
	if err != nil {
		return uuid.Nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID, nil
}
