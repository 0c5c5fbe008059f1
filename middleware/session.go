package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"mannMitraAPI/services"
)

type contextKey string

const SessionIDKey contextKey = "sessionID"

const sessionCookie = "mm_session"

// SessionMiddleware resolves the anonymous session for every request. The
// session token lives in a cookie; a missing or stale token gets a fresh
// session transparently, so there is no login step anywhere.
type SessionMiddleware struct {
	sessions *services.SessionService
}

func NewSessionMiddleware(sessions *services.SessionService) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			token = c.Value
		}

		sess, err := m.sessions.GetOrCreate(r.Context(), token)
		if err != nil {
			log.Printf("Session resolution failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Could not establish session")
			return
		}

		if sess.SessionID != token {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sess.SessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   60 * 60 * 24 * 30,
			})
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, sess.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the anonymous session ID from context.
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf(`{"error": "%s"}`, message)))
}
