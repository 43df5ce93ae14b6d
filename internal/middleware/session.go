package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

type contextKey string

const sessionIDKey contextKey = "booking_session_id"

// SessionName is the cookie under which the anonymous booking session lives.
const SessionName = "booking-session"

// SessionMiddleware assigns every visitor an anonymous booking session. The
// session carries nothing but a generated id; all booking state is keyed by
// that id server-side.
type SessionMiddleware struct {
	store sessions.Store
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(store sessions.Store) *SessionMiddleware {
	return &SessionMiddleware{store: store}
}

// EnsureSession loads the booking session cookie, creating one on first
// contact, and puts the session id on the request context.
func (sm *SessionMiddleware) EnsureSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := sm.store.Get(r, SessionName)
		if err != nil {
			// A corrupt or stale cookie yields a decode error together
			// with a fresh session. Use the fresh one.
			log.Printf("Session decode failed, issuing new session: %v", err)
		}

		sessionID, ok := session.Values["id"].(string)
		if !ok || sessionID == "" {
			sessionID = uuid.New().String()
			session.Values["id"] = sessionID
			if err := session.Save(r, w); err != nil {
				log.Printf("Failed to save session: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID returns the booking session id from the request context, or
// the empty string when the session middleware did not run.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// NewCookieStore builds the cookie store used for booking sessions.
func NewCookieStore(secret string, secure bool) sessions.Store {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400, // one day; booking state expires far earlier
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
