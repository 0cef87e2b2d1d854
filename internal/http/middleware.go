package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/session"
)

const (
	SessionCookie = "sf_session"
	SessionHeader = "X-Session-ID"
)

// CookieConfig controls the session cookie. Secure should be on whenever
// the gateway is served over TLS.
type CookieConfig struct {
	TTL    time.Duration
	Secure bool
}

// issue points the client at session id.
func (c CookieConfig) issue(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, id)
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionMiddleware loads the caller's session from the cookie or the
// X-Session-ID header. Unknown or expired ids get a fresh anonymous session.
func SessionMiddleware(store session.Store, cookie CookieConfig, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var sess *session.Session
			if id := sessionID(r); id != "" {
				s, err := store.Get(ctx, id)
				switch {
				case err == nil:
					sess = s
				case errors.Is(err, session.ErrSessionNotFound):
				default:
					log.ErrorContext(ctx, "failed to load session", "session_id", id, "error", err)
					respondError(w, http.StatusServiceUnavailable, "session_unavailable", "session store unavailable")
					return
				}
			}

			if sess == nil {
				sess = session.New()
				if err := store.Save(ctx, sess); err != nil {
					log.ErrorContext(ctx, "failed to create session", "error", err)
					respondError(w, http.StatusServiceUnavailable, "session_unavailable", "session store unavailable")
					return
				}
			}

			cookie.issue(w, sess.ID)
			next.ServeHTTP(w, r.WithContext(session.WithSession(ctx, sess)))
		})
	}
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(SessionHeader)
}

// currentSession returns the session placed by SessionMiddleware.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s := session.FromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusInternalServerError, "session_error", "missing session")
		return nil, false
	}
	return s, true
}
