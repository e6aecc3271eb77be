package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
)

// CookieName is the browser cookie holding the signed session token.
const CookieName = "session"

// DefaultTTL is how long a session survives without requests.
const DefaultTTL = 60 * time.Minute

// Manager binds sessions to requests.
type Manager struct {
	store  Store
	codec  *TokenCodec
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(store Store, codec *TokenCodec, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		codec:  codec,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Middleware attaches a *Session to every request context.
//
// REQUEST LIFECYCLE:
// 1. Read the cookie and verify its token. A missing, forged or expired
//    token (or one naming a session the store no longer has) silently
//    starts a new session with a fresh xid.
// 2. Issue a new token and set the cookie BEFORE calling the handler.
//    Headers cannot change once the handler writes its body, so this is
//    the last safe moment. Re-issuing on every response is what makes the
//    idle timeout slide.
// 3. Run the handler with the session in the context.
// 4. Save. A session the request never touched is dropped unsaved, which
//    keeps crawlers and one-off visits from filling the store. Everything
//    else is saved with LastSeen bumped, even when unmodified, because the
//    store measures idle time from LastSeen.
//
// WHY NOT PUT THE DATA IN THE COOKIE?
// The cart, ratings and login would then travel with every request and
// could not be revoked server-side. The cookie only carries a signed id.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.load(r)

		token, err := m.codec.Issue(sess.id)
		if err != nil {
			m.logger.Error("issuing session token", slog.String("error", err.Error()))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(m.ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))

		if sess.fresh && !sess.Modified() {
			return
		}
		sess.mu.Lock()
		sess.data.LastSeen = m.now()
		err = m.store.Save(r.Context(), sess.id, sess.data)
		sess.mu.Unlock()
		if err != nil {
			m.logger.Error("saving session",
				slog.String("session", sess.id),
				slog.String("error", err.Error()),
			)
		}
	})
}

func (m *Manager) load(r *http.Request) *Session {
	if cookie, err := r.Cookie(CookieName); err == nil {
		id, err := m.codec.Parse(cookie.Value)
		if err == nil {
			data, err := m.store.Load(r.Context(), id)
			if err == nil {
				return NewSession(id, data)
			}
			if !errors.Is(err, ErrNotFound) {
				m.logger.Warn("loading session",
					slog.String("session", id),
					slog.String("error", err.Error()),
				)
			}
		} else {
			m.logger.Debug("rejected session cookie", slog.String("error", err.Error()))
		}
	}

	sess := NewSession(xid.New().String(), nil)
	sess.fresh = true
	return sess
}
