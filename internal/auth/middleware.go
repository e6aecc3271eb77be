package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/session"
)

// LoginPath is where unauthenticated back-office requests are sent.
const LoginPath = "/login"

// UserLookup is the slice of repository.UserRepository the gate needs.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// ResolveUser checks a logged-in session against the users table on every
// request. A session whose account has been deleted is logged out before
// the handler runs, so it is anonymous everywhere: in the navigation, on the
// login page and behind RequireLogin.
//
// It must run after session.Manager.Middleware.
func ResolveUser(users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if sess == nil || sess.UserID() == 0 {
				next.ServeHTTP(w, r)
				return
			}

			id := sess.UserID()
			if _, err := users.GetUser(r.Context(), id); err != nil {
				if !errors.Is(err, apperror.ErrNotFound) {
					logger.Error("resolving session user",
						slog.Int64("userID", id),
						slog.String("error", err.Error()),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				logger.Warn("session user no longer exists", slog.Int64("userID", id))
				sess.Logout()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLogin lets a request through only when its session carries a
// logged-in user; everyone else is redirected to the login page. The check
// reads the session on every request, so logging out takes effect on the
// very next one.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsLoggedIn(r) {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsLoggedIn reports whether the request's session has a back-office user.
func IsLoggedIn(r *http.Request) bool {
	s := session.FromContext(r.Context())
	return s != nil && s.UserID() != 0
}
