package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/auth"
	"github.com/sakif/game-store/internal/service"
	"github.com/sakif/game-store/internal/session"
)

// AdminPath is where a successful login lands.
const AdminPath = "/admin/"

// AuthHandler manages the back-office login. The logged-in user id lives in
// the visitor's session; nothing else is issued to the browser.
type AuthHandler struct {
	auth   *service.AuthService
	render *Renderer
	logger *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, render *Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, render: render, logger: logger}
}

// HandleLoginPage shows the login form, or skips straight to the admin when
// the session is already logged in.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if auth.IsLoggedIn(r) {
		http.Redirect(w, r, AdminPath, http.StatusSeeOther)
		return
	}
	h.render.Render(w, r, http.StatusOK, "login", "Login", nil)
}

// HandleLogin checks the username and password form fields. Bad
// credentials queue a flash and re-render the form.
//
// HTTP: POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if auth.IsLoggedIn(r) {
		http.Redirect(w, r, AdminPath, http.StatusSeeOther)
		return
	}

	sess := session.FromContext(r.Context())
	user, err := h.auth.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			sess.AddFlash(service.LoginFailedMessage)
			h.render.Render(w, r, http.StatusOK, "login", "Login", nil)
			return
		}
		h.render.Error(w, r, err)
		return
	}

	sess.Login(user.ID)
	http.Redirect(w, r, AdminPath, http.StatusSeeOther)
}

// HandleLogout clears the logged-in user. The route is behind
// auth.RequireLogin.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	h.logger.Info("user logged out", slog.Int64("userID", sess.UserID()))
	sess.Logout()
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}
