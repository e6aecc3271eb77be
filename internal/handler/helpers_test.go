package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/game-store/internal/auth"
	"github.com/sakif/game-store/internal/handler"
	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/repository/sqlite"
	"github.com/sakif/game-store/internal/service"
	"github.com/sakif/game-store/internal/session"
)

const templateDir = "../../web/templates"

// testApp is a running store backed by an in-memory database and an
// in-memory session store. The client keeps cookies but does not follow
// redirects.
type testApp struct {
	db        *sqlite.DB
	server    *httptest.Server
	client    *http.Client
	photoRoot string
	authSvc   *service.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	render, err := handler.NewRenderer(templateDir, logger)
	require.NoError(t, err)

	codec, err := session.NewTokenCodec("test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	sessions := session.NewManager(session.NewMemoryStore(time.Hour), codec, time.Hour, logger)

	photoRoot := t.TempDir()
	passwords := auth.NewPasswordServiceForTest(4)
	authSvc := service.NewAuthService(db, passwords, logger)

	store := handler.NewStoreHandler(service.NewCatalogService(db, db, photoRoot, logger), render, logger)
	cart := handler.NewCartHandler(service.NewCartService(db, logger), render, logger)
	community := handler.NewCommunityHandler(service.NewCommunityService(db, db, logger), render, logger)
	login := handler.NewAuthHandler(authSvc, render, logger)
	admin := handler.NewAdminHandler(service.NewAdminService(db, db, db, db, passwords, logger), render, logger)

	r := chi.NewRouter()
	r.NotFound(render.NotFound)
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Use(auth.ResolveUser(db, logger))
		r.Get("/", store.HandleHome)
		r.Get("/news", store.HandleNews)
		r.Get("/about", store.HandleAbout)
		r.Get("/games", store.HandleGames)
		r.Get("/game/{id}", store.HandleGame)
		r.Post("/search", store.HandleSearch)
		r.Post("/rate", store.HandleRate)
		r.Post("/add_to_cart/{id}", cart.HandleAdd)
		r.Post("/remove_from_cart/{id}", cart.HandleRemove)
		r.Get("/cart", cart.HandleView)
		r.Post("/cart", cart.HandleView)
		r.Get("/community/{game_id}", community.HandleThread)
		r.Post("/add_message/{game_id}", community.HandlePost)
		r.Get("/login", login.HandleLoginPage)
		r.Post("/login", login.HandleLogin)
		r.With(auth.RequireLogin).Get("/logout", login.HandleLogout)
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireLogin)
			r.Get("/", admin.HandleIndex)
			r.Get("/{resource}/", admin.HandleList)
			r.Get("/{resource}/new", admin.HandleNew)
			r.Post("/{resource}/new", admin.HandleCreate)
			r.Get("/{resource}/{id}/edit", admin.HandleEdit)
			r.Post("/{resource}/{id}/edit", admin.HandleUpdate)
			r.Post("/{resource}/{id}/delete", admin.HandleDelete)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{db: db, server: srv, client: client, photoRoot: photoRoot, authSvc: authSvc}
}

// addGame stores a game whose photo directory holds a cover and photos.
func (a *testApp) addGame(t *testing.T, name string, price int, photos ...string) model.Game {
	t.Helper()
	dir := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	require.NoError(t, os.MkdirAll(filepath.Join(a.photoRoot, dir), 0o755))
	for _, p := range append([]string{model.MainPhoto}, photos...) {
		require.NoError(t, os.WriteFile(filepath.Join(a.photoRoot, dir, p), []byte("img"), 0o644))
	}
	g := &model.Game{Name: name, Price: price, Author: "Studio", PhotoDir: dir}
	require.NoError(t, a.db.CreateGame(context.Background(), g))
	return *g
}

type response struct {
	status   int
	body     string
	location string
}

func (a *testApp) do(t *testing.T, method, path, contentType, body string) response {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := a.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return response{status: res.StatusCode, body: string(b), location: res.Header.Get("Location")}
}

func (a *testApp) get(t *testing.T, path string) response {
	t.Helper()
	return a.do(t, http.MethodGet, path, "", "")
}

func (a *testApp) postJSON(t *testing.T, path, body string) response {
	t.Helper()
	return a.do(t, http.MethodPost, path, "application/json", body)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) response {
	t.Helper()
	return a.do(t, http.MethodPost, path, "application/x-www-form-urlencoded", form.Encode())
}

// login creates an admin account and logs the client in.
func (a *testApp) login(t *testing.T) {
	t.Helper()
	require.NoError(t, a.authSvc.EnsureAdmin(context.Background(), "admin", "s3cret"))
	res := a.postForm(t, "/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusSeeOther, res.status)
}
