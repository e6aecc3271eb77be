// Package server wires the repositories, services and handlers into a chi
// router and runs the HTTP server with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/sakif/game-store/internal/auth"
	"github.com/sakif/game-store/internal/config"
	"github.com/sakif/game-store/internal/handler"
	"github.com/sakif/game-store/internal/middleware"
	sqliteRepo "github.com/sakif/game-store/internal/repository/sqlite"
	"github.com/sakif/game-store/internal/service"
	"github.com/sakif/game-store/internal/session"
)

// janitorInterval is how often expired session files are swept.
const janitorInterval = 10 * time.Minute

type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB // owned by the server, closed on shutdown
	janitor *session.Janitor
}

// New opens the database and session store, creates the bootstrap admin
// when one is configured and builds the routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store, err := session.NewFileStore(cfg.SessionDir, cfg.SessionTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	codec, err := session.NewTokenCodec(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session codec: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		janitor: session.NewJanitor(store, janitorInterval, logger),
	}

	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(db, passwords, logger)
	if cfg.AdminUser != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminUser, cfg.AdminPassword); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating bootstrap admin: %w", err)
		}
	}

	deps := routeDeps{
		sessions:  session.NewManager(store, codec, cfg.SessionTTL, logger),
		passwords: passwords,
		auth:      authService,
	}
	if err := s.setupRoutes(deps); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

type routeDeps struct {
	sessions  *session.Manager
	passwords *auth.PasswordService
	auth      *service.AuthService
}

// setupRoutes builds the middleware chain and registers every route.
//
// ROUTE MAP:
//
//	GET  /                        → Home (random sample of the catalog)
//	GET  /news, /about, /games    → Static-ish pages
//	GET  /game/{id}               → Game detail + gallery
//	POST /search                  → One hit renders detail, else a list
//	POST /rate                    → Store a star rating in the session (JSON)
//	POST /add_to_cart/{id}        → Cart add (JSON)
//	POST /remove_from_cart/{id}   → Cart remove (JSON)
//	GET|POST /cart                → Cart page with total
//	GET  /community/{game_id}     → Message board
//	POST /add_message/{game_id}   → Post to the board (JSON)
//	GET|POST /login, GET /logout  → Back-office login
//	/admin/...                    → CRUD screens, login required
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID: tags the request so log lines can be correlated
// 2. RealIP: rewrites RemoteAddr from proxy headers, which the rate
//    limiter and the request log both read
// 3. Recoverer: turns a handler panic into a 500
// 4. Logger: one line per request, with the final status
// 5. CORS, only when origins are configured
//
// Static files are registered outside the session group: serving a
// stylesheet should never mint a session cookie or touch the session
// store. Inside the group, sessions.Middleware runs first so that
// ResolveUser and every handler can find the *Session in the context.
//
// Each rate-limited route calls s.limiter() and so keeps its own counter
// per IP.
func (s *Server) setupRoutes(deps routeDeps) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	render, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	s.router.NotFound(render.NotFound)

	// Photos may live outside the static tree; the more specific route wins.
	s.router.Handle("/static/image/*", http.StripPrefix("/static/image/", http.FileServer(http.Dir(s.config.PhotoDir))))
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.config.StaticDir))))

	catalog := service.NewCatalogService(s.db, s.db, s.config.PhotoDir, s.logger)
	store := handler.NewStoreHandler(catalog, render, s.logger)
	cart := handler.NewCartHandler(service.NewCartService(s.db, s.logger), render, s.logger)
	community := handler.NewCommunityHandler(service.NewCommunityService(s.db, s.db, s.logger), render, s.logger)
	login := handler.NewAuthHandler(deps.auth, render, s.logger)
	admin := handler.NewAdminHandler(
		service.NewAdminService(s.db, s.db, s.db, s.db, deps.passwords, s.logger),
		render, s.logger,
	)

	s.router.Group(func(r chi.Router) {
		r.Use(deps.sessions.Middleware)
		r.Use(auth.ResolveUser(s.db, s.logger))

		r.Get("/", store.HandleHome)
		r.Get("/news", store.HandleNews)
		r.Get("/about", store.HandleAbout)
		r.Get("/games", store.HandleGames)
		r.Get("/game/{id}", store.HandleGame)
		r.Post("/search", store.HandleSearch)
		r.With(s.limiter()).Post("/rate", store.HandleRate)

		r.Post("/add_to_cart/{id}", cart.HandleAdd)
		r.Post("/remove_from_cart/{id}", cart.HandleRemove)
		r.Get("/cart", cart.HandleView)
		r.Post("/cart", cart.HandleView)

		r.Get("/community/{game_id}", community.HandleThread)
		r.With(s.limiter()).Post("/add_message/{game_id}", community.HandlePost)

		r.Get("/login", login.HandleLoginPage)
		r.With(s.limiter()).Post("/login", login.HandleLogin)
		r.With(auth.RequireLogin).Get("/logout", login.HandleLogout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireLogin)
			r.Get("/", admin.HandleIndex)
			r.Get("/{resource}", admin.HandleList)
			r.Get("/{resource}/", admin.HandleList)
			r.Get("/{resource}/new", admin.HandleNew)
			r.Post("/{resource}/new", admin.HandleCreate)
			r.Get("/{resource}/{id}/edit", admin.HandleEdit)
			r.Post("/{resource}/{id}/edit", admin.HandleUpdate)
			r.Post("/{resource}/{id}/delete", admin.HandleDelete)
		})
	})

	return nil
}

// limiter returns a fresh per-IP rate limiter. Each call owns its own
// counters, so every limited route gets its own budget: a burst of star
// clicks never locks a visitor out of posting or logging in.
func (s *Server) limiter() func(http.Handler) http.Handler {
	if s.config.RateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(s.config.RateLimit, time.Minute)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on the way out.
func (s *Server) Close() error {
	s.janitor.Stop()
	return s.db.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	s.janitor.Start()

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("sessions", s.config.SessionDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
