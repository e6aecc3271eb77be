// Package config resolves the server configuration. Values come from, in
// increasing priority: built-in defaults, a .env file, the process
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Port          int
	DBPath        string
	TemplateDir   string
	StaticDir     string
	PhotoDir      string
	SessionDir    string
	SessionTTL    time.Duration
	SessionSecret string
	AdminUser     string
	AdminPassword string
	CORSOrigins   []string
	RateLimit     int // requests per minute per IP on anonymous write endpoints; 0 disables
	LogLevel      slog.Level
}

// Load reads envFile (a missing file is fine) and parses args, which
// excludes the program name.
func Load(envFile string, args []string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
	}

	flags := pflag.NewFlagSet("game-store", pflag.ContinueOnError)
	cfg := &Config{}
	var (
		photoDir string
		logLevel string
	)

	port, err := envInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	ttl, err := envDuration("SESSION_TTL", 60*time.Minute)
	if err != nil {
		return nil, err
	}
	rate, err := envInt("RATE_LIMIT", 60)
	if err != nil {
		return nil, err
	}

	flags.IntVarP(&cfg.Port, "port", "p", port, "HTTP listen port")
	flags.StringVar(&cfg.DBPath, "db", env("DB_PATH", "data/gamestore.db"), "SQLite database file")
	flags.StringVar(&cfg.TemplateDir, "templates", env("TEMPLATE_DIR", "web/templates"), "HTML template directory")
	flags.StringVar(&cfg.StaticDir, "static", env("STATIC_DIR", "web/static"), "static asset directory")
	flags.StringVar(&photoDir, "photos", env("PHOTO_DIR", ""), "game photo root (default <static>/image)")
	flags.StringVar(&cfg.SessionDir, "sessions", env("SESSION_DIR", "data/sessions"), "session file directory")
	flags.DurationVar(&cfg.SessionTTL, "session-ttl", ttl, "idle session lifetime")
	flags.StringVar(&cfg.SessionSecret, "session-secret", env("SESSION_SECRET", ""), "session cookie signing key (random when empty)")
	flags.StringVar(&cfg.AdminUser, "admin-user", env("ADMIN_USER", ""), "bootstrap admin username")
	flags.StringVar(&cfg.AdminPassword, "admin-password", env("ADMIN_PASSWORD", ""), "bootstrap admin password")
	flags.StringSliceVar(&cfg.CORSOrigins, "cors-origins", envList("CORS_ORIGINS"), "origins allowed to call the JSON endpoints")
	flags.IntVar(&cfg.RateLimit, "rate-limit", rate, "requests per minute per IP on each of /rate, /add_message and POST /login (0 disables)")
	flags.StringVar(&logLevel, "log-level", env("LOG_LEVEL", "info"), "debug, info, warn or error")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	cfg.PhotoDir = photoDir
	if cfg.PhotoDir == "" {
		cfg.PhotoDir = filepath.Join(cfg.StaticDir, "image")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("config: port %d out of range", c.Port)
	case c.SessionTTL <= 0:
		return fmt.Errorf("config: session ttl must be positive")
	case c.RateLimit < 0:
		return fmt.Errorf("config: rate limit must not be negative")
	case (c.AdminUser == "") != (c.AdminPassword == ""):
		return fmt.Errorf("config: admin user and admin password must be set together")
	}
	return nil
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := env(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := env(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q", key, v)
	}
	return d, nil
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(env(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
