package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DB_PATH", "TEMPLATE_DIR", "STATIC_DIR", "PHOTO_DIR", "SESSION_DIR", "SESSION_TTL",
	"SESSION_SECRET", "ADMIN_USER", "ADMIN_PASSWORD", "CORS_ORIGINS", "RATE_LIMIT", "LOG_LEVEL",
}

// clearEnv blanks every variable Load reads; env treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t), nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/gamestore.db", cfg.DBPath)
	assert.Equal(t, filepath.Join("web/static", "image"), cfg.PhotoDir)
	assert.Equal(t, 60*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that exists, even when empty
	require.NoError(t, os.Unsetenv("DB_PATH"))
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_PATH=from-file.db\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(envFile, []string{"--port", "9100", "--session-ttl", "5m"})
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port, "flag beats environment")
	assert.Equal(t, "from-file.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad port env", map[string]string{"PORT": "eighty"}, nil},
		{"port out of range", nil, []string{"--port", "70000"}},
		{"zero ttl", nil, []string{"--session-ttl", "0s"}},
		{"negative rate", nil, []string{"--rate-limit", "-1"}},
		{"admin without password", nil, []string{"--admin-user", "root"}},
		{"unknown level", nil, []string{"--log-level", "loud"}},
		{"unknown flag", nil, []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingEnvFile(t), tt.args)
			assert.Error(t, err)
		})
	}
}
