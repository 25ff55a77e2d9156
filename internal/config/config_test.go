package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/llm"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PLANPILOT_DB", "")
	t.Setenv("PLANPILOT_DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, db.DialectSQLite, cfg.DBDriver)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".planpilot", "planpilot.db"), cfg.DBPath)
	assert.Equal(t, 16, cfg.CommitMaxInFlight)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PLANPILOT_DB_DRIVER", "postgres")
	t.Setenv("PLANPILOT_DB_DSN", "postgres://u:p@localhost/planpilot?sslmode=disable")
	t.Setenv("PLANPILOT_COMMIT_MAX_IN_FLIGHT", "0")
	t.Setenv("PLANPILOT_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PLANPILOT_LOG_LEVEL", "debug")
	t.Setenv("PLANPILOT_LOG_FORMAT", "JSON")
	t.Setenv("PLANPILOT_LLM_PROVIDER", "gemini")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, db.DialectPostgres, cfg.DBDriver)
	assert.Equal(t, cfg.DBDSN, cfg.DBTarget())
	assert.Equal(t, 0, cfg.CommitMaxInFlight)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"driver", "PLANPILOT_DB_DRIVER", "mysql"},
		{"postgres without dsn", "PLANPILOT_DB_DRIVER", "postgres"},
		{"in flight", "PLANPILOT_COMMIT_MAX_IN_FLIGHT", "-1"},
		{"log level", "PLANPILOT_LOG_LEVEL", "loud"},
		{"log format", "PLANPILOT_LOG_FORMAT", "xml"},
		{"provider", "PLANPILOT_LLM_PROVIDER", "carrier-pigeon"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("PLANPILOT_DB_DSN", "")
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PLANPILOT_HTTP_ADDR=:9999\nPLANPILOT_JWT_SECRET=from-file\n"), 0o600))

	t.Setenv("PLANPILOT_HTTP_ADDR", "")
	os.Unsetenv("PLANPILOT_HTTP_ADDR")
	t.Setenv("PLANPILOT_JWT_SECRET", "from-env")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, ":9999", os.Getenv("PLANPILOT_HTTP_ADDR"))
	assert.Equal(t, "from-env", os.Getenv("PLANPILOT_JWT_SECRET"), "existing variables win")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogFormat = "json"
	cfg.NewLogger(&buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	cfg.LogFormat = "text"
	cfg.LogLevel = slog.LevelWarn
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
