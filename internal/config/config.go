// Package config assembles runtime configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/planning"
)

// Config holds everything the binary needs to wire itself.
type Config struct {
	DBDriver db.Dialect
	DBPath   string
	DBDSN    string

	LLM               llm.LLMConfig
	CommitMaxInFlight int

	HTTPAddr    string
	JWTSecret   string
	CORSOrigins []string

	LogLevel  slog.Level
	LogFormat string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		DBDriver:          db.DialectSQLite,
		LLM:               llm.DefaultConfig(),
		CommitMaxInFlight: planning.DefaultMaxInFlight,
		HTTPAddr:          ":8080",
		CORSOrigins:       []string{"*"},
		LogLevel:          slog.LevelInfo,
		LogFormat:         "text",
	}
}

// LoadDotEnv loads variables from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no arguments it tries PLANPILOT_ENV_FILE, then .env.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
		if f := os.Getenv("PLANPILOT_ENV_FILE"); f != "" {
			files = []string{f}
		}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from the environment. Call LoadDotEnv first to
// pick up a .env file.
func Load() (Config, error) {
	cfg := DefaultConfig()
	cfg.LLM = llm.LoadConfig()

	if v := os.Getenv("PLANPILOT_DB_DRIVER"); v != "" {
		cfg.DBDriver = db.Dialect(strings.ToLower(v))
	}
	cfg.DBPath = os.Getenv("PLANPILOT_DB")
	cfg.DBDSN = os.Getenv("PLANPILOT_DB_DSN")
	if cfg.DBDriver == db.DialectSQLite && cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".planpilot", "planpilot.db")
	}

	if v := os.Getenv("PLANPILOT_COMMIT_MAX_IN_FLIGHT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("PLANPILOT_COMMIT_MAX_IN_FLIGHT must be a non-negative integer, got %q", v)
		}
		cfg.CommitMaxInFlight = n
	}

	if v := os.Getenv("PLANPILOT_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.JWTSecret = os.Getenv("PLANPILOT_JWT_SECRET")
	if v := os.Getenv("PLANPILOT_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("PLANPILOT_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("PLANPILOT_LOG_LEVEL: %w", err)
		}
	}
	if v := os.Getenv("PLANPILOT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	return cfg, cfg.Validate()
}

// Validate checks combinations that cannot work at runtime.
func (c Config) Validate() error {
	switch c.DBDriver {
	case db.DialectSQLite:
	case db.DialectPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("PLANPILOT_DB_DSN is required when PLANPILOT_DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported PLANPILOT_DB_DRIVER %q", c.DBDriver)
	}
	switch c.LLM.Provider {
	case llm.ProviderOllama, llm.ProviderGemini:
	default:
		return fmt.Errorf("unsupported PLANPILOT_LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unsupported PLANPILOT_LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// DBTarget returns the path or DSN to open for the configured driver.
func (c Config) DBTarget() string {
	if c.DBDriver == db.DialectPostgres {
		return c.DBDSN
	}
	return c.DBPath
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return c.NewLoggerWithLevel(w, c.LogLevel)
}

// NewLoggerWithLevel is NewLogger with a caller-owned level, so the level
// can be raised or lowered after wiring.
func (c Config) NewLoggerWithLevel(w io.Writer, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
