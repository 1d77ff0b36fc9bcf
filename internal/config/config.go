package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the CLI settings. Precedence: flags, then SKILLET_*
// environment variables (including those from a .env file), then defaults.
type Config struct {
	Lang      string
	ChunkSize int
	MaxDepth  int
	MaxBytes  int64
	LogLevel  string
	Verbose   bool
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{Lang: "en", ChunkSize: 16, MaxDepth: 256, LogLevel: "info"}
}

// Load reads .env (when present), overlays the environment on the defaults,
// then parses args into fs.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := FromEnv(Defaults(), os.LookupEnv)
	if err != nil {
		return nil, err
	}
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv overlays SKILLET_* variables found through lookup onto base.
func FromEnv(base Config, lookup func(string) (string, bool)) (Config, error) {
	cfg := base
	if v, ok := env(lookup, "SKILLET_LANG"); ok {
		cfg.Lang = v
	}
	if v, ok := env(lookup, "SKILLET_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := env(lookup, "SKILLET_CHUNK_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("config: SKILLET_CHUNK_SIZE: want a positive integer, got %q", v)
		}
		cfg.ChunkSize = n
	}
	if v, ok := env(lookup, "SKILLET_MAX_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: SKILLET_MAX_DEPTH: %w", err)
		}
		cfg.MaxDepth = n
	}
	if v, ok := env(lookup, "SKILLET_MAX_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("config: SKILLET_MAX_BYTES: %w", err)
		}
		cfg.MaxBytes = n
	}
	return cfg, nil
}

func env(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// RegisterFlags binds the shared flags; current values become defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Lang, "lang", c.Lang, "message language (en, ja)")
	fs.IntVar(&c.ChunkSize, "chunk", c.ChunkSize, "bytes per chunk when replaying a stream")
	fs.IntVar(&c.MaxDepth, "max-depth", c.MaxDepth, "maximum nesting depth (0 disables)")
	fs.Int64Var(&c.MaxBytes, "max-bytes", c.MaxBytes, "maximum buffered bytes (0 disables)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "enable verbose logs (same as -log-level=debug)")
}

// Level resolves the slog level.
func (c Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}
