package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ggoodman/mcp-wire/journal"
	"github.com/ggoodman/mcp-wire/journal/memoryjournal"
	"github.com/ggoodman/mcp-wire/journal/redisjournal"
	"github.com/joeshaw/envdecode"
)

// Config is loaded from the environment via envdecode; flags override it.
type Config struct {
	// LogLevel is one of debug, info, warn, error. ENV: MCPWIRE_LOG_LEVEL
	LogLevel string `env:"MCPWIRE_LOG_LEVEL,default=debug"`
	// LogFormat is text or json. ENV: MCPWIRE_LOG_FORMAT
	LogFormat string `env:"MCPWIRE_LOG_FORMAT,default=text"`
	// MaxMessageBytes bounds one message on any transport. ENV: MCPWIRE_MAX_MESSAGE_BYTES
	MaxMessageBytes int64 `env:"MCPWIRE_MAX_MESSAGE_BYTES,default=4194304"`
	// HTTPAddr is the listen address of serve. ENV: MCPWIRE_HTTP_ADDR
	HTTPAddr string `env:"MCPWIRE_HTTP_ADDR,default=:8080"`
	// Journal is none, memory or redis. ENV: MCPWIRE_JOURNAL
	Journal string `env:"MCPWIRE_JOURNAL,default=none"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
}

// ErrJournalNotPersistent is returned when a command that outlives a single
// process is configured with the in-process memory journal.
var ErrJournalNotPersistent = errors.New("the memory journal does not persist across runs; use --journal redis")

// OpenPersistentJournal is OpenJournal restricted to backends that outlive
// the process. It is used by classify and journal.
func (c Config) OpenPersistentJournal(ctx context.Context) (journal.Journal, error) {
	if strings.EqualFold(c.Journal, "memory") {
		return nil, ErrJournalNotPersistent
	}
	return c.OpenJournal(ctx)
}

// OpenJournal returns the configured journal, or nil for "none".
func (c Config) OpenJournal(ctx context.Context) (journal.Journal, error) {
	switch strings.ToLower(c.Journal) {
	case "", "none":
		return nil, nil
	case "memory":
		return memoryjournal.New(), nil
	case "redis":
		return redisjournal.NewFromEnv(ctx)
	default:
		return nil, fmt.Errorf("invalid journal %q", c.Journal)
	}
}
