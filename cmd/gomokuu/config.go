package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MarigoldJ/gomokuu/internal/domain"
	"go.uber.org/zap/zapcore"
)

// Config is the server configuration. Flags win over environment values,
// which win over defaults.
type Config struct {
	Addr      string
	BoardSize int
	Renju     bool
	LogLevel  zapcore.Level
	Dev       bool
	Heartbeat time.Duration
}

func defaultConfig() Config {
	return Config{
		Addr:      ":8080",
		BoardSize: domain.DefaultBoardSize,
		LogLevel:  zapcore.InfoLevel,
		Heartbeat: 15 * time.Second,
	}
}

// Rules returns the default ruleset for new games.
func (c Config) Rules() domain.Rules {
	return domain.Rules{Size: c.BoardSize, EnforceRenju: c.Renju}
}

// loadConfig parses args (without the program name) on top of the
// GOMOKUU_* environment read through getenv.
func loadConfig(args []string, getenv func(string) string, stderr io.Writer) (Config, error) {
	cfg := defaultConfig()
	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("gomokuu", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.IntVar(&cfg.BoardSize, "size", cfg.BoardSize, "default board size for new games (>= 5)")
	fs.BoolVar(&cfg.Renju, "renju", cfg.Renju, "enforce renju restrictions on black by default")
	fs.Var(&cfg.LogLevel, "log-level", "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "human-readable development logging")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "SSE/websocket keep-alive interval")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("GOMOKUU_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("GOMOKUU_BOARD_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GOMOKUU_BOARD_SIZE: %w", err)
		}
		cfg.BoardSize = n
	}
	if v := getenv("GOMOKUU_RENJU"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GOMOKUU_RENJU: %w", err)
		}
		cfg.Renju = b
	}
	if v := getenv("GOMOKUU_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.Set(v); err != nil {
			return fmt.Errorf("GOMOKUU_LOG_LEVEL: %w", err)
		}
	}
	if v := getenv("GOMOKUU_DEV"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GOMOKUU_DEV: %w", err)
		}
		cfg.Dev = b
	}
	if v := getenv("GOMOKUU_HEARTBEAT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GOMOKUU_HEARTBEAT: %w", err)
		}
		cfg.Heartbeat = d
	}
	return nil
}

func (c Config) validate() error {
	if err := c.Rules().Validate(); err != nil {
		return err
	}
	if c.Heartbeat <= 0 {
		return fmt.Errorf("heartbeat must be positive, got %v", c.Heartbeat)
	}
	return nil
}
