package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// --- Config Types ---

type Config struct {
	Telegram     TelegramConfig     `json:"telegram"`
	DBPath       string             `json:"dbPath,omitempty"`
	ListenAddr   string             `json:"listenAddr,omitempty"`
	Reminders    ReminderConfig     `json:"reminders,omitempty"`
	Conversation ConversationConfig `json:"conversation,omitempty"`
	Capture      CaptureConfig      `json:"capture,omitempty"`
	Logging      LoggingConfig      `json:"logging,omitempty"`

	// Resolved at runtime (not serialized).
	baseDir string
}

type TelegramConfig struct {
	BotToken    string `json:"botToken"`
	PollTimeout int    `json:"pollTimeout,omitempty"` // long-poll timeout in seconds, default 30
}

func (tc TelegramConfig) pollTimeoutOrDefault() int {
	if tc.PollTimeout > 0 {
		return tc.PollTimeout
	}
	return 30
}

// ReminderConfig controls the daily reminder scheduler.
type ReminderConfig struct {
	CheckInterval string `json:"checkInterval,omitempty"` // default "60s"
	StartupDelay  string `json:"startupDelay,omitempty"`  // default "10s"
}

func (rc ReminderConfig) checkIntervalOrDefault() time.Duration {
	if rc.CheckInterval != "" {
		if d, err := time.ParseDuration(rc.CheckInterval); err == nil && d > 0 {
			return d
		}
	}
	return 60 * time.Second
}

func (rc ReminderConfig) startupDelayOrDefault() time.Duration {
	if rc.StartupDelay != "" {
		if d, err := time.ParseDuration(rc.StartupDelay); err == nil && d >= 0 {
			return d
		}
	}
	return 10 * time.Second
}

// ConversationConfig controls dialog session lifetime.
type ConversationConfig struct {
	Timeout string `json:"timeout,omitempty"` // inactivity window, default "1800s"
}

func (cc ConversationConfig) timeoutOrDefault() time.Duration {
	if cc.Timeout != "" {
		if d, err := time.ParseDuration(cc.Timeout); err == nil && d > 0 {
			return d
		}
	}
	return 1800 * time.Second
}

// CaptureConfig bounds story text length. Zero means unbounded; the stricter
// "moment" deployment uses 10/500.
type CaptureConfig struct {
	MinLength int `json:"minLength,omitempty"`
	MaxLength int `json:"maxLength,omitempty"`
}

type LoggingConfig struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // text, json
	File   string `json:"file,omitempty"`
}

func (lc LoggingConfig) levelOrDefault() string {
	if lc.Level != "" {
		return lc.Level
	}
	return "info"
}

func (lc LoggingConfig) formatOrDefault() string {
	if lc.Format != "" {
		return lc.Format
	}
	return "text"
}

// --- Loading ---

// defaultConfigPath returns ~/.moments/config.json.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".moments", "config.json")
}

// loadConfig reads the JSON config file and applies environment overrides.
// A missing file is not an error; defaults and the environment carry it.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.baseDir = filepath.Dir(path)
	applyEnvOverrides(cfg)

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.baseDir, "moments.db")
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MOMENTS_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("MOMENTS_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("MOMENTS_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("MOMENTS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// validate checks required settings.
func (cfg *Config) validate() error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token not set (config botToken or MOMENTS_BOT_TOKEN)")
	}
	if cfg.Capture.MinLength < 0 || cfg.Capture.MaxLength < 0 {
		return fmt.Errorf("capture length bounds must be non-negative")
	}
	if cfg.Capture.MaxLength > 0 && cfg.Capture.MinLength > cfg.Capture.MaxLength {
		return fmt.Errorf("capture minLength exceeds maxLength")
	}
	return nil
}
