package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(filepath.Join(dir, "config.json"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "moments.db"), cfg.DBPath)
	assert.Equal(t, 30, cfg.Telegram.pollTimeoutOrDefault())
	assert.Equal(t, 60*time.Second, cfg.Reminders.checkIntervalOrDefault())
	assert.Equal(t, 10*time.Second, cfg.Reminders.startupDelayOrDefault())
	assert.Equal(t, 1800*time.Second, cfg.Conversation.timeoutOrDefault())
	assert.Equal(t, "info", cfg.Logging.levelOrDefault())
	assert.Equal(t, "text", cfg.Logging.formatOrDefault())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"telegram": {"botToken": "123:abc", "pollTimeout": 50},
		"dbPath": "/var/lib/moments/moments.db",
		"listenAddr": ":8080",
		"reminders": {"checkInterval": "30s", "startupDelay": "0s"},
		"conversation": {"timeout": "600s"},
		"capture": {"minLength": 10, "maxLength": 500},
		"logging": {"level": "debug", "format": "json"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, 50, cfg.Telegram.pollTimeoutOrDefault())
	assert.Equal(t, "/var/lib/moments/moments.db", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.Reminders.checkIntervalOrDefault())
	assert.Equal(t, time.Duration(0), cfg.Reminders.startupDelayOrDefault())
	assert.Equal(t, 600*time.Second, cfg.Conversation.timeoutOrDefault())
	assert.Equal(t, 10, cfg.Capture.MinLength)
	assert.Equal(t, 500, cfg.Capture.MaxLength)
	assert.Equal(t, "debug", cfg.Logging.levelOrDefault())
	assert.Equal(t, "json", cfg.Logging.formatOrDefault())
}

func TestLoadConfigMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"telegram": {"botToken": "from-file"}, "dbPath": "/file/path.db"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("MOMENTS_BOT_TOKEN", "from-env")
	t.Setenv("MOMENTS_DB", "/env/path.db")
	t.Setenv("MOMENTS_LISTEN_ADDR", ":9090")
	t.Setenv("MOMENTS_LOG_LEVEL", "warn")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.Equal(t, "/env/path.db", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestBadDurationFallsBackToDefault(t *testing.T) {
	rc := ReminderConfig{CheckInterval: "soon", StartupDelay: "-5s"}
	assert.Equal(t, 60*time.Second, rc.checkIntervalOrDefault())
	assert.Equal(t, 10*time.Second, rc.startupDelayOrDefault())

	cc := ConversationConfig{Timeout: "0s"}
	assert.Equal(t, 1800*time.Second, cc.timeoutOrDefault())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing token",
			cfg:     Config{},
			wantErr: "bot token",
		},
		{
			name: "ok",
			cfg:  Config{Telegram: TelegramConfig{BotToken: "t"}},
		},
		{
			name: "negative bound",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "t"},
				Capture:  CaptureConfig{MinLength: -1},
			},
			wantErr: "non-negative",
		},
		{
			name: "inverted bounds",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "t"},
				Capture:  CaptureConfig{MinLength: 100, MaxLength: 10},
			},
			wantErr: "exceeds",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
