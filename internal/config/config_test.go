package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 365, cfg.DataSource.LookbackDays)
	assert.Equal(t, 3, cfg.DataSource.Retries)
	assert.Equal(t, 60, cfg.Analysis.ChartBars)
	assert.Equal(t, 50, cfg.Analysis.MinBars)
	assert.Equal(t, "0 30 16 * * 1-5", cfg.Schedule.ScanCron)
	assert.Equal(t, "data/stock_sentinel.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "62", cfg.WhatsApp.CountryCode)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
telegram:
  bot_token: "file-token"
  chat_id: "42"
data_source:
  provider: csv
  csv_dir: /srv/prices
  symbols: [BBCA.JK, TLKM.JK]
analysis:
  chart_bars: 90
database:
  store_file: data/store.json
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("LOOKBACK_DAYS", "180")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "csv", cfg.DataSource.Provider)
	assert.Equal(t, "/srv/prices", cfg.DataSource.CSVDir)
	assert.Equal(t, []string{"BBCA.JK", "TLKM.JK"}, cfg.DataSource.Symbols)
	assert.Equal(t, 180, cfg.DataSource.LookbackDays)
	assert.Equal(t, 90, cfg.Analysis.ChartBars)
	assert.Equal(t, "data/store.json", cfg.Database.StoreFile)
	assert.Empty(t, cfg.Database.SQLitePath)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WATCH_SYMBOLS= bbri.jk , asii.jk\nFONNTE_TOKEN=abc\n"), 0644))
	// godotenv sets variables for the whole process; clear them afterwards.
	t.Cleanup(func() {
		os.Unsetenv("WATCH_SYMBOLS")
		os.Unsetenv("FONNTE_TOKEN")
	})

	cfg, err := Load("absent.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"BBRI.JK", "ASII.JK"}, cfg.DataSource.Symbols)
	assert.True(t, cfg.WhatsAppEnabled())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "telegram: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("absent.yaml")
	require.NoError(t, err)

	cfg.DataSource.Provider = "bloomberg"
	assert.Error(t, cfg.Validate())
	cfg.DataSource.Provider = "mock"

	cfg.Telegram.BotToken = "only-token"
	assert.Error(t, cfg.Validate())
	cfg.Telegram.ChatID = "1"
	assert.NoError(t, cfg.Validate())

	cfg.DataSource.LookbackDays = 10
	assert.Error(t, cfg.Validate())
}
