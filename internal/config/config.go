package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	WhatsApp struct {
		APIURL      string `yaml:"api_url"`
		Token       string `yaml:"token"`
		CountryCode string `yaml:"country_code"`
	} `yaml:"whatsapp"`
	DataSource struct {
		Provider     string   `yaml:"provider"` // yahoo, csv, mock
		BaseURL      string   `yaml:"base_url"`
		CSVDir       string   `yaml:"csv_dir"`
		LookbackDays int      `yaml:"lookback_days"`
		Retries      int      `yaml:"retries"`
		Symbols      []string `yaml:"symbols"`
	} `yaml:"data_source"`
	Analysis struct {
		ChartBars int `yaml:"chart_bars"`
		MinBars   int `yaml:"min_bars"`
	} `yaml:"analysis"`
	Schedule struct {
		ScanCron  string `yaml:"scan_cron"`
		AlertCron string `yaml:"alert_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
		StoreFile  string `yaml:"store_file"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
		Mode string `yaml:"mode"` // debug, release, test
	} `yaml:"server"`
	Log struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"`
		FileEnabled   bool   `yaml:"file_enabled"`
		FilePath      string `yaml:"file_path"`
		RotationSize  int    `yaml:"rotation_size"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file next to the process, then
// applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.WhatsApp.APIURL, "WHATSAPP_API_URL")
	setString(&c.WhatsApp.Token, "FONNTE_TOKEN")
	setString(&c.DataSource.Provider, "DATA_PROVIDER")
	setString(&c.DataSource.BaseURL, "DATA_BASE_URL")
	setString(&c.DataSource.CSVDir, "CSV_DIR")
	setInt(&c.DataSource.LookbackDays, "LOOKBACK_DAYS")
	if v := os.Getenv("WATCH_SYMBOLS"); v != "" {
		c.DataSource.Symbols = splitList(v)
	}
	setString(&c.Schedule.ScanCron, "CRON_SCAN")
	setString(&c.Schedule.AlertCron, "CRON_ALERT")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Database.StoreFile, "STORE_FILE")
	setString(&c.Server.Addr, "HTTP_ADDR")
	setString(&c.Server.Mode, "GIN_MODE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Proxy, "HTTPS_PROXY")
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.CSVDir == "" {
		c.DataSource.CSVDir = "data/csv"
	}
	if c.DataSource.LookbackDays == 0 {
		c.DataSource.LookbackDays = 365
	}
	if c.DataSource.Retries == 0 {
		c.DataSource.Retries = 3
	}
	if c.WhatsApp.APIURL == "" {
		c.WhatsApp.APIURL = "https://api.fonnte.com/send"
	}
	if c.WhatsApp.CountryCode == "" {
		c.WhatsApp.CountryCode = "62"
	}
	if c.Analysis.ChartBars == 0 {
		c.Analysis.ChartBars = 60
	}
	if c.Analysis.MinBars == 0 {
		c.Analysis.MinBars = 50
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 16 * * 1-5"
	}
	if c.Schedule.AlertCron == "" {
		c.Schedule.AlertCron = "0 */5 9-16 * * 1-5"
	}
	if c.Database.SQLitePath == "" && c.Database.StoreFile == "" {
		c.Database.SQLitePath = "data/stock_sentinel.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.FilePath == "" {
		c.Log.FilePath = "logs"
	}
	if c.Log.RotationSize == 0 {
		c.Log.RotationSize = 50
	}
	if c.Log.RetentionDays == 0 {
		c.Log.RetentionDays = 14
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "csv", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, csv, mock", c.DataSource.Provider)
	}
	if c.DataSource.LookbackDays < 30 {
		return fmt.Errorf("data_source.lookback_days must be at least 30")
	}
	if c.DataSource.Retries < 1 {
		return fmt.Errorf("data_source.retries must be positive")
	}
	if c.Analysis.ChartBars < 1 {
		return fmt.Errorf("analysis.chart_bars must be positive")
	}
	if c.Analysis.MinBars < 1 {
		return fmt.Errorf("analysis.min_bars must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// WhatsAppEnabled reports whether the WhatsApp gateway token is configured.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsApp.Token != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}
