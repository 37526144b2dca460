package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"StockSentinel/internal/alert"
	"StockSentinel/internal/api"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/config"
	"StockSentinel/internal/logger"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/scheduler"
	"StockSentinel/internal/store"
)

var version = "dev"

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "csv":
		return collector.NewCSVFetcher(cfg.DataSource.CSVDir)
	case "mock":
		return &collector.MockFetcher{}
	default:
		return collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	}
}

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Load config failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Config validation failed")
	}

	if err := logger.Init(logger.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		FileEnabled:    cfg.Log.FileEnabled,
		FilePath:       cfg.Log.FilePath,
		RotationSize:   cfg.Log.RotationSize,
		RetentionDays:  cfg.Log.RetentionDays,
		ServiceName:    "stock-sentinel",
		ServiceVersion: version,
	}); err != nil {
		log.Fatal().Err(err).Msg("Init logger failed")
	}
	log.Info().Str("config", cfgPath).Msg("StockSentinel starting")

	m := metrics.NewMetrics()

	// Init fetcher and collector
	fetcher := newFetcher(cfg)
	log.Info().Str("provider", fetcher.Name()).Msg("Data source ready")
	col := collector.NewCollector(fetcher, cfg.DataSource.LookbackDays, cfg.DataSource.Retries)
	col.Options.ChartBars = cfg.Analysis.ChartBars
	col.Options.MinBars = cfg.Analysis.MinBars
	col.Metrics = m

	// Init store
	st, err := store.Open(cfg.Database.SQLitePath, cfg.Database.StoreFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Open store failed")
	}
	defer st.Close()

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("Init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// Init notifiers
	var (
		tn        *notifier.TelegramNotifier
		broadcast notifier.Notifier
		contacts  alert.ContactSender
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		broadcast = tn
	} else {
		log.Warn().Msg("Telegram not configured, bot commands and digests disabled")
	}
	if cfg.WhatsAppEnabled() {
		contacts = notifier.NewWhatsAppNotifier(cfg.WhatsApp.APIURL, cfg.WhatsApp.Token, cfg.WhatsApp.CountryCode, cfg.Proxy)
		log.Info().Msg("WhatsApp alert contacts enabled")
	}

	checker := &alert.Checker{
		Quoter:   col,
		Store:    st,
		Recorder: rec,
		Notifier: broadcast,
		Contacts: contacts,
		Metrics:  m,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, st, checker, broadcast, rec)
	sched.Symbols = cfg.DataSource.Symbols
	sched.Metrics = m
	if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.AlertCron); err != nil {
		log.Fatal().Err(err).Msg("Register cron tasks failed")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("Telegram polling started")
	}

	// Start HTTP server
	accessLogger := log.Logger
	if cfg.Log.FileEnabled {
		accessLogger = logger.NewAccessLogger(cfg.Log.FilePath, cfg.Log.RotationSize, cfg.Log.RetentionDays)
	}
	router := api.NewRouter(api.Deps{
		Collector:    col,
		Store:        st,
		Checker:      checker,
		Recorder:     rec,
		Contacts:     contacts,
		Metrics:      m,
		Symbols:      cfg.DataSource.Symbols,
		ChartBars:    cfg.Analysis.ChartBars,
		Mode:         cfg.Server.Mode,
		Version:      version,
		AccessLogger: &accessLogger,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing watchlist scan now")
		go sched.RunScanNow()
	}

	log.Info().Msg("StockSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("Shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	cancel()
	log.Info().Msg("StockSentinel stopped")
}
