package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockSentinel/internal/alert"
	"StockSentinel/internal/calculator"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/store"
)

// MoversCount is how many gainers and losers /movers shows.
const MoversCount = 5

// Scheduler manages all cron tasks and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Store     store.Store
	Checker   *alert.Checker
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	// Symbols are scanned when the watchlist is empty.
	Symbols []string
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, st store.Store, checker *alert.Checker,
	n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Store:     st,
		Checker:   checker,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// RegisterAll registers the watchlist scan and the alert check.
func (s *Scheduler) RegisterAll(scanCron, alertCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(alertCron, s.alertTask); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("Scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

// RunScanNow executes the watchlist scan immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

// RunAlertsNow executes the alert check immediately.
func (s *Scheduler) RunAlertsNow() {
	s.alertTask()
}

func (s *Scheduler) scanSymbols(ctx context.Context) ([]string, error) {
	items, err := s.Store.Watchlist(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return s.Symbols, nil
	}
	symbols := make([]string, len(items))
	for i, it := range items {
		symbols[i] = it.Symbol
	}
	return symbols, nil
}

func (s *Scheduler) scanTask() {
	log.Info().Msg("Running watchlist scan")
	symbols, err := s.scanSymbols(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("Load watchlist failed")
		return
	}

	var (
		bundles []*model.ResultBundle
		failed  []string
	)
	for _, sym := range symbols {
		if s.Ctx.Err() != nil {
			return
		}
		b, err := s.Collector.Analyze(s.Ctx, sym)
		if err != nil {
			log.Error().Err(err).Str("symbol", sym).Msg("Scan analysis failed")
			failed = append(failed, sym)
			continue
		}
		s.record(b)
		bundles = append(bundles, b)
	}
	log.Info().Int("analysed", len(bundles)).Int("failed", len(failed)).Msg("Watchlist scan complete")
	s.trySend(notifier.FormatDigest(bundles, failed))
}

func (s *Scheduler) alertTask() {
	if s.Checker == nil {
		return
	}
	res, err := s.Checker.Check(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("Alert check failed")
		return
	}
	log.Debug().Int("checked", res.Checked).Int("triggered", len(res.Triggered)).Msg("Alert check complete")
}

func (s *Scheduler) record(b *model.ResultBundle) {
	if err := s.Recorder.RecordAnalysis(b); err != nil {
		log.Error().Err(err).Str("symbol", b.Symbol).Msg("Record analysis failed")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.ToLower(fields[0])
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at] // /help@SomeBot
	}
	args := fields[1:]

	switch cmd {
	case "/start":
		return "🤖 <b>Welcome to StockSentinel!</b>\n\nSend a ticker such as <code>BBCA.JK</code> for a technical analysis.\n\n" + notifier.HelpText()
	case "/help":
		return notifier.HelpText()
	case "/analyze", "/analisis":
		if len(args) == 0 {
			return "⚠️ Enter a ticker.\n\nExample:\n<code>/analyze BBCA.JK</code>"
		}
		return s.analyzeReply(ctx, args[0])
	case "/watchlist":
		return s.watchlistReply(ctx)
	case "/watch":
		if len(args) == 0 {
			return "⚠️ Usage: <code>/watch BBCA.JK</code>"
		}
		item, err := s.Store.AddWatch(ctx, args[0])
		switch {
		case errors.Is(err, model.ErrAlreadyExists):
			return fmt.Sprintf("ℹ️ %s is already on your watchlist.", model.NormalizeSymbol(args[0]))
		case err != nil:
			return errorReply(err)
		}
		return fmt.Sprintf("✅ %s added to your watchlist.", item.Symbol)
	case "/unwatch":
		if len(args) == 0 {
			return "⚠️ Usage: <code>/unwatch BBCA.JK</code>"
		}
		err := s.Store.RemoveWatch(ctx, args[0])
		switch {
		case errors.Is(err, model.ErrNotFound):
			return fmt.Sprintf("ℹ️ %s is not on your watchlist.", model.NormalizeSymbol(args[0]))
		case err != nil:
			return errorReply(err)
		}
		return fmt.Sprintf("🗑 %s removed from your watchlist.", model.NormalizeSymbol(args[0]))
	case "/alerts":
		alerts, err := s.Store.Alerts(ctx)
		if err != nil {
			return errorReply(err)
		}
		return notifier.FormatAlerts(alerts)
	case "/alert":
		return s.alertReply(ctx, args)
	case "/movers":
		return s.moversReply(ctx)
	}

	if strings.HasPrefix(cmd, "/") {
		return "🤔 Unknown command.\n\n" + notifier.HelpText()
	}
	if len(fields) == 1 && looksLikeTicker(fields[0]) {
		return s.analyzeReply(ctx, fields[0])
	}
	return "🤔 Send a valid ticker.\n\nExample: BBCA.JK, TLKM.JK, AAPL"
}

func looksLikeTicker(s string) bool {
	if len(s) < 2 || len(s) >= 20 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '^', r == '=':
		default:
			return false
		}
	}
	return true
}

func errorReply(err error) string {
	return fmt.Sprintf("❌ %s", err)
}

func (s *Scheduler) analyzeReply(ctx context.Context, symbol string) string {
	symbol = model.NormalizeSymbol(symbol)
	b, err := s.Collector.Analyze(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("Command analysis failed")
		return fmt.Sprintf("❌ Cannot analyse %s\n\nCheck the ticker:\n• Indonesia: BBCA.JK, TLKM.JK\n• US: AAPL, TSLA, MSFT", symbol)
	}
	s.record(b)
	return notifier.FormatAnalysis(b)
}

func (s *Scheduler) watchlistReply(ctx context.Context) string {
	items, err := s.Store.Watchlist(ctx)
	if err != nil {
		return errorReply(err)
	}
	if len(items) == 0 {
		return notifier.FormatWatchlist(items)
	}
	symbols := make([]string, len(items))
	for i, it := range items {
		symbols[i] = it.Symbol
	}
	quotes, err := s.Collector.Quotes(ctx, symbols)
	if err != nil {
		return errorReply(err)
	}
	return notifier.FormatWatchlist(items) + "\n\n" + notifier.FormatQuoteList("💹 Prices", quotes)
}

func (s *Scheduler) alertReply(ctx context.Context, args []string) string {
	const usage = "⚠️ Usage: <code>/alert BBCA.JK above 10000</code>"
	if len(args) != 3 {
		return usage
	}
	cond, ok := model.ParseCondition(args[1])
	if !ok {
		return usage
	}
	price := calculator.ToScalar(strings.ReplaceAll(args[2], ",", ""))
	a, err := s.Store.AddAlert(ctx, model.Alert{Symbol: args[0], TargetPrice: price, Condition: cond})
	if err != nil {
		if errors.Is(err, model.ErrInvalidArgument) {
			return usage
		}
		return errorReply(err)
	}
	return notifier.FormatAlertCreated(a)
}

func (s *Scheduler) moversReply(ctx context.Context) string {
	symbols, err := s.scanSymbols(ctx)
	if err != nil {
		return errorReply(err)
	}
	if len(symbols) == 0 {
		return notifier.FormatWatchlist(nil)
	}
	movers, err := s.Collector.TopMovers(ctx, symbols, MoversCount)
	if err != nil {
		return errorReply(err)
	}
	return notifier.FormatTopMovers(movers.Gainers, movers.Losers)
}

// retrySender is implemented by notifiers with their own retry policy.
type retrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	var err error
	if rs, ok := s.Notifier.(retrySender); ok {
		err = rs.SendWithRetry(s.Ctx, text, 3)
	} else {
		err = s.Notifier.Send(s.Ctx, text)
	}
	s.Metrics.Notification(s.Notifier.Name(), err)
	if err != nil {
		log.Error().Err(err).Msg("Send notification failed")
	}
}
