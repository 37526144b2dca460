package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
)

type tickerRequest struct {
	Ticker string `json:"ticker"`
}

// Numeric fields arrive as numbers or strings depending on the client.
type candleRequest struct {
	Ticker string `json:"ticker"`
	Days   any    `json:"days"`
}

type alertRequest struct {
	Ticker    string `json:"ticker"`
	Price     any    `json:"price"`
	Condition string `json:"condition"`
	Contact   string `json:"contact"`
}

type idRequest struct {
	ID any `json:"id"`
}

func bindTicker(c *gin.Context) (string, bool) {
	var req tickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return "", false
	}
	ticker := model.NormalizeSymbol(req.Ticker)
	if ticker == "" {
		badRequest(c, "ticker is required")
		return "", false
	}
	return ticker, true
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "stock-sentinel",
		"version":   r.deps.Version,
		"timestamp": time.Now().UTC(),
	})
}

func (r *Router) analyze(c *gin.Context) {
	ticker, ok := bindTicker(c)
	if !ok {
		return
	}
	bundle, err := r.deps.Collector.Analyze(c.Request.Context(), ticker)
	if err != nil {
		fail(c, err)
		return
	}
	if err := r.deps.Recorder.RecordAnalysis(bundle); err != nil {
		log.Error().Err(err).Str("symbol", bundle.Symbol).Msg("Record analysis failed")
	}
	c.JSON(http.StatusOK, bundle)
}

func (r *Router) quote(c *gin.Context) {
	q, err := r.deps.Collector.Quote(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (r *Router) candlestick(c *gin.Context) {
	var req candleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	ticker := model.NormalizeSymbol(req.Ticker)
	if ticker == "" {
		badRequest(c, "ticker is required")
		return
	}
	days := int(calculator.ToSafeInt(req.Days, int64(r.deps.ChartBars)))
	candles, err := r.deps.Collector.Candles(c.Request.Context(), ticker, days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "days": days, "candles": candles})
}

func (r *Router) listWatchlist(c *gin.Context) {
	items, err := r.deps.Store.Watchlist(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlist": items, "count": len(items)})
}

func (r *Router) addWatch(c *gin.Context) {
	ticker, ok := bindTicker(c)
	if !ok {
		return
	}
	item, err := r.deps.Store.AddWatch(c.Request.Context(), ticker)
	if err != nil {
		fail(c, err)
		return
	}
	log.Info().Str("symbol", item.Symbol).Msg("Watchlist item added")
	c.JSON(http.StatusCreated, item)
}

func (r *Router) removeWatch(c *gin.Context) {
	ticker, ok := bindTicker(c)
	if !ok {
		return
	}
	if err := r.deps.Store.RemoveWatch(c.Request.Context(), ticker); err != nil {
		fail(c, err)
		return
	}
	log.Info().Str("symbol", ticker).Msg("Watchlist item removed")
	c.JSON(http.StatusOK, gin.H{"removed": ticker})
}

func (r *Router) watchlistPrices(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := r.deps.Store.Watchlist(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	symbols := make([]string, len(items))
	for i, it := range items {
		symbols[i] = it.Symbol
	}
	quotes, err := r.deps.Collector.Quotes(ctx, symbols)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes, "count": len(quotes)})
}

func (r *Router) listAlerts(c *gin.Context) {
	alerts, err := r.deps.Store.Alerts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

func (r *Router) addAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	cond, ok := model.ParseCondition(req.Condition)
	if !ok {
		badRequest(c, "condition must be above or below")
		return
	}
	a, err := r.deps.Store.AddAlert(c.Request.Context(), model.Alert{
		Symbol:      req.Ticker,
		TargetPrice: calculator.ToScalar(req.Price),
		Condition:   cond,
		Contact:     req.Contact,
	})
	if err != nil {
		fail(c, err)
		return
	}
	log.Info().
		Int64("id", a.ID).
		Str("symbol", a.Symbol).
		Str("condition", string(a.Condition)).
		Float64("target", a.TargetPrice).
		Msg("Alert created")

	notified := r.confirmAlert(c.Request.Context(), a)
	c.JSON(http.StatusCreated, gin.H{"alert": a, "notified": notified})
}

// confirmAlert tells the alert's contact that it was created. Failure does not
// undo the alert.
func (r *Router) confirmAlert(ctx context.Context, a model.Alert) bool {
	if a.Contact == "" || r.deps.Contacts == nil {
		return false
	}
	err := r.deps.Contacts.SendTo(ctx, a.Contact, notifier.FormatAlertCreated(a))
	r.deps.Metrics.Notification("whatsapp", err)
	if err != nil {
		log.Warn().Err(err).Int64("id", a.ID).Msg("Alert confirmation failed")
		return false
	}
	return true
}

func (r *Router) removeAlert(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	id := calculator.ToSafeInt(req.ID, 0)
	if id <= 0 {
		badRequest(c, "id must be a positive integer")
		return
	}
	if err := r.deps.Store.RemoveAlert(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": id})
}

func (r *Router) checkAlerts(c *gin.Context) {
	res, err := r.deps.Checker.Check(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (r *Router) topMovers(c *gin.Context) {
	ctx := c.Request.Context()
	limit := 5
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fail(c, fmt.Errorf("%w: limit must be a positive integer", model.ErrInvalidArgument))
			return
		}
		limit = n
	}

	items, err := r.deps.Store.Watchlist(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	symbols := r.deps.Symbols
	if len(items) > 0 {
		symbols = make([]string, len(items))
		for i, it := range items {
			symbols[i] = it.Symbol
		}
	}
	movers, err := r.deps.Collector.TopMovers(ctx, symbols, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, movers)
}
