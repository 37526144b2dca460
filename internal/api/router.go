// Package api exposes the analysis engine, watchlist and alerts over HTTP.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"StockSentinel/internal/alert"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/recorder"
	"StockSentinel/internal/store"
)

// Deps holds everything the handlers need.
type Deps struct {
	Collector *collector.Collector
	Store     store.Store
	Checker   *alert.Checker
	Recorder  recorder.Recorder
	Contacts  alert.ContactSender // optional
	Metrics   *metrics.Metrics    // optional, enables GET /metrics
	// Symbols stand in for the watchlist on /api/top-movers when it is empty.
	Symbols      []string
	ChartBars    int
	Mode         string
	Version      string
	AccessLogger *zerolog.Logger
}

// Router owns the gin engine.
type Router struct {
	engine *gin.Engine
	deps   Deps
}

// NewRouter builds the engine with middleware and routes.
func NewRouter(deps Deps) *Router {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Checker == nil {
		deps.Checker = &alert.Checker{Quoter: deps.Collector, Store: deps.Store, Recorder: deps.Recorder}
	}
	if deps.ChartBars <= 0 {
		deps.ChartBars = 60
	}

	r := &Router{engine: gin.New(), deps: deps}
	r.engine.Use(Recovery())
	r.engine.Use(RequestID())
	r.engine.Use(Logging(LoggingConfig{
		AccessLogger: deps.AccessLogger,
		SkipPaths:    []string{"/health", "/metrics"},
	}))
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.health)
	if r.deps.Metrics != nil {
		r.engine.GET("/metrics", gin.WrapH(r.deps.Metrics.Handler()))
	}

	api := r.engine.Group("/api")
	{
		api.POST("/analyze", r.analyze)
		api.GET("/quote/:ticker", r.quote)
		api.POST("/candlestick", r.candlestick)

		watch := api.Group("/watchlist")
		{
			watch.GET("", r.listWatchlist)
			watch.POST("/add", r.addWatch)
			watch.POST("/remove", r.removeWatch)
			watch.GET("/prices", r.watchlistPrices)
		}

		alerts := api.Group("/alerts")
		{
			alerts.GET("", r.listAlerts)
			alerts.POST("/add", r.addAlert)
			alerts.POST("/remove", r.removeAlert)
			alerts.POST("/check", r.checkAlerts)
		}

		api.GET("/top-movers", r.topMovers)
	}
}

// Engine returns the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
