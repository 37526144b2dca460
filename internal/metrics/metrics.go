package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the analysis service.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal        *prometheus.CounterVec // labels: result=ok|error
	AnalysisDuration     prometheus.Histogram
	FetchErrorsTotal     *prometheus.CounterVec // labels: provider
	AlertsTriggered      prometheus.Counter
	NotificationsSent    *prometheus.CounterVec // labels: channel, status
	RecommendationsTotal *prometheus.CounterVec // labels: label
}

// NewMetrics registers and returns all metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksentinel_analyses_total",
			Help: "Total analyses run, by result",
		}, []string{"result"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocksentinel_analysis_duration_seconds",
			Help:    "Time spent fetching and analysing one symbol",
			Buckets: prometheus.DefBuckets,
		}),
		FetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksentinel_fetch_errors_total",
			Help: "Failed price fetch attempts, by provider",
		}, []string{"provider"}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocksentinel_alerts_triggered_total",
			Help: "Price alerts that fired",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksentinel_notifications_total",
			Help: "Outgoing notifications, by channel and status",
		}, []string{"channel", "status"}),
		RecommendationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksentinel_recommendations_total",
			Help: "Recommendations produced, by label",
		}, []string{"label"}),
	}
	m.registry.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.FetchErrorsTotal,
		m.AlertsTriggered,
		m.NotificationsSent,
		m.RecommendationsTotal,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveAnalysis records the outcome of one analysis.
func (m *Metrics) ObserveAnalysis(seconds float64, label string, err error) {
	if m == nil {
		return
	}
	m.AnalysisDuration.Observe(seconds)
	if err != nil {
		m.AnalysesTotal.WithLabelValues("error").Inc()
		return
	}
	m.AnalysesTotal.WithLabelValues("ok").Inc()
	m.RecommendationsTotal.WithLabelValues(label).Inc()
}

// FetchError counts one failed fetch attempt.
func (m *Metrics) FetchError(provider string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(provider).Inc()
}

// Notification counts one notification attempt.
func (m *Metrics) Notification(channel string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.NotificationsSent.WithLabelValues(channel, status).Inc()
}

// AlertTriggered counts one fired alert.
func (m *Metrics) AlertTriggered() {
	if m == nil {
		return
	}
	m.AlertsTriggered.Inc()
}
