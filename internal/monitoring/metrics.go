package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the run collectors. Each instance registers on its own
// registerer so tests and sweeps do not collide on the default registry.
type Metrics struct {
	registry prometheus.Gatherer

	runsTotal    *prometheus.CounterVec
	tradesTotal  *prometheus.CounterVec
	signalsTotal *prometheus.CounterVec
	runDuration  prometheus.Histogram
	finalEquity  *prometheus.GaugeVec
	errorsTotal  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	m.registry = reg
	return m
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssb_backtest_runs_total",
				Help: "Total number of backtest runs",
			},
			[]string{"symbol", "entry_rule"},
		),
		tradesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssb_trades_total",
				Help: "Total number of filled orders",
			},
			[]string{"side"},
		),
		signalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssb_signals_total",
				Help: "Total number of non-neutral signals by rule",
			},
			[]string{"rule", "direction"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ssb_backtest_duration_seconds",
				Help:    "Distribution of backtest run durations",
				Buckets: prometheus.DefBuckets,
			},
		),
		finalEquity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ssb_final_equity",
				Help: "Final equity of the last run per symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssb_errors_total",
				Help: "Total number of failed runs by error category",
			},
			[]string{"category"},
		),
	}

	reg.MustRegister(m.runsTotal, m.tradesTotal, m.signalsTotal, m.runDuration, m.finalEquity, m.errorsTotal)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records a finished backtest
func (m *Metrics) RecordRun(symbol, entryRule string, duration time.Duration, finalEquity float64) {
	m.runsTotal.WithLabelValues(symbol, entryRule).Inc()
	m.runDuration.Observe(duration.Seconds())
	m.finalEquity.WithLabelValues(symbol).Set(finalEquity)
}

// RecordTrade records a filled order, side is BUY or SELL
func (m *Metrics) RecordTrade(side string) {
	m.tradesTotal.WithLabelValues(side).Inc()
}

// RecordSignals adds the buy and sell counts of one rule
func (m *Metrics) RecordSignals(rule string, buys, sells int) {
	m.signalsTotal.WithLabelValues(rule, "buy").Add(float64(buys))
	m.signalsTotal.WithLabelValues(rule, "sell").Add(float64(sells))
}

// RecordError records a failed run
func (m *Metrics) RecordError(category string) {
	m.errorsTotal.WithLabelValues(category).Inc()
}
