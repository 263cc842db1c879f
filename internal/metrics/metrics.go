package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements collector.Metrics and cache.Metrics using Prometheus.
type Recorder struct {
	reg           *prometheus.Registry
	duration      *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
	cacheTotal    *prometheus.CounterVec
	dominantCycle *prometheus.GaugeVec
	notifications *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantlens_analysis_duration_seconds",
				Help:    "Duration of analysis operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantlens_analysis_errors_total",
				Help: "Total number of failed analysis operations",
			},
			[]string{"op"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantlens_provider_cache_total",
				Help: "Price cache lookups by result",
			},
			[]string{"result"},
		),
		dominantCycle: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantlens_dominant_cycle_days",
				Help: "Period of the strongest detected price cycle, in trading days",
			},
			[]string{"ticker"},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantlens_notifications_total",
				Help: "Telegram messages by outcome",
			},
			[]string{"status"},
		),
	}
}

func (r *Recorder) ObserveDuration(op string, d time.Duration) {
	r.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (r *Recorder) IncError(op string) {
	r.errorsTotal.WithLabelValues(op).Inc()
}

func (r *Recorder) SetDominantCycle(ticker string, days float64) {
	r.dominantCycle.WithLabelValues(ticker).Set(days)
}

func (r *Recorder) IncCache(result string) {
	r.cacheTotal.WithLabelValues(result).Inc()
}

// IncNotification counts a sent ("ok") or failed ("error") message.
func (r *Recorder) IncNotification(status string) {
	r.notifications.WithLabelValues(status).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
