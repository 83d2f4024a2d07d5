// Package metrics records webhook, cache, and devserver activity.
//
// Code depends on the Recorder interface; Noop is the default so nothing
// has to be registered when metrics are not served.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook operations.
const (
	OpFetch   = "fetch"
	OpComment = "comment"
)

type Recorder interface {
	// WebhookRequest records one logical call; outcome is the result kind
	// (data, empty, warning, error, ok).
	WebhookRequest(op, outcome string, d time.Duration)
	CacheLookup(hit bool)
	CircuitOpened(name string)
	ServedRequest(route string, status int)
}

type Noop struct{}

func (Noop) WebhookRequest(string, string, time.Duration) {}
func (Noop) CacheLookup(bool)                             {}
func (Noop) CircuitOpened(string)                         {}
func (Noop) ServedRequest(string, int)                    {}

// Prometheus is a Recorder backed by client_golang collectors.
type Prometheus struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cache        *prometheus.CounterVec
	circuitOpens *prometheus.CounterVec
	served       *prometheus.CounterVec
}

// NewPrometheus registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them on promhttp.Handler().
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "web3news_webhook_requests_total",
				Help: "Webhook calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "web3news_webhook_duration_seconds",
				Help:    "Webhook call duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
			[]string{"op"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "web3news_cache_lookups_total",
				Help: "Fetch cache lookups by result",
			},
			[]string{"result"}, // hit|miss
		),
		circuitOpens: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "web3news_circuit_breaker_open_total",
				Help: "Circuit breaker open events",
			},
			[]string{"circuit"},
		),
		served: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "web3news_devserver_requests_total",
				Help: "Requests served by the development webhook",
			},
			[]string{"route", "code"},
		),
	}
}

func (p *Prometheus) WebhookRequest(op, outcome string, d time.Duration) {
	p.requests.WithLabelValues(op, outcome).Inc()
	p.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *Prometheus) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cache.WithLabelValues(result).Inc()
}

func (p *Prometheus) CircuitOpened(name string) {
	p.circuitOpens.WithLabelValues(name).Inc()
}

func (p *Prometheus) ServedRequest(route string, status int) {
	p.served.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
