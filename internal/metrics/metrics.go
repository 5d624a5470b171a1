// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scraper
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinocat_scrape_fetch_total",
			Help: "Page fetches against the film site, by outcome",
		},
		[]string{"outcome"}, // "ok", "http_error", "transport_error", "rejected"
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinocat_scrape_fetch_duration_seconds",
			Help:    "Duration of a single page fetch",
			Buckets: prometheus.DefBuckets,
		},
	)

	FetchInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinocat_scrape_fetch_in_flight",
			Help: "Detail page fetches currently running",
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kinocat_scrape_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	PopulateRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinocat_populate_runs_total",
			Help: "Populate runs, by strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: "ok", "error"
	)

	PopulateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinocat_populate_duration_seconds",
			Help:    "Wall time of a populate run",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"strategy"},
	)

	FilmsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinocat_films_created_total",
			Help: "Films inserted by populate runs",
		},
	)

	// HTTP API
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinocat_api_requests_total",
			Help: "API requests, by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinocat_api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Hit counter
	CounterRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinocat_hit_counter_retries_total",
			Help: "Retried hit counter increments",
		},
	)
)

// ObserveRequest records one finished API request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObservePopulate records one finished populate run.
func ObservePopulate(strategy string, created int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PopulateRuns.WithLabelValues(strategy, outcome).Inc()
	PopulateDuration.WithLabelValues(strategy).Observe(d.Seconds())
	FilmsCreated.Add(float64(created))
}
