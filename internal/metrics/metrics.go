// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the hosting checks. A nil *Metrics is
// valid and records nothing, so library callers are not forced to register.
type Metrics struct {
	// Hosting checks by final status
	ChecksTotal *prometheus.CounterVec

	// Collector latencies by signal source
	SignalLatency *prometheus.HistogramVec

	// Overall check latency including all collectors
	CheckLatency prometheus.Histogram

	// WHOIS fallback queries actually issued
	WhoisQueries prometheus.Counter

	// Requests rejected by the rate limiter
	RateLimited prometheus.Counter

	// Operator registry lookups by outcome
	RegistryLookups *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered against the
// default registry. Call it once per process.
func New() *Metrics {
	return &Metrics{
		ChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hostorigin_checks_total",
			Help: "Total hosting checks by final status",
		}, []string{"status"}),

		SignalLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hostorigin_signal_duration_seconds",
			Help:    "Duration of signal collection by source",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"signal"}), // signal: "dns", "platform", "whois"

		CheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hostorigin_check_duration_seconds",
			Help:    "Duration of a full hosting check including all signals",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),

		WhoisQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hostorigin_whois_queries_total",
			Help: "WHOIS fallback queries issued when DNS was inconclusive",
		}),

		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hostorigin_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),

		RegistryLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hostorigin_registry_lookups_total",
			Help: "Operator registry lookups by outcome",
		}, []string{"outcome"}), // outcome: "found", "not_found", "invalid", "bot_protected", "error"
	}
}

// IncrementCheck records a completed hosting check.
func (m *Metrics) IncrementCheck(status string) {
	if m != nil {
		m.ChecksTotal.WithLabelValues(status).Inc()
	}
}

// ObserveSignal records how long one collector took.
func (m *Metrics) ObserveSignal(signal string, d time.Duration) {
	if m != nil {
		m.SignalLatency.WithLabelValues(signal).Observe(d.Seconds())
	}
}

// ObserveCheck records the total check duration.
func (m *Metrics) ObserveCheck(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}

// IncrementWhoisQuery records one WHOIS fallback.
func (m *Metrics) IncrementWhoisQuery() {
	if m != nil {
		m.WhoisQueries.Inc()
	}
}

// IncrementRateLimited records one rejected request.
func (m *Metrics) IncrementRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}

// IncrementRegistryLookup records one operator registry lookup.
func (m *Metrics) IncrementRegistryLookup(outcome string) {
	if m != nil {
		m.RegistryLookups.WithLabelValues(outcome).Inc()
	}
}
