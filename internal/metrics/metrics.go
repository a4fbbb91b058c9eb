// Package metrics holds the Prometheus collectors for the gateway and the
// playback controller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gateway metrics
	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waisi_gateway_calls_total",
			Help: "Total number of gateway calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waisi_gateway_call_duration_seconds",
			Help:    "Gateway call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CredentialRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waisi_credential_registrations_total",
			Help: "Total number of guest registrations by outcome",
		},
		[]string{"outcome"},
	)

	// Stream resolution metrics
	StreamResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waisi_stream_resolutions_total",
			Help: "Total number of stream resolutions by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// Playback metrics
	PlaybackSessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waisi_playback_sessions_total",
			Help: "Total number of playback sessions started",
		},
	)

	PlaybackSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waisi_playback_sessions_active",
			Help: "Number of playback sessions not yet closed",
		},
	)

	PlaybackRecoveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waisi_playback_recoveries_total",
			Help: "Total number of automatic engine recoveries by category",
		},
		[]string{"category"},
	)

	PlaybackErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waisi_playback_errors_total",
			Help: "Total number of sessions that ended in a terminal error",
		},
		[]string{"kind"},
	)

	PlaybackAutoMutedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waisi_playback_auto_muted_total",
			Help: "Total number of sessions muted after an autoplay rejection",
		},
	)

	// Catalog metrics
	CatalogCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waisi_catalog_cache_lookups_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordGatewayCall records one gateway call.
func RecordGatewayCall(endpoint, outcome string, seconds float64) {
	GatewayCallsTotal.WithLabelValues(endpoint, outcome).Inc()
	GatewayCallDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordRegistration records a guest registration attempt.
func RecordRegistration(outcome string) {
	CredentialRegistrationsTotal.WithLabelValues(outcome).Inc()
}

// RecordResolution records a stream resolution.
func RecordResolution(source, outcome string) {
	StreamResolutionsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordSessionStarted records a new playback session.
func RecordSessionStarted() {
	PlaybackSessionsTotal.Inc()
	PlaybackSessionsActive.Inc()
}

// RecordSessionClosed records a playback session teardown.
func RecordSessionClosed() {
	PlaybackSessionsActive.Dec()
}

// RecordRecovery records an automatic engine recovery attempt.
func RecordRecovery(category string) {
	PlaybackRecoveriesTotal.WithLabelValues(category).Inc()
}

// RecordPlaybackError records a terminal playback error.
func RecordPlaybackError(kind string) {
	PlaybackErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordAutoMuted records a forced mute after autoplay rejection.
func RecordAutoMuted() {
	PlaybackAutoMutedTotal.Inc()
}

// RecordCacheLookup records a catalog cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CatalogCacheLookupsTotal.WithLabelValues(result).Inc()
}
