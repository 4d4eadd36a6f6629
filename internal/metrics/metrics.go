// ABOUTME: Prometheus metrics for preparation, sync and the dev server
// ABOUTME: Registered once on the default registry via promauto
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gtaradio_websocket_clients",
		Help: "Number of connected clock websocket clients",
	})
	OffsetSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gtaradio_offset_seconds",
		Help: "Current shared broadcast clock offset",
	})
)

// Counters
var (
	PreparedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gtaradio_prepared_total",
		Help: "Audio buffers prepared for playback by source format",
	}, []string{"format"})
	PrepareErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gtaradio_prepare_errors_total",
		Help: "Preparation failures by error kind",
	}, []string{"kind"})
	SeeksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gtaradio_sync_seeks_total",
		Help: "Handle repositions by reason",
	}, []string{"reason"})
	SyncsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gtaradio_syncs_total",
		Help: "Sync passes over a loaded station",
	})
	PlayFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gtaradio_play_failures_total",
		Help: "autoPlay attempts rejected by the output",
	})
	StaleLoadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gtaradio_stale_loads_total",
		Help: "Station loads discarded because a newer load was requested",
	})
)

// Histograms
var (
	DecodeSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gtaradio_decode_seconds",
		Help:    "Time spent decoding a station file",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"format"})
)
