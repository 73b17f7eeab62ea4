// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Matches counts sensor search outcomes: new, duplicate, rejected.
	Matches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendterm_matches_total",
			Help: "Fingerprint scan outcomes in standby.",
		},
		[]string{"outcome"},
	)

	// Submissions counts live ingestion attempts by result.
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendterm_submissions_total",
			Help: "Live attendance submissions to the ingestion endpoint.",
		},
		[]string{"result"},
	)

	QueueAppends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendterm_queue_appends_total",
		Help: "Records appended to the offline queue.",
	})

	QueueAppendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendterm_queue_append_errors_total",
		Help: "Offline queue appends that failed to reach storage.",
	})

	SyncPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendterm_sync_passes_total",
		Help: "Completed offline queue sync passes.",
	})

	// SyncRecords counts queued lines handled during sync: sent, failed, skipped.
	SyncRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendterm_sync_records_total",
			Help: "Queued lines processed by sync passes.",
		},
		[]string{"result"},
	)

	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendterm_mode_transitions_total",
			Help: "UI mode transitions by target mode.",
		},
		[]string{"mode"},
	)

	BacklightOn = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "attendterm_backlight_on",
		Help: "1 when the display backlight is powered.",
	})

	Online = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "attendterm_online",
		Help: "1 when the ingestion endpoint is reachable.",
	})
)

// Bool converts a flag to a gauge value.
func Bool(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
