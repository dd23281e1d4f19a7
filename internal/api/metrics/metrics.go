// Package metrics defines and registers all custom Prometheus metrics for the
// barbershop booking API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto and exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "barbershop"

// ── Appointment metrics ───────────────────────────────────────────────────────

// AppointmentsCreatedTotal counts appointments written to the store.
// Labels:
//   - source: "api" (raw create) or "booking" (slot booking)
//   - status: initial status of the appointment
var AppointmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointments_created_total",
		Help:      "Total number of appointments created, by source and initial status.",
	},
	[]string{"source", "status"},
)

// BookingsRejectedTotal counts slot bookings that were refused.
// Label:
//   - reason: "occupied", "past", "closed"
var BookingsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_rejected_total",
		Help:      "Total number of slot bookings rejected, by reason.",
	},
	[]string{"reason"},
)

// ── Record store metrics ──────────────────────────────────────────────────────

// StoreDecodeFailuresTotal counts collections that could not be decoded and
// were treated as empty.
var StoreDecodeFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_decode_failures_total",
		Help:      "Total number of unreadable collections degraded to empty.",
	},
	[]string{"kind"},
)

// StoreMutationDuration measures a full read-modify-write cycle.
var StoreMutationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_mutation_duration_seconds",
		Help:      "Duration of record store read-modify-write cycles.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// ── Image metrics ─────────────────────────────────────────────────────────────

// ImageUploadsTotal counts data URI uploads.
// Label:
//   - result: "saved" or "failed"
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of service image uploads, by result.",
	},
	[]string{"result"},
)

// ImageCleanupTotal counts managed upload removals.
// Label:
//   - result: "removed", "missing", "refused", "failed" or "dropped"
var ImageCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_cleanup_total",
		Help:      "Total number of managed image removals, by result.",
	},
	[]string{"result"},
)

// ImageCleanupQueueDepth tracks removals waiting in each cleanup worker.
var ImageCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "image_cleanup_queue_depth",
		Help:      "Current number of removals pending in each cleanup worker channel.",
	},
	[]string{"worker_id"},
)

// ── Messaging metrics ─────────────────────────────────────────────────────────

// SMSRelayTotal counts SMS relay attempts.
// Label:
//   - result: "sent", "unconfigured" or "upstream_error"
var SMSRelayTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sms_relay_total",
		Help:      "Total number of SMS relay attempts, by result.",
	},
	[]string{"result"},
)

// RemindersSentTotal counts reminders delivered by the desk poller.
var RemindersSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_sent_total",
		Help:      "Total number of appointment reminders delivered, by notifier.",
	},
	[]string{"notifier"},
)

// ── Reconciliation metrics ────────────────────────────────────────────────────

// CacheFallbackTotal counts remote failures answered from the local cache.
// Label:
//   - operation: "fetch", "create", "update", "delete" or "status"
var CacheFallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_fallback_total",
		Help:      "Total number of remote failures served from the local cache.",
	},
	[]string{"operation"},
)
