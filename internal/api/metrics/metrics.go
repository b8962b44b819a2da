// Package metrics defines and registers the custom Prometheus metrics of the
// salon booking API. It is the single source of truth for metric names,
// labels and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; the HTTP request metrics are added by the echoprometheus
// middleware in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salon"

// ── Identity metrics ──────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success" or "duplicate"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of client registrations, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: the role of the session opened ("client", "admin") or "invalid"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Appointment metrics ───────────────────────────────────────────────────────

// AppointmentsCreatedTotal counts newly booked appointments.
// Label:
//   - service: catalog service name, or "other" for free text
var AppointmentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointments_created_total",
		Help:      "Total number of appointments created, by service.",
	},
	[]string{"service"},
)

// StatusTransitionsTotal counts persisted status transitions.
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of appointment status transitions applied.",
	},
	[]string{"from", "to", "role"},
)

// StatusChangeRejectedTotal counts refused status changes.
// Label:
//   - reason: "not_found", "forbidden", "invalid_status", "invalid_transition" or "conflict"
var StatusChangeRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_change_rejected_total",
		Help:      "Total number of status changes rejected, by reason.",
	},
	[]string{"reason"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsProcessedTotal counts status changes recorded in the audit trail.
var EventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Total number of status change events successfully processed.",
	},
	[]string{"status", "actor_role"},
)

// EventsErrorsTotal counts event pipeline failures.
// Label:
//   - reason: "audit_failed", "publish_failed" or "process_failed"
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_errors_total",
		Help:      "Total number of status change events that failed a pipeline step.",
	},
	[]string{"reason"},
)

// EventsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var EventsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventProcessingDuration measures how long a single event takes to process.
// Label:
//   - status: the target appointment status, or "error" on failure
var EventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_processing_duration_seconds",
		Help:      "Duration of status change processing from dequeue to audit write.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)
