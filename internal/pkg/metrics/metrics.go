// Package metrics defines and registers all custom Prometheus metrics for the
// project management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default Prometheus registry on import
// via promauto; /metrics exposes them alongside the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pm"

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsCreatedTotal counts persisted notifications.
// Label:
//   - type: notification type (e.g. "task_deadline_reminder")
var NotificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications persisted, by type.",
	},
	[]string{"type"},
)

// EmailsTotal counts email delivery outcomes.
// Labels:
//   - type: notification type
//   - result: "sent", "failed", "skipped" (not eligible) or "unrendered"
var EmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Total number of notification emails, labelled by outcome.",
	},
	[]string{"type", "result"},
)

// DedupTotal counts reminder deduplication decisions.
// Labels:
//   - type: notification type
//   - result: "hit" (already sent within the window, skipped) or "miss"
var DedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_dedup_total",
		Help:      "Total number of dedup window checks, labelled by result (hit/miss).",
	},
	[]string{"type", "result"},
)

// ── Scheduler metrics ─────────────────────────────────────────────────────────

// SchedulerRunsTotal counts trigger executions.
// Labels:
//   - trigger: trigger name (e.g. "overdue-notifications")
//   - result: "ok", "error", "panic" or "skipped" (already running)
var SchedulerRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_runs_total",
		Help:      "Total number of scheduler trigger runs, by outcome.",
	},
	[]string{"trigger", "result"},
)

// SchedulerRunDuration measures how long a trigger handler runs.
var SchedulerRunDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scheduler_run_duration_seconds",
		Help:      "Duration of scheduler trigger handler executions.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"trigger"},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityLogFailuresTotal counts audit entries that could not be appended.
var ActivityLogFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_log_failures_total",
		Help:      "Total number of activity log appends that failed and were dropped.",
	},
)
