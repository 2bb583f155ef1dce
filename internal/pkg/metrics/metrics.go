// Package metrics defines and registers all custom Prometheus metrics for the
// CloudScribe API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cloudscribe"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected authentication attempts.
// Label:
//   - reason: "missing", "token_expired", "token_malformed", "token_bad_signature",
//     "invalid_token", "token_revoked", "account_gone"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by the authentication middleware.",
	},
	[]string{"reason"},
)

// AuthzDeniedTotal counts authorization denials.
// Label:
//   - check: "permission" or "ownership"
var AuthzDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denied_total",
		Help:      "Total number of requests denied by permission or ownership checks.",
	},
	[]string{"check"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or the error code of the failure
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Collaborator metrics ──────────────────────────────────────────────────────

// EmailsTotal counts outbound email deliveries.
// Labels:
//   - template: mail template name
//   - result: "sent", "failed" or "dropped" (unsent at shutdown)
var EmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Total number of emails delivered or abandoned after retries.",
	},
	[]string{"template", "result"},
)

// MailQueueDepth tracks pending messages per mail worker.
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of emails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// WSConnections is the number of live WebSocket connections.
var WSConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Current number of live WebSocket connections.",
	},
)

// NotificationsCreatedTotal counts stored notifications.
var NotificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications created, by type.",
	},
	[]string{"type"},
)

// CacheLookupsTotal counts cache reads.
// Label:
//   - result: "hit", "miss" or "error"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of cache lookups, by result.",
	},
	[]string{"result"},
)

// DigestRunDuration measures one run of the weekly digest job.
var DigestRunDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "digest_run_duration_seconds",
		Help:      "Duration of a weekly digest run.",
		Buckets:   prometheus.DefBuckets,
	},
)
