// Package metrics defines the custom Prometheus metrics of the blog service.
// HTTP request metrics come from the echoprometheus middleware; the vectors
// below count domain outcomes. All are registered on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "duplicate" or "invalid"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// GuardRejectionsTotal counts anonymous requests stopped by the auth guard.
// Label:
//   - response: "redirect" for browsers, "unauthorized" for JSON clients
var GuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_rejections_total",
		Help:      "Total number of anonymous requests rejected by the auth guard.",
	},
	[]string{"response"},
)

// ── Post metrics ──────────────────────────────────────────────────────────────

// PostMutationsTotal counts post mutations.
// Labels:
//   - action: "create", "update" or "delete"
//   - result: "ok", "invalid", "forbidden", "not_found" or "error"
var PostMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_mutations_total",
		Help:      "Total number of post mutations, by action and result.",
	},
	[]string{"action", "result"},
)
