// Package metrics defines all custom Prometheus metrics for the UrbanNest
// auth API. It is the single source of truth for metric names, labels, and
// help strings. Counters register themselves on import via promauto;
// HTTP-level metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "urbannest"

// LoginsTotal counts login attempts by outcome.
// Labels:
//   - result: "success", "invalid", "deactivated", "throttled", "error"
//   - principal_type: "admin", "user", or "unknown" when the attempt failed
//     before resolving a principal
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result and principal type.",
	},
	[]string{"result", "principal_type"},
)

// RegistrationsTotal counts completed self-registrations.
// Label:
//   - role: the declared role ("user" or "agent")
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of completed registrations, by declared role.",
	},
	[]string{"role"},
)

// ResetRequestsTotal counts password-reset requests.
// Label:
//   - result: "sent", "not_found", "delivery_failed", "error"
var ResetRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_reset_requests_total",
		Help:      "Total number of password reset requests, by result.",
	},
	[]string{"result"},
)

// ResetConsumptionsTotal counts consume attempts against issued reset tokens.
// Label:
//   - result: "success", "invalid", "rejected", "error"
var ResetConsumptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_reset_consumptions_total",
		Help:      "Total number of reset-token consume attempts, by result.",
	},
	[]string{"result"},
)
