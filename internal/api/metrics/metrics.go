// Package metrics defines and registers all custom Prometheus metrics for the
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register with the default registry at import time via
// promauto; the /metrics endpoint is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kakhaga"

// ── Invitation metrics ────────────────────────────────────────────────────────

// InvitationsCreatedTotal counts invitations created by partners.
var InvitationsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitations_created_total",
		Help:      "Total number of parent invitations created.",
	},
)

// InvitationTransitionsTotal counts accept/reject decisions.
// Label:
//   - status: the stored status after the decision ("ACCEPTED" or "REJECTED")
var InvitationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invitation_transitions_total",
		Help:      "Total number of invitation status transitions, by resulting status.",
	},
	[]string{"status"},
)

// ── Email metrics ─────────────────────────────────────────────────────────────

// EmailsSentTotal counts completed send attempt chains.
// Labels:
//   - template_type: the template used (e.g. "PARENT_INVITATION")
//   - result: "sent" or "failed"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of completed email send attempt chains, by template and result.",
	},
	[]string{"template_type", "result"},
)

// EmailRetriesTotal counts individual retry attempts inside send chains.
var EmailRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_retries_total",
		Help:      "Total number of SMTP retry attempts.",
	},
)

// EmailSendDuration measures a whole send chain, including backoff sleeps.
// Label:
//   - template_type: the template used
var EmailSendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "email_send_duration_seconds",
		Help:      "Duration of email send chains from first attempt to final outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"template_type"},
)
