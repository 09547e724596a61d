// Package metrics defines and registers all custom Prometheus metrics for the
// FlowSuit API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the HTTP layer exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "flowsuit"

// ── Proposal metrics ──────────────────────────────────────────────────────────

// ProposalsCreatedTotal counts successfully created proposals.
// Label:
//   - payment_term: "50-50", "upfront", or "milestones"
var ProposalsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposals_created_total",
		Help:      "Total number of proposals created, by payment term.",
	},
	[]string{"payment_term"},
)

// ProposalCreationFailuresTotal counts failed creation attempts.
// Label:
//   - stage: which write step broke ("proposal", "project", "milestones")
var ProposalCreationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposal_creation_failures_total",
		Help:      "Total number of proposal creation attempts that failed, by stage.",
	},
	[]string{"stage"},
)

// ShareViewsTotal counts public magic link resolutions.
// Label:
//   - result: "hit" (token resolved) or "miss" (unknown token)
var ShareViewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "share_views_total",
		Help:      "Total number of magic link lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Client & milestone metrics ────────────────────────────────────────────────

// ClientsCreatedTotal counts newly created clients.
var ClientsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_created_total",
		Help:      "Total number of clients created.",
	},
)

// MilestonesPaidTotal counts milestones marked paid.
var MilestonesPaidTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "milestones_paid_total",
		Help:      "Total number of payment milestones marked as paid.",
	},
)
