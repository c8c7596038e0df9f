package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	provisioningOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proxynum",
			Name:      "provisioning_total",
			Help:      "Create attempts by outcome.",
		},
		[]string{"category", "outcome"}, // outcome: success, conflict, cooldown, failed
	)

	provisioningDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "proxynum",
			Name:      "provisioning_pipeline_duration_seconds",
			Help:      "Duration of the carrier provisioning pipeline.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	cooldownRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proxynum",
			Name:      "cooldown_rejections_total",
			Help:      "Operations refused because a cooldown was active.",
		},
		[]string{"operation"},
	)

	lifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proxynum",
			Name:      "lifecycle_operations_total",
			Help:      "Completed lifecycle operations on virtual numbers.",
		},
		[]string{"operation"},
	)

	recoveryOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proxynum",
			Name:      "recovery_total",
			Help:      "Recovery attempts by outcome.",
		},
		[]string{"outcome"},
	)

	inboundMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proxynum",
			Name:      "inbound_messages_total",
			Help:      "Inbound messages by routing result.",
		},
		[]string{"result"}, // stored, or the drop reason
	)

	purgedNumbers = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "proxynum",
			Name:      "purged_virtual_numbers_total",
			Help:      "Deleted virtual numbers hard-purged after the retention window.",
		},
	)
)
