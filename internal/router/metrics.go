// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric naming follows the teacher's
// services/code_buddy/agent/routing/metrics.go convention: namespace per
// system, subsystem per component.
var (
	decisionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "privacyrouter",
		Subsystem: "routing",
		Name:      "decision_duration_seconds",
		Help:      "Time to produce a routing decision.",
		Buckets:   prometheus.DefBuckets,
	})

	selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privacyrouter",
		Subsystem: "routing",
		Name:      "selections_total",
		Help:      "Count of routing decisions by chosen backend and content mode.",
	}, []string{"backend", "content_mode"})

	fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privacyrouter",
		Subsystem: "routing",
		Name:      "fallbacks_total",
		Help:      "Count of routing decisions by fallback event kind.",
	}, []string{"kind"})

	blockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "privacyrouter",
		Subsystem: "routing",
		Name:      "blocked_total",
		Help:      "Count of routing decisions with is_safe=false.",
	})
)

// RecordDecision updates routing metrics for d. Call after
// MakeRoutingDecision and before AuditLogDecision.
func RecordDecision(d Decision, elapsedSeconds float64) {
	decisionLatency.Observe(elapsedSeconds)
	selections.WithLabelValues(string(d.Backend), string(d.ContentMode)).Inc()
	if d.FallbackEvent.Kind != "none" {
		fallbacks.WithLabelValues(d.FallbackEvent.Kind).Inc()
	}
	if !d.IsSafe {
		blockedTotal.Inc()
	}
}
