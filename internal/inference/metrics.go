// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inference

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric naming follows the same convention as internal/router/metrics.go,
// grounded on the teacher's agent/routing/metrics.go.
var (
	generateLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "privacyrouter",
		Subsystem: "inference",
		Name:      "generate_duration_seconds",
		Help:      "Time spent in a local-model generate call, by sampling mode.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})

	generateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "privacyrouter",
		Subsystem: "inference",
		Name:      "generate_failures_total",
		Help:      "Count of failed generate calls, by sampling mode.",
	}, []string{"mode"})

	modelLoads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "privacyrouter",
		Subsystem: "inference",
		Name:      "model_loads_total",
		Help:      "Count of completed model load operations.",
	})
)

func recordGenerate(mode string, d time.Duration, err error) {
	generateLatency.WithLabelValues(mode).Observe(d.Seconds())
	if err != nil {
		generateFailures.WithLabelValues(mode).Inc()
	}
}
