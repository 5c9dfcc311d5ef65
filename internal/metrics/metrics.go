// metrics.go
//
// Document analysis versioning and provenance service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of docanalysis.
// docanalysis is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docanalysis is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docanalysis.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package metrics holds the service's Prometheus collectors.
// They are registered on the default registry, which fiberprometheus serves at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysisAppends counts AppendAnalysis outcomes by error kind ("ok" on success)
	AnalysisAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docanalysis",
		Name:      "analysis_appends_total",
		Help:      "Analysis append transactions by outcome.",
	}, []string{"outcome"})

	// StoreRetries counts transaction re-executions caused by contention
	StoreRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docanalysis",
		Name:      "store_retries_total",
		Help:      "Store transactions re-executed after contention.",
	})

	// PipelineSteps counts pipeline step outcomes
	PipelineSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docanalysis",
		Name:      "pipeline_steps_total",
		Help:      "Pipeline steps by step name and outcome.",
	}, []string{"step", "outcome"})

	// ExternalCallSeconds observes latency of calls to external collaborators
	ExternalCallSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "docanalysis",
		Name:      "external_call_seconds",
		Help:      "Latency of model, render, fetch and blob calls.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"call"})
)

// ObserveCall records the latency of an external call started at start
func ObserveCall(call string, start time.Time) {
	ExternalCallSeconds.WithLabelValues(call).Observe(time.Since(start).Seconds())
}

// Step records a pipeline step outcome
func Step(step string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PipelineSteps.WithLabelValues(step, outcome).Inc()
}
