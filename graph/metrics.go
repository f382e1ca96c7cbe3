// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors a Runner and Builder update
// across builds and run iterations. Callers register Collectors() with
// their own registry; a nil *Metrics is safe to use (every method is a
// no-op).
type Metrics struct {
	builds        prometheus.Counter
	rebuilds      prometheus.Counter
	runIterations prometheus.Counter
	ringWait      prometheus.Histogram
}

// NewMetrics creates a Metrics instance with the given namespace prefix
// (e.g. "framegraph").
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "builds_total", Help: "Completed full graph builds.",
		}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rebuilds_total", Help: "Rebuilds triggered by NEEDS_RECONNECT.",
		}),
		runIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "run_iterations_total", Help: "Completed run iterations.",
		}),
		ringWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "ring_wait_seconds", Help: "Time spent waiting on a ring slot's fence.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Collectors returns every collector for registration with a
// prometheus.Registerer.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{m.builds, m.rebuilds, m.runIterations, m.ringWait}
}

func (m *Metrics) observeBuild() {
	if m == nil {
		return
	}
	m.builds.Inc()
}

func (m *Metrics) observeRebuild() {
	if m == nil {
		return
	}
	m.rebuilds.Inc()
}

func (m *Metrics) observeRunIteration() {
	if m == nil {
		return
	}
	m.runIterations.Inc()
}

func (m *Metrics) observeRingWaitSeconds(seconds float64) {
	if m == nil {
		return
	}
	m.ringWait.Observe(seconds)
}
