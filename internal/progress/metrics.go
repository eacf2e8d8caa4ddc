// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package progress

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vk/experimentor/internal/grid"
)

const metricsPrefix = "experimentor_"

// Metrics exports batch progress as Prometheus metrics.
type Metrics struct {
	total       prometheus.Gauge
	done        prometheus.Gauge
	experiments *prometheus.CounterVec
	failures    prometheus.Counter
	batches     *prometheus.CounterVec
}

// NewMetrics registers the batch metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		total: factory.NewGauge(prometheus.GaugeOpts{
			Name: metricsPrefix + "batch_experiments",
			Help: "Number of combinations in the current batch",
		}),
		done: factory.NewGauge(prometheus.GaugeOpts{
			Name: metricsPrefix + "batch_experiments_done",
			Help: "Number of combinations of the current batch that are done, run or skipped",
		}),
		experiments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "experiments_total",
			Help: "Number of finished combinations by outcome",
		}, []string{"outcome"}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "attempt_failures_total",
			Help: "Number of failed experiment attempts",
		}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "batches_total",
			Help: "Number of finished batches by final state",
		}, []string{"state"}),
	}
}

func (m *Metrics) BatchStarted(total int) {
	m.total.Set(float64(total))
	m.done.Set(0)
}

// Advanced only moves the done gauge. Outcomes are counted by Skipped and
// BatchFinished.
func (m *Metrics) Advanced(done, _ int, _ string) {
	m.done.Set(float64(done))
}

func (m *Metrics) Skipped(string) {
	m.experiments.WithLabelValues("skipped").Inc()
}

func (m *Metrics) AttemptFailed(string, int, int, grid.Params, error) {
	m.failures.Inc()
}

func (m *Metrics) BatchFinished(summary Summary, _ error) {
	m.experiments.WithLabelValues("succeeded").Add(float64(summary.Succeeded))
	if summary.FailedTitle != "" {
		m.experiments.WithLabelValues("failed").Inc()
	}
	m.batches.WithLabelValues(summary.State).Inc()
}
