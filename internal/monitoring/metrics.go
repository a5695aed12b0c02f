// Package monitoring wires Prometheus into the scheduler's MetricsSink
// seam, the way the teacher's infrastructure/monitoring package wires
// promauto into its own HTTP/run/LLM counters — scoped here purely to the
// engine's own scheduling concerns.
package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/duragraph/mdf/internal/mdf"
)

// EngineMetrics is the Prometheus-backed mdf.MetricsSink implementation.
type EngineMetrics struct {
	nodesFired     *prometheus.CounterVec
	nodeDuration   prometheus.Histogram
	queueDepth     prometheus.Gauge
	stealAttempts  *prometheus.CounterVec
	instances      *prometheus.CounterVec
	portOverwrites *prometheus.CounterVec
}

var _ mdf.MetricsSink = (*EngineMetrics)(nil)

// NewEngineMetrics registers a fresh EngineMetrics under namespace (empty
// defaults to "mdf") against reg. A nil reg registers against Prometheus's
// default global registry.
func NewEngineMetrics(namespace string, reg prometheus.Registerer) *EngineMetrics {
	if namespace == "" {
		namespace = "mdf"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &EngineMetrics{
		nodesFired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_fired_total",
			Help:      "Total number of instruction nodes fired, by node id.",
		}, []string{"node_id"}),
		nodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Instruction body execution time.",
			Buckets:   prometheus.DefBuckets,
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "global_queue_depth",
			Help:      "Current depth of the engine's bounded global task queue.",
		}),
		stealAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steal_attempts_total",
			Help:      "Work-stealing attempts by outcome.",
		}, []string{"outcome"}),
		instances: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_total",
			Help:      "Graph instances by lifecycle event.",
		}, []string{"event"}),
		portOverwrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "port_overwrites_total",
			Help:      "Token writes landing on an already-written input port.",
		}, []string{"node_id", "param"}),
	}
}

func (m *EngineMetrics) NodeFired(nodeID mdf.NodeId) {
	m.nodesFired.WithLabelValues(strconv.Itoa(int(nodeID))).Inc()
}

func (m *EngineMetrics) NodeDuration(_ mdf.NodeId, seconds float64) {
	m.nodeDuration.Observe(seconds)
}

func (m *EngineMetrics) QueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *EngineMetrics) StealAttempt(success bool) {
	outcome := "miss"
	if success {
		outcome = "hit"
	}
	m.stealAttempts.WithLabelValues(outcome).Inc()
}

func (m *EngineMetrics) InstanceStarted()   { m.instances.WithLabelValues("started").Inc() }
func (m *EngineMetrics) InstanceCompleted() { m.instances.WithLabelValues("completed").Inc() }

func (m *EngineMetrics) PortOverwrite(nodeID mdf.NodeId, param string) {
	m.portOverwrites.WithLabelValues(strconv.Itoa(int(nodeID)), param).Inc()
}
