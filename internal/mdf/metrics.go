package mdf

// MetricsSink receives scheduler-level counters as the engine runs. It is
// the seam SPEC_FULL.md §6.2's internal/monitoring package hooks Prometheus
// into, without internal/mdf itself depending on promauto. nil is not a
// valid Option value; WithMetrics wires a concrete sink, and the engine
// otherwise falls back to noopMetrics.
type MetricsSink interface {
	// NodeFired is called once per node per instance, immediately before its
	// instruction body runs.
	NodeFired(nodeID NodeId)
	// NodeDuration reports the wall-clock time an instruction body took.
	NodeDuration(nodeID NodeId, seconds float64)
	// QueueDepth reports the global queue's length after a Put or Get.
	QueueDepth(depth int)
	// StealAttempt is called once per steal attempt by a worker.
	StealAttempt(success bool)
	// InstanceStarted is called once per streamer batch accepted.
	InstanceStarted()
	// InstanceCompleted is called once per terminal node that has drained
	// (or whose instruction failed). For a graph with k terminal nodes it is
	// therefore called k times per instance; it does not single out the
	// instance's last terminal.
	InstanceCompleted()
	// PortOverwrite is called whenever a token write lands on a port that
	// already held one from an earlier write (spec.md §9 Open Question 3).
	PortOverwrite(nodeID NodeId, param string)
}

type noopMetrics struct{}

func (noopMetrics) NodeFired(NodeId)                {}
func (noopMetrics) NodeDuration(NodeId, float64)     {}
func (noopMetrics) QueueDepth(int)                   {}
func (noopMetrics) StealAttempt(bool)                {}
func (noopMetrics) InstanceStarted()                 {}
func (noopMetrics) InstanceCompleted()               {}
func (noopMetrics) PortOverwrite(NodeId, string)     {}
