package monitoring

import "github.com/duragraph/mdf/internal/mdf"

// Fanout broadcasts every mdf.MetricsSink call to each sink it wraps —
// used by cmd/mdfd to feed both EngineMetrics (Prometheus) and
// httpapi.Hub (SSE) off the same Engine.
type Fanout []mdf.MetricsSink

var _ mdf.MetricsSink = Fanout(nil)

func (f Fanout) NodeFired(id mdf.NodeId) {
	for _, s := range f {
		s.NodeFired(id)
	}
}

func (f Fanout) NodeDuration(id mdf.NodeId, seconds float64) {
	for _, s := range f {
		s.NodeDuration(id, seconds)
	}
}

func (f Fanout) QueueDepth(depth int) {
	for _, s := range f {
		s.QueueDepth(depth)
	}
}

func (f Fanout) StealAttempt(success bool) {
	for _, s := range f {
		s.StealAttempt(success)
	}
}

func (f Fanout) InstanceStarted() {
	for _, s := range f {
		s.InstanceStarted()
	}
}

func (f Fanout) InstanceCompleted() {
	for _, s := range f {
		s.InstanceCompleted()
	}
}

func (f Fanout) PortOverwrite(id mdf.NodeId, param string) {
	for _, s := range f {
		s.PortOverwrite(id, param)
	}
}
