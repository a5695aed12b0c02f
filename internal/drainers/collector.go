// Package drainers provides mdf.Drainer implementations: an in-memory
// Collector for tests and batch CLI runs, and the live sinks SPEC_FULL.md
// §6.2 calls for — Postgres, NATS, and a Mandelbrot-specific PPM writer.
package drainers

import (
	"context"
	"sync"

	"github.com/duragraph/mdf/internal/mdf"
)

// Received is one terminal token, tagged with the node it came from. The
// instance it belonged to is not recorded.
type Received struct {
	NodeID mdf.NodeId
	Value  any
}

// Collector accumulates every terminal token it receives in memory. Useful
// for mdfctl's local run mode and for tests.
type Collector struct {
	mu       sync.Mutex
	received []Received
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Accept(_ context.Context, nodeID mdf.NodeId, tok mdf.Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, Received{NodeID: nodeID, Value: tok.Value()})
	return nil
}

// Values returns a snapshot of every token received so far, in arrival
// order.
func (c *Collector) Values() []Received {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Received, len(c.received))
	copy(out, c.received)
	return out
}
