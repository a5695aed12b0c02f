package httpapi

import (
	"encoding/json"
	"sync"

	"github.com/duragraph/mdf/internal/mdf"
)

// Hub fans engine lifecycle events out to connected SSE clients. It also
// implements mdf.MetricsSink (the other callbacks are no-ops) so it can be
// wired straight into Engine's WithMetrics alongside a "real" sink via
// monitoring.Fanout.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan []byte]struct{})}
}

func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) publish(event string, payload any) {
	data, err := json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{Event: event, Data: payload})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- data:
		default:
			// slow consumer: drop rather than block the scheduler.
		}
	}
}

var _ mdf.MetricsSink = (*Hub)(nil)

func (h *Hub) NodeFired(mdf.NodeId)            {}
func (h *Hub) NodeDuration(mdf.NodeId, float64) {}
func (h *Hub) QueueDepth(int)                  {}
func (h *Hub) StealAttempt(bool)               {}
func (h *Hub) InstanceStarted()                { h.publish("instance_started", nil) }
func (h *Hub) InstanceCompleted()              { h.publish("instance_completed", nil) }
func (h *Hub) PortOverwrite(mdf.NodeId, string) {}
