// Package streamers provides mdf.Streamer implementations: a fixed-batch
// replay streamer for tests and batch jobs, plus the live sources
// SPEC_FULL.md §6.2 calls for — cron-scheduled, rate-limited, Redis- and
// NATS-backed.
package streamers

import (
	"context"
	"sync"

	"github.com/duragraph/mdf/internal/mdf"
)

// Static replays a fixed sequence of batches in order, then reports
// end-of-stream. Safe for concurrent use only in the sense Next is never
// called concurrently by the engine itself; the mutex exists purely so
// tests can also poke at it directly.
type Static struct {
	mu      sync.Mutex
	batches [][]mdf.Assignment
	next    int
}

// NewStatic builds a Static streamer over batches, consumed in order.
func NewStatic(batches [][]mdf.Assignment) *Static {
	return &Static{batches: batches}
}

func (s *Static) Next(context.Context) ([]mdf.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.batches) {
		return nil, nil
	}
	b := s.batches[s.next]
	s.next++
	return b, nil
}
