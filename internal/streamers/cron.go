package streamers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/duragraph/mdf/internal/mdf"
)

// BatchFunc produces the Assignments for one cron firing.
type BatchFunc func(firedAt time.Time) []mdf.Assignment

// Cron launches one batch per cron schedule tick, blocking Next between
// ticks — the same ticker-driven wait the teacher's OutboxRelay/
// CleanupWorker background workers use, except the wake-up schedule comes
// from a cron.Schedule instead of a fixed time.Ticker interval.
type Cron struct {
	schedule cron.Schedule
	produce  BatchFunc
	last     time.Time
}

// NewCron parses spec as a standard five-field cron expression and builds
// a streamer that calls produce once per tick.
func NewCron(spec string, produce BatchFunc) (*Cron, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	return &Cron{schedule: schedule, produce: produce, last: time.Now()}, nil
}

func (c *Cron) Next(ctx context.Context) ([]mdf.Assignment, error) {
	next := c.schedule.Next(c.last)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case firedAt := <-timer.C:
		c.last = firedAt
		return c.produce(firedAt), nil
	}
}
