package streamers

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/duragraph/mdf/internal/mdf"
)

// RateLimited wraps another Streamer, blocking each Next call on a
// token-bucket limiter before delegating. Useful for throttling how fast
// graph instances are launched against a downstream drainer with limited
// capacity (a rate-limited external API, a fixed-size connection pool).
type RateLimited struct {
	inner   mdf.Streamer
	limiter *rate.Limiter
}

// NewRateLimited wraps inner behind a limiter allowing r events per second
// with burst capacity b.
func NewRateLimited(inner mdf.Streamer, r rate.Limit, b int) *RateLimited {
	return &RateLimited{inner: inner, limiter: rate.NewLimiter(r, b)}
}

func (s *RateLimited) Next(ctx context.Context) ([]mdf.Assignment, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Next(ctx)
}
