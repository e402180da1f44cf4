package aiproxy

import (
	"context"
	"time"
)

// Clock abstracts wall-clock time and blocking sleeps so the rate limiter
// and orchestrator can be tested without waiting.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until the context is canceled, in which case
	// it returns the context error.
	Sleep(ctx context.Context, d time.Duration) error
}

// systemClock is the production Clock backed by the time package.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
