// Package guardrails holds cross cutting safety helpers for ingest
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for a single archive hour.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Hour is the overall time budget for processing one shard
	Hour time.Duration

	// Fetch caps the network fetch step
	Fetch time.Duration

	// Read caps a single gzip ndjson extraction pass
	Read time.Duration

	// DB caps one batch flush
	DB time.Duration
}

// WithHour returns a context limited by the hour budget without extending any parent deadline.
// If Hour is zero it returns a cancelable child that simply inherits the parent deadline
func WithHour(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Hour)
}

// ForFetch returns a sub context for the fetch phase bounded by Fetch and any remaining parent budget
func ForFetch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Fetch)
}

// ForRead returns a sub context for one extraction pass bounded by Read and any remaining parent budget
func ForRead(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Read)
}

// ForDB returns a sub context for a flush bounded by DB and any remaining parent budget
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		d := time.Until(dl)
		if d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of the requested duration and any parent remainder.
// Never extends the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
