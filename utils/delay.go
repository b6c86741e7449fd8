package utils

import (
	"context"
	"math/rand"
	"time"
)

// RandomDuration picks a duration between min and max.
// A window with max <= min collapses to min.
func RandomDuration(min, max time.Duration) time.Duration {
	diff := max - min
	if diff <= 0 {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(diff)))
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
