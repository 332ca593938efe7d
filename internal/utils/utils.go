package utils

import (
	"context"
	"time"
)

// WaitFor sleeps for d or until ctx is cancelled, whichever comes first.
// Used by the retry policy cooldown and the governor interval wait.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
