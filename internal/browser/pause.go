package browser

import (
	"context"
	"math/rand"
	"time"
)

// Pause waits for d or until ctx is done. d <= 0 returns at once.
func Pause(ctx context.Context, d time.Duration) error {
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

// RandomDelay waits for a random duration between min and max
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	if max <= min {
		return Pause(ctx, min)
	}
	return Pause(ctx, min+time.Duration(rand.Int63n(int64(max-min))))
}
