package anim

import (
	"context"
	"time"
)

// DefaultInterval is one frame at 60 fps.
const DefaultInterval = time.Second / 60

// Run ticks loop every interval until ctx is done or a frame faults.
// A canceled context is a clean stop and returns nil.
func Run(ctx context.Context, loop *Loop, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := loop.Tick(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := loop.Tick(); err != nil {
				return err
			}
		}
	}
}
