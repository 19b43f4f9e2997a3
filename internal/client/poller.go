package client

import (
	"context"
	"time"
)

// Poller intervals match how clients wait for background checklist and
// recommendation jobs: check every few seconds, give up after the deadline.
const (
	DefaultPollInterval = 3 * time.Second
	DefaultPollTimeout  = 2 * time.Minute
)

// ErrPollTimeout is returned when the deadline passes without the condition
// becoming true.
var ErrPollTimeout = context.DeadlineExceeded

// Poll calls check every interval until it returns true, errors, or the
// timeout elapses. A zero interval or timeout uses the defaults.
func Poll(ctx context.Context, interval, timeout time.Duration, check func(ctx context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// First check runs immediately so fast jobs return fast.
	done, err := check(ctx)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := check(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
