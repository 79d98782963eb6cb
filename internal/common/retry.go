package common

import (
	"context"
	"time"
)

// RetryOnce runs fn and gives it a second attempt after a short backoff.
// A cancelled context skips the retry and returns the first error.
func RetryOnce(ctx context.Context, backoff time.Duration, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return err
	case <-time.After(backoff):
	}

	return fn()
}
