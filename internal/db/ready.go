package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	readyInitialInterval = 100 * time.Millisecond
	readyMaxInterval     = 2 * time.Second
)

// WaitForReady pings p with exponential backoff until it answers or timeout
// elapses. The last ping error is reported alongside the context error.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = readyInitialInterval
	b.MaxInterval = readyMaxInterval
	b.MaxElapsedTime = 0 // bounded by ctx

	var lastErr error
	err := backoff.Retry(func() error {
		lastErr = p.Ping(ctx)
		return lastErr
	}, backoff.WithContext(b, ctx))
	if err == nil {
		return nil
	}
	if lastErr != nil && ctx.Err() != nil {
		return fmt.Errorf("timeout waiting for database: %w (last error: %v)", ctx.Err(), lastErr)
	}
	return fmt.Errorf("timeout waiting for database: %w", err)
}
