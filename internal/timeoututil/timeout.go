// Package timeoututil implements the uniform timeout wrapper used so that
// every external call (network, child-process, filesystem, OAuth redirect
// wait) carries a context/cancellation token and is wrapped the same way.
package timeoututil

import (
	"context"
	"fmt"
	"time"
)

// Default timeouts.
const (
	DefaultListTimeout   = 30 * time.Second
	DefaultCallTimeout   = 60 * time.Second
	DefaultDaemonTimeout = 30 * time.Second
	DefaultOAuthTimeout  = 60 * time.Second
)

// TimeoutError is returned when the wrapped operation exceeds its deadline.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Op, e.Timeout)
}

// Run executes fn with a derived context bounded by timeout. If fn has not
// returned by the deadline, Run returns a *TimeoutError immediately; fn's
// goroutine is left to observe ctx.Done and exit on its own (the caller is
// responsible for making fn context-aware, exactly like the MCP transports
// this wraps).
func Run(ctx context.Context, op string, timeout time.Duration, fn func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, timeout)

	done := make(chan error, 1)
	go func() {
		done <- fn(cctx)
	}()

	select {
	case err := <-done:
		cancel()
		return err
	case <-cctx.Done():
		cancel()
		if cctx.Err() == context.DeadlineExceeded {
			return &TimeoutError{Op: op, Timeout: timeout}
		}
		return cctx.Err()
	}
}

// Call is like Run but returns a value alongside the error, for the common
// case of wrapping a call that produces a result.
func Call[T any](ctx context.Context, op string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero   T
		result T
	)
	err := Run(ctx, op, timeout, func(cctx context.Context) error {
		var innerErr error
		result, innerErr = fn(cctx)
		return innerErr
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}
