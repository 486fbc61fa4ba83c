package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	DefaultWaitInterval = 100 * time.Millisecond
	DefaultWaitTimeout  = 5000 * time.Millisecond
)

// WaitTimeoutError is returned by WaitFor when the element never appeared.
type WaitTimeoutError struct {
	Name    string
	Timeout time.Duration
}

func (e *WaitTimeoutError) Error() string {
	secs := strconv.FormatFloat(e.Timeout.Seconds(), 'f', -1, 64)
	return fmt.Sprintf("Element %q not found after %ss.", e.Name, secs)
}

type waitOptions struct {
	name     string
	interval time.Duration
	timeout  time.Duration
}

// WaitOption tunes WaitFor.
type WaitOption func(*waitOptions)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) WaitOption {
	return func(o *waitOptions) { o.interval = d }
}

// WithTimeout sets how long to poll before giving up.
func WithTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) { o.timeout = d }
}

// WithName labels the awaited element in the timeout error.
func WithName(name string) WaitOption {
	return func(o *waitOptions) { o.name = name }
}

// WaitFor polls lookup until it reports a value, the timeout elapses or ctx
// is cancelled. The ticker and timer are stopped on every return path.
func WaitFor[T any](ctx context.Context, lookup func() (T, bool), opts ...WaitOption) (T, error) {
	o := waitOptions{interval: DefaultWaitInterval, timeout: DefaultWaitTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.interval <= 0 {
		o.interval = DefaultWaitInterval
	}

	var zero T
	if v, ok := lookup(); ok {
		return v, nil
	}

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(o.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-deadline.C:
			// one last look so a value that arrived with the deadline is not lost
			if v, ok := lookup(); ok {
				return v, nil
			}
			return zero, &WaitTimeoutError{Name: o.name, Timeout: o.timeout}
		case <-ticker.C:
			if v, ok := lookup(); ok {
				return v, nil
			}
		}
	}
}

// WaitForAnchor waits until the host reports anchor as present.
func WaitForAnchor(ctx context.Context, host Host, anchor string, opts ...WaitOption) error {
	opts = append([]WaitOption{WithName(anchor)}, opts...)
	_, err := WaitFor(ctx, func() (struct{}, bool) {
		return struct{}{}, host.Exists(anchor)
	}, opts...)
	return err
}
