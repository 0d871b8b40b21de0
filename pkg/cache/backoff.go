package cache

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"
)

// ErrUnavailable is returned when a remote cache backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff bounds the attempts made to reach a remote backend.
type Backoff struct {
	Attempts int
	// Delay is the wait before the second attempt; it doubles after that.
	Delay time.Duration
}

// DefaultBackoff gives a restarting Redis about a second and a half.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 500 * time.Millisecond}

// Do calls op until it succeeds, fails with an error that a retry cannot
// fix, or the attempts run out. It returns the last error.
func (b Backoff) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var err error
	for i := range attempts {
		if err = op(ctx); err == nil || !transient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

// transient reports whether err comes from the network rather than from
// the server refusing the request: dial failures, resets and timeouts.
// Authentication or protocol errors are final.
func transient(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF)
}
