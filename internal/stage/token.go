package stage

import (
	"context"
	"sync"
	"time"

	"litman/internal/services"
)

// Token is a cooperative cancellation flag shared between the manager and one
// worker. Cancelling does not interrupt a call already in flight.
type Token struct {
	once sync.Once
	done chan struct{}
}

// NewToken returns an uncancelled token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel sets the flag. It is safe to call more than once.
func (t *Token) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done is closed when the token is cancelled.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Sleeper waits between attempts. It returns services.ErrCancelled when the
// token fires first, or ctx.Err() when the hard context ends.
type Sleeper func(ctx context.Context, token *Token, delay time.Duration) error

// Sleep is the default Sleeper backed by a timer.
func Sleep(ctx context.Context, token *Token, delay time.Duration) error {
	if token.Cancelled() {
		return services.ErrCancelled
	}
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-token.Done():
		return services.ErrCancelled
	case <-ctx.Done():
		return ctx.Err()
	}
}
