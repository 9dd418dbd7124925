package stage

import (
	"context"

	"litman/internal/services/llm"
)

// Worker describes the contract the workflow manager needs from each job kind.
//
// Run is called once, on the worker's own goroutine. ctx is the hard context:
// it is cancelled only when the manager force-stops the worker, which aborts
// any in-flight request. token carries cooperative cancellation and must be
// checked before each attempt and before any network call. Run returns the
// single terminal outcome; a worker that observes cancellation before its
// first attempt returns Cancelled(0).
type Worker interface {
	Run(ctx context.Context, token *Token) Outcome
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc func(ctx context.Context, token *Token) Outcome

func (f WorkerFunc) Run(ctx context.Context, token *Token) Outcome {
	return f(ctx, token)
}

// Completer issues one chat-completion call. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}
