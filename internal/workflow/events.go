package workflow

import (
	"context"
	"log/slog"
	"sync"

	"litman/internal/logging"
)

// IngestSucceeded is published by the result sink after an ingested item and
// its content artifact have been stored.
type IngestSucceeded struct {
	ItemID     int64
	SourcePath string
}

// IngestHandler reacts to IngestSucceeded.
type IngestHandler func(ctx context.Context, evt IngestSucceeded) error

// resultBus dispatches sink events to subscribers in registration order. Every
// handler runs even when an earlier one fails; the first error is returned.
type resultBus struct {
	mu       sync.RWMutex
	handlers []IngestHandler
	logger   *slog.Logger
}

func newResultBus(logger *slog.Logger) *resultBus {
	return &resultBus{logger: logging.NewComponentLogger(logger, "result-bus")}
}

func (b *resultBus) subscribe(handler IngestHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *resultBus) publish(ctx context.Context, evt IngestSucceeded) error {
	b.mu.RLock()
	handlers := make([]IngestHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("no subscribers for ingest event", logging.Int64(logging.FieldItemID, evt.ItemID))
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler(ctx, evt); err != nil {
			b.logger.Debug("ingest subscriber declined event",
				logging.Int("handler_index", i),
				logging.Int64(logging.FieldItemID, evt.ItemID),
				logging.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
