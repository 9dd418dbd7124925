package notifications

import (
	"log/slog"

	"litman/internal/logging"
)

// Observer receives orchestrator events. Implementations must not block.
type Observer interface {
	Notify(Event)
}

// Func adapts a function to the Observer interface.
type Func func(Event)

func (f Func) Notify(e Event) {
	if f != nil {
		f(e)
	}
}

type multi []Observer

// Multi fans an event out to every non-nil observer in order.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multi) Notify(e Event) {
	for _, o := range m {
		o.Notify(e)
	}
}

type nop struct{}

func (nop) Notify(Event) {}

// Nop returns an observer that discards every event.
func Nop() Observer {
	return nop{}
}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes each event as a structured log line.
func NewLogObserver(logger *slog.Logger) Observer {
	return &logObserver{logger: logging.NewComponentLogger(logger, "events")}
}

func (l *logObserver) Notify(e Event) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, string(e.Type)),
	}
	if e.Lane != "" {
		attrs = append(attrs, logging.String(logging.FieldLane, string(e.Lane)))
	}
	if e.ItemID != 0 {
		attrs = append(attrs, logging.Int64(logging.FieldItemID, e.ItemID))
	}
	switch e.Type {
	case EventLaneBusyChanged:
		attrs = append(attrs, logging.Bool("busy", e.Busy))
		l.logger.Debug("lane state changed", logging.Args(attrs...)...)
	case EventItemUpdated:
		attrs = append(attrs, logging.String("artifact", e.Artifact))
		l.logger.Info("item updated", logging.Args(attrs...)...)
	case EventJobFailed:
		if e.Source != "" {
			attrs = append(attrs, logging.String("source_path", e.Source))
		}
		attrs = append(attrs,
			logging.String("error_message", e.Message),
			logging.String(logging.FieldImpact, "job dropped; resubmit to retry"),
		)
		logging.WarnWithContext(l.logger, "job failed", string(e.Type), attrs...)
	}
}
