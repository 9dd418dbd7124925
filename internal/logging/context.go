package logging

import (
	"context"
	"log/slog"

	"litman/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for library item identifiers.
	FieldItemID = "item_id"
	// FieldStage is the standardized structured logging key for worker kinds.
	FieldStage = "stage"
	// FieldLane is the standardized structured logging key for lane names.
	FieldLane = "lane"
	// FieldCorrelationID is the standardized structured logging key for job request identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering (e.g. worker_start, lane_idle).
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for warnings and errors.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldDecisionType names a branch the code took on purpose (fallback, skip, retry).
	FieldDecisionType = "decision_type"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if lane, ok := services.LaneFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLane, lane))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
