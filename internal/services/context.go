package services

import "context"

type contextKey int

const (
	itemIDKey contextKey = iota
	stageKey
	laneKey
	requestIDKey
)

// WithItemID annotates ctx with the library item a job works on. Ids <= 0 are
// ignored.
func WithItemID(ctx context.Context, id int64) context.Context {
	if id <= 0 {
		return ctx
	}
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext returns the item id set by WithItemID.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(itemIDKey).(int64)
	return id, ok
}

// WithStage annotates ctx with the worker kind (ingest, analyze, converse).
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, stageKey)
}

// WithLane annotates ctx with the lane the job runs on.
func WithLane(ctx context.Context, lane string) context.Context {
	return withString(ctx, laneKey, lane)
}

func LaneFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, laneKey)
}

// WithRequestID annotates ctx with the job's request id, logged as the
// correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}
