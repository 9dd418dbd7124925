package services_test

import (
	"context"
	"testing"

	"litman/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemID(ctx, 42)
	ctx = services.WithStage(ctx, "analyze")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected item id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "analyze" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}

func TestLaneRoundTrip(t *testing.T) {
	ctx := services.WithLane(context.Background(), "conversation")
	if lane, ok := services.LaneFromContext(ctx); !ok || lane != "conversation" {
		t.Fatalf("unexpected lane: %v %v", lane, ok)
	}
	if _, ok := services.LaneFromContext(context.Background()); ok {
		t.Fatal("expected no lane on empty context")
	}
}

func TestItemIDIgnoresZero(t *testing.T) {
	ctx := services.WithItemID(context.Background(), 0)
	if _, ok := services.ItemIDFromContext(ctx); ok {
		t.Fatal("expected zero item id to be ignored")
	}
}
