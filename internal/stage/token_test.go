package stage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"litman/internal/services"
	"litman/internal/stage"
)

func TestTokenCancelIsIdempotent(t *testing.T) {
	token := stage.NewToken()
	if token.Cancelled() {
		t.Fatal("new token must not be cancelled")
	}
	token.Cancel()
	token.Cancel()
	if !token.Cancelled() {
		t.Fatal("expected token to be cancelled")
	}
}

func TestSleepWakesOnCancel(t *testing.T) {
	token := stage.NewToken()
	go func() {
		time.Sleep(10 * time.Millisecond)
		token.Cancel()
	}()
	start := time.Now()
	err := stage.Sleep(context.Background(), token, time.Minute)
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("sleep did not wake on cancellation")
	}
}

func TestSleepHonoursHardContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := stage.Sleep(ctx, stage.NewToken(), time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestOutcomeConstructors(t *testing.T) {
	ok := stage.Success(stage.AnalysisPayload{Text: "summary"}, 3)
	if ok.Status != stage.StatusSucceeded || ok.Attempts != 3 || ok.Silent() {
		t.Fatalf("unexpected success outcome %+v", ok)
	}
	if stage.LaneOf(ok.Payload) != stage.LaneAnalysis {
		t.Fatalf("unexpected payload lane %q", stage.LaneOf(ok.Payload))
	}

	failed := stage.Failed("", "boom", nil, 1)
	if failed.Failure.Kind != services.KindUnexpected {
		t.Fatalf("expected unexpected kind, got %q", failed.Failure.Kind)
	}

	cancelled := stage.Cancelled(0)
	if !cancelled.Silent() || !cancelled.Status.Terminal() {
		t.Fatalf("expected silent terminal cancellation, got %+v", cancelled)
	}
}
