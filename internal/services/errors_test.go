package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"litman/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrLocalExtraction, "ingest", "extract", "read pdf", base)
	if !errors.Is(err, services.ErrLocalExtraction) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ingest", "extract", "read pdf", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

type transportFailure struct{}

func (transportFailure) Error() string   { return "connection reset" }
func (transportFailure) Transport() bool { return true }

func TestKindOf(t *testing.T) {
	rateLimited := fmt.Errorf("%w: %w", services.ErrRateLimited, services.ErrHTTPStatus)
	cases := []struct {
		name string
		err  error
		want services.ErrorKind
	}{
		{"nil", nil, ""},
		{"duplicate", services.Wrap(services.ErrDuplicate, "", "submit", "a.pdf", nil), services.KindDuplicate},
		{"rate limit beats http", rateLimited, services.KindRateLimited},
		{"http", services.ErrHTTPStatus, services.KindHTTPError},
		{"deadline", context.DeadlineExceeded, services.KindNetworkTimeout},
		{"malformed", services.ErrMalformedResponse, services.KindMalformedResponse},
		{"extraction", services.ErrLocalExtraction, services.KindLocalExtraction},
		{"cancelled", context.Canceled, services.KindCancelled},
		{"other", errors.New("boom"), services.KindUnexpected},
	}
	for _, tc := range cases {
		if got := services.KindOf(tc.err); got != tc.want {
			t.Fatalf("%s: KindOf = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !services.Retryable(services.ErrHTTPStatus) {
		t.Fatal("expected http errors to be retryable")
	}
	if !services.Retryable(services.ErrNetworkTimeout) {
		t.Fatal("expected timeouts to be retryable")
	}
	if !services.Retryable(fmt.Errorf("dial: %w", transportFailure{})) {
		t.Fatal("expected transport failures to be retryable")
	}
	if services.Retryable(services.ErrMalformedResponse) {
		t.Fatal("malformed responses must not be retried")
	}
	if services.Retryable(errors.New("boom")) {
		t.Fatal("unclassified errors must not be retried")
	}
}
