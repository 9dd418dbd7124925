package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicate         = errors.New("duplicate submission")
	ErrNetworkTimeout    = errors.New("network timeout")
	ErrHTTPStatus        = errors.New("http error")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
	ErrLocalExtraction   = errors.New("local extraction failure")
	ErrCancelled         = errors.New("cancelled")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrNotFound          = errors.New("not found")
	ErrShuttingDown      = errors.New("shutting down")
)

// ErrorKind names a failure class from the job error taxonomy.
type ErrorKind string

const (
	KindDuplicate         ErrorKind = "duplicate"
	KindNetworkTimeout    ErrorKind = "network_timeout"
	KindHTTPError         ErrorKind = "http_error"
	KindRateLimited       ErrorKind = "rate_limited"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindLocalExtraction   ErrorKind = "local_extraction"
	KindCancelled         ErrorKind = "cancelled"
	KindUnexpected        ErrorKind = "unexpected"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf maps an error onto the taxonomy. Rate limiting is checked before the
// generic HTTP marker because a 429 carries both.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrNetworkTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindNetworkTimeout
	case errors.Is(err, ErrHTTPStatus):
		return KindHTTPError
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrLocalExtraction):
		return KindLocalExtraction
	default:
		return KindUnexpected
	}
}

// Retryable reports whether the analysis retry loop may try again after err.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetworkTimeout, KindHTTPError, KindRateLimited:
		return true
	case KindUnexpected:
		return isTransport(err)
	default:
		return false
	}
}

// transportError is implemented by errors raised below the HTTP status layer
// (dial, TLS, connection reset).
type transportError interface {
	Transport() bool
}

func isTransport(err error) bool {
	var te transportError
	return errors.As(err, &te) && te.Transport()
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
