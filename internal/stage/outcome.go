package stage

import (
	"fmt"

	"litman/internal/services"
)

// Status is a worker lifecycle state. Succeeded, Failed, and Cancelled are
// terminal; a worker reaches exactly one of them.
type Status string

const (
	StatusCreated   Status = "created"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s ends the lifecycle.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// Payload is the success value of one worker kind.
type Payload interface {
	lane() Lane
}

// IngestPayload carries the stored content of a newly ingested document.
type IngestPayload struct {
	Content string
	// Refined is true when the content came back from the refinement call,
	// false when it is the truncated local extraction.
	Refined bool
}

func (IngestPayload) lane() Lane { return LaneIngestion }

// AnalysisPayload carries the generated analysis text.
type AnalysisPayload struct {
	Text string
}

func (AnalysisPayload) lane() Lane { return LaneAnalysis }

// ConversationPayload carries one assistant reply.
type ConversationPayload struct {
	Reply string
	Tag   string
}

func (ConversationPayload) lane() Lane { return LaneConversation }

// LaneOf returns the lane a payload belongs to.
func LaneOf(p Payload) Lane {
	if p == nil {
		return ""
	}
	return p.lane()
}

// Failure is the error half of an Outcome.
type Failure struct {
	Kind    services.ErrorKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Outcome is the single terminal result of a worker: Success(payload),
// Failure(kind, message), or Cancelled.
type Outcome struct {
	Status   Status
	Payload  Payload
	Failure  *Failure
	Attempts int
}

// Success builds a successful outcome.
func Success(payload Payload, attempts int) Outcome {
	return Outcome{Status: StatusSucceeded, Payload: payload, Attempts: attempts}
}

// Failed builds a failed outcome.
func Failed(kind services.ErrorKind, message string, err error, attempts int) Outcome {
	if kind == "" {
		kind = services.KindUnexpected
	}
	return Outcome{
		Status:   StatusFailed,
		Failure:  &Failure{Kind: kind, Message: message, Err: err},
		Attempts: attempts,
	}
}

// Cancelled builds a cancelled outcome. attempts is zero when the worker never
// started an attempt.
func Cancelled(attempts int) Outcome {
	return Outcome{Status: StatusCancelled, Attempts: attempts}
}

// Silent reports whether observers should hear nothing about this outcome.
func (o Outcome) Silent() bool {
	return o.Status == StatusCancelled
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusSucceeded:
		return fmt.Sprintf("succeeded after %d attempt(s)", o.Attempts)
	case StatusFailed:
		if o.Failure != nil {
			return fmt.Sprintf("failed (%s): %s", o.Failure.Kind, o.Failure.Message)
		}
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return string(o.Status)
	}
}
