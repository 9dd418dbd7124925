package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"litman/internal/config"
	"litman/internal/logging"
	"litman/internal/services"
	"litman/internal/services/llm"
	"litman/internal/stage"
)

// Policy is the retry and request configuration for analysis calls.
type Policy struct {
	MaxRetries        int
	BackoffBase       time.Duration
	RateLimitPadding  time.Duration
	DefaultRetryAfter time.Duration
	Timeout           time.Duration
	MaxTokens         int
	Temperature       float64
	TargetLanguage    string
}

// PolicyFromConfig reads the [analysis] section.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		MaxRetries:        cfg.Analysis.MaxRetries,
		BackoffBase:       time.Duration(cfg.Analysis.BackoffBaseSeconds) * time.Second,
		RateLimitPadding:  time.Duration(cfg.Analysis.RateLimitPaddingSeconds) * time.Second,
		DefaultRetryAfter: time.Duration(cfg.Analysis.DefaultRetryAfterSeconds) * time.Second,
		Timeout:           cfg.AnalysisTimeout(),
		MaxTokens:         cfg.Analysis.MaxTokens,
		Temperature:       cfg.Analysis.Temperature,
		TargetLanguage:    cfg.Workflow.TargetLanguage,
	}
}

// Backoff returns the wait before attempt k (1-based). The first attempt does
// not wait; attempt k>1 waits base * 2^(k-2).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return p.BackoffBase << (attempt - 2)
}

// RateLimitWait returns the wait after a rate-limited attempt: the server's
// suggestion, or the default, plus padding.
func (p Policy) RateLimitWait(err error) time.Duration {
	wait := p.DefaultRetryAfter
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) && statusErr.HasRetryAfter {
		wait = statusErr.RetryAfter
	}
	return wait + p.RateLimitPadding
}

// Option customizes the Service.
type Option func(*Service)

// WithSleeper replaces the timer-based wait between attempts.
func WithSleeper(sleep stage.Sleeper) Option {
	return func(s *Service) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// Service builds analysis workers that share an API client and policy.
type Service struct {
	client stage.Completer
	policy Policy
	sleep  stage.Sleeper
	logger *slog.Logger
}

// NewService constructs the analysis worker factory.
func NewService(client stage.Completer, policy Policy, logger *slog.Logger, opts ...Option) *Service {
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = 1
	}
	svc := &Service{
		client: client,
		policy: policy,
		sleep:  stage.Sleep,
		logger: logging.NewComponentLogger(logger, "analysis"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Worker returns a worker that analyzes content.
func (s *Service) Worker(content string) stage.Worker {
	return &Worker{svc: s, content: content}
}

// Worker analyzes one document.
type Worker struct {
	svc     *Service
	content string
}

func (w *Worker) request() llm.Request {
	p := w.svc.policy
	return llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: structureSystemPrompt},
			{Role: "system", Content: w.content},
			{Role: "user", Content: userPrompt(p.TargetLanguage)},
		},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Timeout:     p.Timeout,
	}
}

// Run performs up to MaxRetries attempts. Rate-limited, timed-out, transport,
// and non-200 attempts are retried; anything else aborts at once.
func (w *Worker) Run(ctx context.Context, token *stage.Token) stage.Outcome {
	logger := logging.WithContext(ctx, w.svc.logger)
	policy := w.svc.policy
	req := w.request()

	var (
		lastErr  error
		attempts int
		wait     time.Duration
	)
	for attempt := 1; attempt <= policy.MaxRetries; attempt++ {
		if wait > 0 {
			if err := w.svc.sleep(ctx, token, wait); err != nil {
				return stage.Cancelled(attempts)
			}
		}
		if token.Cancelled() {
			return stage.Cancelled(attempts)
		}

		attempts = attempt
		text, err := w.svc.client.Complete(ctx, req)
		if err == nil {
			logger.Info("analysis complete",
				logging.Int("attempts", attempts),
				logging.String(logging.FieldEventType, "analysis_complete"),
			)
			return stage.Success(stage.AnalysisPayload{Text: text}, attempts)
		}
		if token.Cancelled() || ctx.Err() != nil {
			return stage.Cancelled(attempts)
		}
		if !services.Retryable(err) {
			logging.ErrorWithContext(logger, "analysis aborted", "analysis_aborted",
				logging.Int("attempt", attempt),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the API returned an unusable response; retrying will not help"),
			)
			return stage.Failed(services.KindUnexpected, "unexpected error: "+err.Error(), err, attempts)
		}

		lastErr = err
		if errors.Is(err, services.ErrRateLimited) {
			wait = policy.RateLimitWait(err)
		} else {
			wait = policy.Backoff(attempt + 1)
		}
		if attempt < policy.MaxRetries {
			logging.WarnWithContext(logger, "analysis attempt failed, retrying", "analysis_retry",
				logging.Int("attempt", attempt),
				logging.Int("max_retries", policy.MaxRetries),
				logging.String("error_kind", string(services.KindOf(err))),
				logging.Duration("retry_in", wait),
				logging.Error(err),
				logging.String(logging.FieldImpact, "analysis is delayed"),
			)
		}
	}

	message := fmt.Sprintf("analysis failed after %d attempts: final error: %v", policy.MaxRetries, lastErr)
	logging.ErrorWithContext(logger, "analysis retries exhausted", "analysis_failed",
		logging.Int("attempts", attempts),
		logging.Error(lastErr),
		logging.String(logging.FieldErrorHint, "check API quota and network connectivity, then run litman analyze"),
	)
	return stage.Failed(services.KindOf(lastErr), message, lastErr, attempts)
}
