package ingest

import (
	"context"
	"log/slog"
	"time"

	"litman/internal/config"
	"litman/internal/extract"
	"litman/internal/logging"
	"litman/internal/services"
	"litman/internal/services/llm"
	"litman/internal/stage"
	"litman/internal/textutil"
)

// Options controls the refinement request and the fallback budget.
type Options struct {
	Timeout       time.Duration
	FallbackChars int
	MaxTokens     int
	Temperature   float64
}

// OptionsFromConfig reads the [ingestion] section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Timeout:       cfg.IngestionTimeout(),
		FallbackChars: cfg.Ingestion.FallbackChars,
		MaxTokens:     cfg.Ingestion.MaxTokens,
		Temperature:   cfg.Ingestion.Temperature,
	}
}

// Service builds ingestion workers that share an extractor and API client.
type Service struct {
	extractor extract.Extractor
	client    stage.Completer
	opts      Options
	logger    *slog.Logger
}

// NewService constructs the ingestion worker factory. A nil client disables
// refinement and every document keeps its truncated local text.
func NewService(extractor extract.Extractor, client stage.Completer, opts Options, logger *slog.Logger) *Service {
	return &Service{
		extractor: extractor,
		client:    client,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "ingest"),
	}
}

// Worker returns a worker that ingests sourcePath.
func (s *Service) Worker(sourcePath string) stage.Worker {
	return &Worker{svc: s, sourcePath: sourcePath}
}

// Worker ingests one document.
type Worker struct {
	svc        *Service
	sourcePath string
}

// Run extracts the document and refines it. Only an extraction failure fails
// the job.
func (w *Worker) Run(ctx context.Context, token *stage.Token) stage.Outcome {
	logger := logging.WithContext(ctx, w.svc.logger)
	if token.Cancelled() {
		return stage.Cancelled(0)
	}

	raw, err := w.svc.extractor.Extract(ctx, w.sourcePath)
	if err != nil {
		logger.Warn("local extraction failed",
			logging.String("source_path", w.sourcePath),
			logging.Error(err),
			logging.String(logging.FieldEventType, "extraction_failed"),
			logging.String(logging.FieldErrorHint, "check that the file is a readable PDF or text document"),
		)
		return stage.Failed(services.KindLocalExtraction, "local extraction failed: "+err.Error(), err, 0)
	}

	if token.Cancelled() {
		return stage.Cancelled(0)
	}
	if w.svc.client == nil {
		return stage.Success(stage.IngestPayload{Content: w.fallback(raw)}, 0)
	}

	refined, err := w.svc.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: refineSystemPrompt},
			{Role: "user", Content: raw},
		},
		Temperature: w.svc.opts.Temperature,
		MaxTokens:   w.svc.opts.MaxTokens,
		Timeout:     w.svc.opts.Timeout,
	})
	if err != nil {
		logger.Info("content refinement unavailable, keeping local text",
			logging.String(logging.FieldDecisionType, "ingest_fallback"),
			logging.String("error_kind", string(services.KindOf(err))),
			logging.Int("fallback_chars", w.svc.opts.FallbackChars),
			logging.Error(err),
		)
		return stage.Success(stage.IngestPayload{Content: w.fallback(raw)}, 1)
	}

	logger.Debug("content refined",
		logging.Int("raw_chars", len([]rune(raw))),
		logging.Int("refined_chars", len([]rune(refined))),
	)
	return stage.Success(stage.IngestPayload{Content: refined, Refined: true}, 1)
}

func (w *Worker) fallback(raw string) string {
	return textutil.TruncateRunes(raw, w.svc.opts.FallbackChars)
}
