package conversation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"litman/internal/config"
	"litman/internal/logging"
	"litman/internal/services"
	"litman/internal/services/llm"
	"litman/internal/stage"
)

// Mode selects the conversation variant.
type Mode string

const (
	ModeChat      Mode = "chat"
	ModeTranslate Mode = "translation"
)

// Tag returns the conversation-log tag for replies in this mode.
func (m Mode) Tag() string {
	if m == ModeTranslate {
		return "translation"
	}
	return "chat"
}

// RequestTag returns the conversation-log tag for the user's prompt.
func (m Mode) RequestTag() string {
	if m == ModeTranslate {
		return "translation-request"
	}
	return "chat"
}

// Options configures conversation requests.
type Options struct {
	Timeout        time.Duration
	MaxTokens      int
	Temperature    float64
	TargetLanguage string
}

// OptionsFromConfig reads the [conversation] section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Timeout:        cfg.ConversationTimeout(),
		MaxTokens:      cfg.Conversation.MaxTokens,
		Temperature:    cfg.Conversation.Temperature,
		TargetLanguage: cfg.Workflow.TargetLanguage,
	}
}

// Service builds conversation workers.
type Service struct {
	client stage.Completer
	opts   Options
	logger *slog.Logger
}

// NewService constructs the conversation worker factory.
func NewService(client stage.Completer, opts Options, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "conversation"),
	}
}

// Worker returns a worker for one request. content is the document text and is
// ignored in translation mode.
func (s *Service) Worker(mode Mode, content, prompt string) stage.Worker {
	return &Worker{svc: s, mode: mode, content: content, prompt: prompt}
}

// Worker answers one question or translates one passage.
type Worker struct {
	svc     *Service
	mode    Mode
	content string
	prompt  string
}

func (w *Worker) request() llm.Request {
	var messages []llm.Message
	switch w.mode {
	case ModeTranslate:
		messages = []llm.Message{
			{Role: "system", Content: translationSystemPrompt},
			{Role: "user", Content: translationUserPrompt(w.prompt, w.svc.opts.TargetLanguage)},
		}
	default:
		messages = []llm.Message{
			{Role: "system", Content: w.content},
			{Role: "user", Content: w.prompt},
		}
	}
	return llm.Request{
		Messages:    messages,
		Temperature: w.svc.opts.Temperature,
		MaxTokens:   w.svc.opts.MaxTokens,
		Timeout:     w.svc.opts.Timeout,
	}
}

// Run issues the request once.
func (w *Worker) Run(ctx context.Context, token *stage.Token) stage.Outcome {
	logger := logging.WithContext(ctx, w.svc.logger)
	if token.Cancelled() {
		return stage.Cancelled(0)
	}

	reply, err := w.svc.client.Complete(ctx, w.request())
	if err != nil {
		if token.Cancelled() || ctx.Err() != nil {
			return stage.Cancelled(1)
		}
		kind, message := classify(err)
		logging.WarnWithContext(logger, "conversation request failed", "conversation_failed",
			logging.String("mode", string(w.mode)),
			logging.String("error_kind", string(kind)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the question was not answered"),
		)
		return stage.Failed(kind, message, err, 1)
	}

	logger.Debug("conversation reply received", logging.String("mode", string(w.mode)))
	return stage.Success(stage.ConversationPayload{Reply: reply, Tag: w.mode.Tag()}, 1)
}

// classify maps a failed call onto the three user-facing categories.
func classify(err error) (services.ErrorKind, string) {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, services.ErrNetworkTimeout):
		return services.KindNetworkTimeout, "request timed out, check network connection"
	case errors.As(err, &statusErr):
		return services.KindOf(err), "api request failed: " + statusErr.Body
	default:
		return services.KindUnexpected, "unexpected error: " + err.Error()
	}
}
