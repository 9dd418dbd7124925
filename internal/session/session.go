package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"litman/internal/analysis"
	"litman/internal/config"
	"litman/internal/conversation"
	"litman/internal/extract"
	"litman/internal/ingest"
	"litman/internal/library"
	"litman/internal/logging"
	"litman/internal/notifications"
	"litman/internal/services/llm"
	"litman/internal/stage"
	"litman/internal/workflow"
)

// ErrLocked is returned when another process holds the data directory lock.
var ErrLocked = errors.New("another litman session is using the data directory")

// Session owns the long-lived services for one process.
type Session struct {
	cfg     *config.Config
	logger  *slog.Logger
	lock    *flock.Flock
	store   *library.Store
	client  *llm.Client
	manager *workflow.Manager
	closers []func()
	resumed int

	closeOnce sync.Once
	closeErr  error
}

type options struct {
	observers []notifications.Observer
	completer stage.Completer
	extractor extract.Extractor
}

// Option customizes a Session.
type Option func(*options)

// WithObserver adds an observer alongside the log and ntfy observers.
func WithObserver(observer notifications.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithCompleter replaces the HTTP completion client used by the workers.
func WithCompleter(completer stage.Completer) Option {
	return func(o *options) {
		o.completer = completer
	}
}

// WithExtractor replaces the local text extractor.
func WithExtractor(extractor extract.Extractor) Option {
	return func(o *options) {
		o.extractor = extractor
	}
}

// Open acquires the data directory lock and builds every service. The
// workflow manager is not started until Start.
func Open(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, cfg.LockPath())
	}

	store, err := library.Open(cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open item store: %w", err)
	}

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Referer: cfg.LLM.Referer,
		Title:   cfg.LLM.Title,
	})
	var completer stage.Completer = client
	if o.completer != nil {
		completer = o.completer
	}
	var extractor extract.Extractor = extract.NewLocal()
	if o.extractor != nil {
		extractor = o.extractor
	}

	ingestSvc := ingest.NewService(extractor, completer, ingest.OptionsFromConfig(cfg), logger)
	analysisSvc := analysis.NewService(completer, analysis.PolicyFromConfig(cfg), logger)
	conversationSvc := conversation.NewService(completer, conversation.OptionsFromConfig(cfg), logger)

	s := &Session{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "session"),
		lock:   lock,
		store:  store,
		client: client,
	}

	ntfy := notifications.NewNtfyObserver(cfg, logger)
	if c, ok := ntfy.(interface{ Close() }); ok {
		s.closers = append(s.closers, c.Close)
	}
	observers := append([]notifications.Observer{notifications.NewLogObserver(logger), ntfy}, o.observers...)

	s.manager = workflow.NewManager(cfg, store, workflow.WorkerSet{
		Ingest:   ingestSvc.Worker,
		Analyze:  analysisSvc.Worker,
		Converse: conversationSvc.Worker,
	}, logger, workflow.WithObserver(notifications.Multi(observers...)))

	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
		},
	)
	return s, nil
}

// Start launches the workflow manager. When the configuration asks for it,
// items still missing an analysis are resubmitted.
func (s *Session) Start(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	s.logger.Info("session started",
		logging.String(logging.FieldEventType, "session_start"),
		logging.String("data_dir", s.cfg.Paths.DataDir),
	)
	if !s.cfg.Workflow.ReanalyzeOnStart {
		return nil
	}
	resumed, err := s.manager.ResumePending(ctx)
	s.resumed = resumed
	if err != nil {
		logging.WarnWithContext(s.logger, "resume pending analysis failed", "resume_pending_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run litman analyze <id> for items without analysis"),
			logging.String(logging.FieldImpact, "some items stay without analysis"),
		)
	}
	return nil
}

// Resumed reports how many pending analyses Start resubmitted.
func (s *Session) Resumed() int {
	return s.resumed
}

// Close shuts the workflow down, closes the store, and releases the lock. It
// is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.manager.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown workflow: %w", err))
		}
		for _, closeFn := range s.closers {
			closeFn()
		}
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close item store: %w", err))
		}
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release lock: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// Config returns the session configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Store returns the item store. Reads are safe from any goroutine; mutations
// should go through the Manager.
func (s *Session) Store() *library.Store { return s.store }

// Manager returns the workflow manager.
func (s *Session) Manager() *workflow.Manager { return s.manager }

// Client returns the completion client.
func (s *Session) Client() *llm.Client { return s.client }
