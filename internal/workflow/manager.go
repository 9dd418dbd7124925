package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"litman/internal/config"
	"litman/internal/library"
	"litman/internal/logging"
	"litman/internal/notifications"
	"litman/internal/services"
	"litman/internal/stage"
)

var errNotStarted = errors.New("workflow manager not started")

// Manager coordinates the ingestion, analysis, and conversation lanes.
type Manager struct {
	store    *library.Store
	workers  WorkerSet
	observer notifications.Observer
	logger   *slog.Logger
	bus      *resultBus
	grace    time.Duration
	poll     time.Duration

	cmds        chan func()
	completions chan completion
	quit        chan struct{}
	exited      chan struct{}
	abandon     chan struct{}

	// Owned by the coordinator goroutine.
	phase       Phase
	lanes       map[stage.Lane]*laneState
	activeItem  int64
	idleWaiters []chan struct{}

	mu           sync.Mutex
	started      bool
	baseCtx      context.Context
	shutdownOnce sync.Once
	shutdownErr  error
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithObserver sets the observer that receives lane and item events.
func WithObserver(observer notifications.Observer) ManagerOption {
	return func(m *Manager) {
		if observer != nil {
			m.observer = observer
		}
	}
}

// WithShutdownTiming overrides the grace window and its polling interval.
func WithShutdownTiming(grace, poll time.Duration) ManagerOption {
	return func(m *Manager) {
		if grace > 0 {
			m.grace = grace
		}
		if poll > 0 {
			m.poll = poll
		}
	}
}

// NewManager constructs a workflow manager. Call Start before submitting work.
func NewManager(cfg *config.Config, store *library.Store, workers WorkerSet, logger *slog.Logger, opts ...ManagerOption) *Manager {
	logger = logging.NewComponentLogger(logger, "workflow")
	m := &Manager{
		store:       store,
		workers:     workers,
		observer:    notifications.Nop(),
		logger:      logger,
		bus:         newResultBus(logger),
		grace:       cfg.ShutdownGrace(),
		poll:        cfg.ShutdownPoll(),
		cmds:        make(chan func()),
		completions: make(chan completion),
		quit:        make(chan struct{}),
		exited:      make(chan struct{}),
		abandon:     make(chan struct{}),
		phase:       PhaseAccepting,
		lanes:       make(map[stage.Lane]*laneState, 3),
	}
	if m.grace <= 0 {
		m.grace = 3 * time.Second
	}
	if m.poll <= 0 {
		m.poll = 100 * time.Millisecond
	}
	for _, lane := range stage.Lanes() {
		m.lanes[lane] = &laneState{lane: lane}
	}
	for _, opt := range opts {
		opt(m)
	}
	m.bus.subscribe(m.chainAnalysis)
	return m
}

// Start launches the coordinator goroutine. Worker contexts derive their
// values, but not their cancellation, from ctx.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("workflow already running")
	}
	if m.phase == PhaseClosed {
		return errors.New("workflow already shut down")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	m.baseCtx = context.WithoutCancel(ctx)
	m.started = true
	go m.run()
	m.logger.Debug("workflow coordinator started",
		logging.Duration("shutdown_grace", m.grace),
		logging.Duration("shutdown_poll", m.poll),
	)
	return nil
}

func (m *Manager) isStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// run is the coordinator loop. Every read or write of lane state, the active
// item, and the item store happens here.
func (m *Manager) run() {
	defer close(m.exited)
	for {
		select {
		case fn := <-m.cmds:
			fn()
		case c := <-m.completions:
			m.finish(c)
		case <-m.quit:
			return
		}
	}
}

// do runs fn on the coordinator and waits for it to return.
func (m *Manager) do(ctx context.Context, fn func()) error {
	if !m.isStarted() {
		return errNotStarted
	}
	done := make(chan struct{})
	select {
	case m.cmds <- func() { fn(); close(done) }:
	case <-m.exited:
		return services.Wrap(services.ErrShuttingDown, "workflow", "coordinate", "manager closed", nil)
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

func (m *Manager) notify(e notifications.Event) {
	m.observer.Notify(e)
}

func (m *Manager) idle() bool {
	for _, st := range m.lanes {
		if st.busy() || len(st.queue) > 0 {
			return false
		}
	}
	return true
}

func (m *Manager) releaseIdleWaiters(force bool) {
	if len(m.idleWaiters) == 0 || (!force && !m.idle()) {
		return
	}
	for _, ch := range m.idleWaiters {
		close(ch)
	}
	m.idleWaiters = nil
}

// WaitIdle blocks until every queue is empty and every lane is idle, or the
// manager closes.
func (m *Manager) WaitIdle(ctx context.Context) error {
	var waiter chan struct{}
	if err := m.do(ctx, func() {
		if m.idle() {
			return
		}
		waiter = make(chan struct{})
		m.idleWaiters = append(m.idleWaiters, waiter)
	}); err != nil {
		if errors.Is(err, services.ErrShuttingDown) {
			return nil
		}
		return err
	}
	if waiter == nil {
		return nil
	}
	select {
	case <-waiter:
		return nil
	case <-m.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
