package workflow

import (
	"context"
	"time"

	"litman/internal/logging"
	"litman/internal/stage"
)

// Shutdown stops the manager. Pending entries are discarded, running workers
// are asked to stop and given the grace window to finish, and whatever is
// still running afterwards is abandoned. Shutdown returns within roughly the
// grace window plus one poll interval and is safe to call more than once.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownOnce.Do(func() {
		m.shutdownErr = m.shutdown(ctx)
	})
	return m.shutdownErr
}

func (m *Manager) shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !m.isStarted() {
		m.phase = PhaseClosed
		return m.store.Flush(ctx)
	}
	ctx = context.WithoutCancel(ctx)
	began := time.Now()

	var dropped, signalled int
	_ = m.do(ctx, func() {
		m.phase = PhaseDraining
		for _, lane := range stage.Lanes() {
			st := m.lanes[lane]
			dropped += len(st.queue)
			st.queue = nil
			if st.running != nil {
				st.running.token.Cancel()
				signalled++
			}
		}
		m.releaseIdleWaiters(false)
	})
	m.logger.Info("workflow draining",
		logging.String(logging.FieldEventType, "shutdown_draining"),
		logging.Int("discarded", dropped),
		logging.Int("running", signalled),
	)

	_ = m.do(ctx, func() { m.phase = PhaseGracePeriod })
	remaining := m.awaitWorkers(ctx)

	var forced int
	_ = m.do(ctx, func() {
		m.phase = PhaseForceStopped
		for _, st := range m.lanes {
			if j := st.running; j != nil {
				j.abandoned = true
				j.cancel()
				st.running = nil
				forced++
			}
		}
	})
	close(m.abandon)
	if forced > 0 {
		logging.WarnWithContext(m.logger, "workers force-stopped", "shutdown_force_stop",
			logging.Int("workers", forced),
			logging.Int("still_running_after_grace", remaining),
			logging.String(logging.FieldErrorHint, "raise workflow.shutdown_grace_seconds if results are being lost"),
			logging.String(logging.FieldImpact, "results of abandoned workers are discarded"),
		)
	}

	var flushErr error
	_ = m.do(ctx, func() {
		flushErr = m.store.Flush(ctx)
		m.phase = PhaseClosed
		m.releaseIdleWaiters(true)
	})
	close(m.quit)
	<-m.exited

	m.logger.Info("workflow closed",
		logging.String(logging.FieldEventType, "shutdown_closed"),
		logging.Duration("duration", time.Since(began)),
	)
	return flushErr
}

// awaitWorkers polls the lanes until none is busy or the grace window ends.
// Completions keep flowing through the coordinator meanwhile. It returns the
// number of lanes still busy.
func (m *Manager) awaitWorkers(ctx context.Context) int {
	deadline := time.NewTimer(m.grace)
	defer deadline.Stop()
	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		running := m.runningCount(ctx)
		if running == 0 {
			return 0
		}
		select {
		case <-deadline.C:
			return m.runningCount(ctx)
		case <-ticker.C:
		}
	}
}

func (m *Manager) runningCount(ctx context.Context) int {
	var n int
	_ = m.do(ctx, func() {
		for _, st := range m.lanes {
			if st.busy() {
				n++
			}
		}
	})
	return n
}
