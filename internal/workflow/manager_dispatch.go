package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"litman/internal/conversation"
	"litman/internal/library"
	"litman/internal/logging"
	"litman/internal/notifications"
	"litman/internal/services"
	"litman/internal/stage"
)

// dispatch starts the head of the lane's queue when the lane is idle. Entries
// whose worker cannot be built are reported and skipped.
func (m *Manager) dispatch(lane stage.Lane) {
	st := m.lanes[lane]
	for m.phase == PhaseAccepting && !st.busy() && len(st.queue) > 0 {
		entry := st.queue[0]
		st.queue[0] = queueEntry{}
		st.queue = st.queue[1:]

		worker, err := m.buildWorker(entry)
		if err != nil {
			m.reportFailure(st, entry, err.Error())
			continue
		}
		m.start(st, entry, worker)
	}
	m.releaseIdleWaiters(false)
}

func (m *Manager) buildWorker(entry queueEntry) (stage.Worker, error) {
	switch entry.lane {
	case stage.LaneIngestion:
		if m.workers.Ingest == nil {
			return nil, errors.New("no ingestion worker configured")
		}
		return m.workers.Ingest(entry.sourcePath), nil
	case stage.LaneAnalysis:
		if m.workers.Analyze == nil {
			return nil, errors.New("no analysis worker configured")
		}
		content, err := m.store.LoadContent(m.baseCtx, entry.itemID)
		if err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
		return m.workers.Analyze(content), nil
	case stage.LaneConversation:
		if m.workers.Converse == nil {
			return nil, errors.New("no conversation worker configured")
		}
		// Translations carry their own passage; only chat needs the paper body.
		var content string
		if entry.mode == conversation.ModeChat {
			loaded, err := m.store.LoadContent(m.baseCtx, entry.itemID)
			if err != nil {
				return nil, fmt.Errorf("load content: %w", err)
			}
			content = loaded
		}
		if err := m.store.AppendChat(m.baseCtx, entry.itemID, library.ChatEntry{
			Role:      library.RoleUser,
			Content:   entry.prompt,
			Tag:       entry.mode.RequestTag(),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return nil, fmt.Errorf("record prompt: %w", err)
		}
		return m.workers.Converse(entry.mode, content, entry.prompt), nil
	default:
		return nil, fmt.Errorf("unknown lane %q", entry.lane)
	}
}

func (m *Manager) jobContext(entry queueEntry) context.Context {
	ctx := services.WithLane(m.baseCtx, string(entry.lane))
	ctx = services.WithStage(ctx, entry.lane.Kind())
	ctx = services.WithRequestID(ctx, entry.requestID)
	if entry.itemID > 0 {
		ctx = services.WithItemID(ctx, entry.itemID)
	}
	return ctx
}

func (m *Manager) start(st *laneState, entry queueEntry, worker stage.Worker) {
	ctx, cancel := context.WithCancel(m.jobContext(entry))
	j := &job{
		entry:     entry,
		worker:    worker,
		token:     stage.NewToken(),
		ctx:       ctx,
		cancel:    cancel,
		status:    stage.StatusRunning,
		startedAt: time.Now(),
	}
	st.running = j
	logging.WithContext(ctx, m.logger).Info("worker started",
		logging.String(logging.FieldEventType, "worker_start"),
		logging.Duration("queued_for", j.startedAt.Sub(entry.enqueuedAt)),
		logging.Int("remaining", len(st.queue)),
	)
	m.notify(notifications.LaneBusyChanged(st.lane, true))

	go m.runJob(j)
}

// runJob executes the worker and hands its outcome to the coordinator. An
// abandoned job's outcome is dropped.
func (m *Manager) runJob(j *job) {
	out := m.safeRun(j)
	select {
	case m.completions <- completion{job: j, outcome: out}:
	case <-m.abandon:
	}
}

func (m *Manager) safeRun(j *job) (out stage.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = stage.Failed(services.KindUnexpected, fmt.Sprintf("unexpected error: worker panic: %v", r), nil, out.Attempts)
		}
	}()
	return j.worker.Run(j.ctx, j.token)
}

// finish runs on the coordinator for every completion.
func (m *Manager) finish(c completion) {
	j := c.job
	if j.abandoned {
		return
	}
	st := m.lanes[j.entry.lane]
	if st.running != j {
		return
	}
	j.status = c.outcome.Status
	defer j.cancel()
	st.running = nil

	logger := logging.WithContext(j.ctx, m.logger)
	logger.Info("worker finished",
		logging.String(logging.FieldEventType, "worker_finish"),
		logging.String("outcome", c.outcome.String()),
		logging.Int("attempts", c.outcome.Attempts),
		logging.Duration("duration", time.Since(j.startedAt)),
	)

	m.applyOutcome(st, j, c.outcome)
	m.notify(notifications.LaneBusyChanged(st.lane, false))
	m.dispatch(st.lane)
}

func (m *Manager) reportFailure(st *laneState, entry queueEntry, message string) {
	st.lastErr = message
	logging.WarnWithContext(logging.WithContext(m.jobContext(entry), m.logger), "job failed", "job_failed",
		logging.String("message", message),
		logging.String(logging.FieldErrorHint, "check the LLM endpoint and the source document"),
		logging.String(logging.FieldImpact, "the request produced no result"),
	)
	m.notify(notifications.JobFailed(entry.itemID, entry.source(), entry.lane, message))
}
