package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"litman/internal/conversation"
	"litman/internal/logging"
	"litman/internal/services"
	"litman/internal/stage"
)

func itemKey(id int64) string {
	return "item:" + strconv.FormatInt(id, 10)
}

// Submit validates and enqueues a request. It returns services.ErrDuplicate
// when the payload is already stored, queued, or running in its lane, and
// services.ErrShuttingDown once shutdown has begun.
func (m *Manager) Submit(ctx context.Context, req Request) error {
	var err error
	if doErr := m.do(ctx, func() { err = m.submit(req) }); doErr != nil {
		return doErr
	}
	return err
}

func (m *Manager) submit(req Request) error {
	if m.phase != PhaseAccepting {
		return services.Wrap(services.ErrShuttingDown, "workflow", "submit", string(m.phase), nil)
	}
	entry, err := m.buildEntry(req)
	if err != nil {
		return err
	}
	st := m.lanes[entry.lane]
	if m.inFlight(st, entry.identity()) {
		return services.Wrap(services.ErrDuplicate, "workflow", "submit", fmt.Sprintf("%s already queued or running", entry.identity()), nil)
	}
	st.queue = append(st.queue, entry)
	m.logger.Debug("request enqueued",
		logging.String(logging.FieldLane, string(entry.lane)),
		logging.String(logging.FieldCorrelationID, entry.requestID),
		logging.String("identity", entry.identity()),
		logging.Int("queued", len(st.queue)),
	)
	m.dispatch(entry.lane)
	return nil
}

func (m *Manager) buildEntry(req Request) (queueEntry, error) {
	entry := queueEntry{
		requestID:  uuid.NewString(),
		lane:       req.Lane,
		enqueuedAt: time.Now(),
	}
	switch req.Lane {
	case stage.LaneIngestion:
		path, err := cleanSourcePath(req.SourcePath)
		if err != nil {
			return queueEntry{}, err
		}
		existing, err := m.store.GetBySourcePath(m.baseCtx, path)
		if err != nil {
			return queueEntry{}, err
		}
		if existing != nil {
			return queueEntry{}, services.Wrap(services.ErrDuplicate, "workflow", "submit",
				fmt.Sprintf("%s already stored as item %d", path, existing.ID), nil)
		}
		entry.sourcePath = path
	case stage.LaneAnalysis:
		if err := m.requireItem(req.ItemID); err != nil {
			return queueEntry{}, err
		}
		entry.itemID = req.ItemID
	case stage.LaneConversation:
		id := req.ItemID
		if id == 0 {
			id = m.activeItem
		}
		if id == 0 {
			return queueEntry{}, services.Wrap(services.ErrNotFound, "workflow", "submit", "no active item", nil)
		}
		if err := m.requireItem(id); err != nil {
			return queueEntry{}, err
		}
		prompt := strings.TrimSpace(req.Prompt)
		if prompt == "" {
			return queueEntry{}, services.Wrap(services.ErrValidation, "workflow", "submit", "empty prompt", nil)
		}
		mode := req.Mode
		if mode == "" {
			mode = conversation.ModeChat
		}
		entry.itemID = id
		entry.mode = mode
		entry.prompt = prompt
	default:
		return queueEntry{}, services.Wrap(services.ErrValidation, "workflow", "submit", fmt.Sprintf("unknown lane %q", req.Lane), nil)
	}
	return entry, nil
}

func cleanSourcePath(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", services.Wrap(services.ErrValidation, "workflow", "submit", "empty source path", nil)
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "workflow", "submit", "resolve source path", err)
	}
	return filepath.Clean(abs), nil
}

func (m *Manager) requireItem(id int64) error {
	if id <= 0 {
		return services.Wrap(services.ErrValidation, "workflow", "submit", "item id required", nil)
	}
	item, err := m.store.GetByID(m.baseCtx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "submit", fmt.Sprintf("item %d", id), nil)
	}
	return nil
}

func (m *Manager) inFlight(st *laneState, identity string) bool {
	if st.running != nil && st.running.entry.identity() == identity {
		return true
	}
	for _, queued := range st.queue {
		if queued.identity() == identity {
			return true
		}
	}
	return false
}

// itemBusy reports whether any lane holds work for the item.
func (m *Manager) itemBusy(id int64) bool {
	for _, st := range m.lanes {
		if st.running != nil && st.running.entry.itemID == id {
			return true
		}
		for _, queued := range st.queue {
			if queued.itemID == id {
				return true
			}
		}
	}
	return false
}

// chainAnalysis enqueues analysis for every newly ingested item.
func (m *Manager) chainAnalysis(_ context.Context, evt IngestSucceeded) error {
	return m.submit(AnalysisRequest(evt.ItemID))
}

// SetActive makes id the target of conversation requests that name no item.
func (m *Manager) SetActive(ctx context.Context, id int64) error {
	var err error
	if doErr := m.do(ctx, func() {
		if err = m.requireItem(id); err == nil {
			m.activeItem = id
		}
	}); doErr != nil {
		return doErr
	}
	return err
}

// ResumePending submits analysis for every stored item that has none. Items
// already queued or running are skipped. It returns the number accepted.
func (m *Manager) ResumePending(ctx context.Context) (int, error) {
	var (
		accepted int
		err      error
	)
	if doErr := m.do(ctx, func() {
		items, listErr := m.store.ListMissingAnalysis(m.baseCtx)
		if listErr != nil {
			err = listErr
			return
		}
		for _, item := range items {
			if submitErr := m.submit(AnalysisRequest(item.ID)); submitErr != nil {
				m.logger.Debug("pending analysis not resubmitted",
					logging.Int64(logging.FieldItemID, item.ID),
					logging.Error(submitErr),
				)
				continue
			}
			accepted++
		}
	}); doErr != nil {
		return 0, doErr
	}
	if accepted > 0 {
		m.logger.Info("resumed pending analysis",
			logging.Int("items", accepted),
			logging.String(logging.FieldEventType, "resume_pending"),
		)
	}
	return accepted, err
}

// RemoveItem deletes an item and its artifacts. Items with queued or running
// work are refused.
func (m *Manager) RemoveItem(ctx context.Context, id int64) error {
	var err error
	if doErr := m.do(ctx, func() {
		if m.itemBusy(id) {
			err = services.Wrap(services.ErrValidation, "workflow", "remove", fmt.Sprintf("item %d has work in progress", id), nil)
			return
		}
		if err = m.store.Remove(m.baseCtx, id); err == nil && m.activeItem == id {
			m.activeItem = 0
		}
	}); doErr != nil {
		return doErr
	}
	return err
}

// ClearChat empties an item's conversation log. It is refused while a
// conversation request for the item is queued or running.
func (m *Manager) ClearChat(ctx context.Context, id int64) error {
	var err error
	if doErr := m.do(ctx, func() {
		st := m.lanes[stage.LaneConversation]
		busy := st.running != nil && st.running.entry.itemID == id
		for _, queued := range st.queue {
			busy = busy || queued.itemID == id
		}
		if busy {
			err = services.Wrap(services.ErrValidation, "workflow", "clear chat", fmt.Sprintf("item %d has a conversation in progress", id), nil)
			return
		}
		err = m.store.ClearChat(m.baseCtx, id)
	}); doErr != nil {
		return doErr
	}
	return err
}
