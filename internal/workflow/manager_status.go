package workflow

import (
	"context"
	"time"

	"litman/internal/stage"
)

// Status returns a snapshot of every lane.
func (m *Manager) Status(ctx context.Context) (StatusSummary, error) {
	var summary StatusSummary
	if err := m.do(ctx, func() { summary = m.snapshot() }); err != nil {
		return StatusSummary{Phase: PhaseClosed}, err
	}
	return summary, nil
}

func (m *Manager) snapshot() StatusSummary {
	summary := StatusSummary{
		Phase:      m.phase,
		ActiveItem: m.activeItem,
		Lanes:      make([]LaneStatus, 0, len(m.lanes)),
	}
	now := time.Now()
	for _, lane := range stage.Lanes() {
		st := m.lanes[lane]
		status := LaneStatus{
			Lane:      lane,
			Busy:      st.busy(),
			Queued:    len(st.queue),
			LastError: st.lastErr,
		}
		if j := st.running; j != nil {
			status.Running = j.entry.describe()
			status.RunningFor = now.Sub(j.startedAt)
		}
		summary.Lanes = append(summary.Lanes, status)
	}
	return summary
}
