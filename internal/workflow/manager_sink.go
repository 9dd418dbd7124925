package workflow

import (
	"time"

	"litman/internal/library"
	"litman/internal/logging"
	"litman/internal/notifications"
	"litman/internal/stage"
)

// applyOutcome persists a terminal outcome and emits the matching events.
// Cancelled outcomes are silent.
func (m *Manager) applyOutcome(st *laneState, j *job, out stage.Outcome) {
	switch out.Status {
	case stage.StatusCancelled:
		logging.WithContext(j.ctx, m.logger).Debug("worker cancelled",
			logging.String(logging.FieldDecisionType, "silent_cancel"),
		)
	case stage.StatusFailed:
		message := "unexpected error"
		if out.Failure != nil {
			message = out.Failure.Message
		}
		if j.entry.lane == stage.LaneConversation {
			m.recordChat(j, library.ChatEntry{Role: library.RoleSystem, Content: "request failed: " + message, Tag: "error"})
		}
		m.reportFailure(st, j.entry, message)
	case stage.StatusSucceeded:
		m.applySuccess(st, j, out.Payload)
	}
}

func (m *Manager) applySuccess(st *laneState, j *job, payload stage.Payload) {
	switch p := payload.(type) {
	case stage.IngestPayload:
		item, err := m.store.Create(j.ctx, j.entry.sourcePath, p.Content, p.Refined)
		if err != nil {
			m.reportFailure(st, j.entry, "store content failed: "+err.Error())
			return
		}
		j.entry.itemID = item.ID
		m.notify(notifications.ItemUpdated(item.ID, string(library.ArtifactContent)))
		_ = m.bus.publish(j.ctx, IngestSucceeded{ItemID: item.ID, SourcePath: item.SourcePath})
	case stage.AnalysisPayload:
		if err := m.store.SaveAnalysis(j.ctx, j.entry.itemID, p.Text); err != nil {
			m.reportFailure(st, j.entry, "save analysis failed: "+err.Error())
			return
		}
		m.notify(notifications.ItemUpdated(j.entry.itemID, string(library.ArtifactAnalysis)))
	case stage.ConversationPayload:
		if !m.recordChat(j, library.ChatEntry{Role: library.RoleAssistant, Content: p.Reply, Tag: p.Tag}) {
			m.reportFailure(st, j.entry, "record reply failed")
			return
		}
		m.notify(notifications.ItemUpdated(j.entry.itemID, string(library.ArtifactConversation)))
	default:
		m.reportFailure(st, j.entry, "unexpected error: worker returned no payload")
	}
}

func (m *Manager) recordChat(j *job, entry library.ChatEntry) bool {
	entry.CreatedAt = time.Now().UTC()
	if err := m.store.AppendChat(j.ctx, j.entry.itemID, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(j.ctx, m.logger), "conversation log write failed", "chat_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the artifact directory"),
			logging.String(logging.FieldImpact, "the conversation log is missing an entry"),
		)
		return false
	}
	return true
}
