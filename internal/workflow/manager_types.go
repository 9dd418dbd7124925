package workflow

import (
	"context"
	"time"

	"litman/internal/conversation"
	"litman/internal/stage"
)

// Phase is the shutdown state of the manager.
type Phase string

const (
	PhaseAccepting    Phase = "accepting"
	PhaseDraining     Phase = "draining"
	PhaseGracePeriod  Phase = "grace_period"
	PhaseForceStopped Phase = "force_stopped"
	PhaseClosed       Phase = "closed"
)

// WorkerSet builds the worker for each lane's job kind.
type WorkerSet struct {
	Ingest   func(sourcePath string) stage.Worker
	Analyze  func(content string) stage.Worker
	Converse func(mode conversation.Mode, content, prompt string) stage.Worker
}

// Request is one submission. SourcePath is used by the ingestion lane, ItemID
// by the analysis and conversation lanes, Mode and Prompt by the conversation
// lane.
type Request struct {
	Lane       stage.Lane
	SourcePath string
	ItemID     int64
	Mode       conversation.Mode
	Prompt     string
}

// IngestRequest builds an ingestion submission.
func IngestRequest(sourcePath string) Request {
	return Request{Lane: stage.LaneIngestion, SourcePath: sourcePath}
}

// AnalysisRequest builds an analysis submission.
func AnalysisRequest(itemID int64) Request {
	return Request{Lane: stage.LaneAnalysis, ItemID: itemID}
}

// ChatRequest builds a question about an item. A zero itemID targets the
// active item.
func ChatRequest(itemID int64, question string) Request {
	return Request{Lane: stage.LaneConversation, ItemID: itemID, Mode: conversation.ModeChat, Prompt: question}
}

// TranslateRequest builds a translation of passage, logged against an item.
func TranslateRequest(itemID int64, passage string) Request {
	return Request{Lane: stage.LaneConversation, ItemID: itemID, Mode: conversation.ModeTranslate, Prompt: passage}
}

// queueEntry is a pending submission. Entries live only until dispatched.
type queueEntry struct {
	requestID  string
	lane       stage.Lane
	sourcePath string
	itemID     int64
	mode       conversation.Mode
	prompt     string
	enqueuedAt time.Time
}

// identity is the dedup key within a lane.
func (e queueEntry) identity() string {
	switch e.lane {
	case stage.LaneIngestion:
		return e.sourcePath
	case stage.LaneAnalysis:
		return itemKey(e.itemID)
	default:
		return e.requestID
	}
}

// source names the document the entry concerns, when known.
func (e queueEntry) source() string {
	return e.sourcePath
}

// describe is a short label for status output.
func (e queueEntry) describe() string {
	switch e.lane {
	case stage.LaneIngestion:
		return e.sourcePath
	case stage.LaneAnalysis:
		return itemKey(e.itemID)
	default:
		return string(e.mode) + " " + itemKey(e.itemID)
	}
}

// job is one dispatched entry and its worker.
type job struct {
	entry     queueEntry
	worker    stage.Worker
	token     *stage.Token
	ctx       context.Context
	cancel    context.CancelFunc
	status    stage.Status
	startedAt time.Time
	abandoned bool
}

// laneState is owned by the coordinator. busy is true exactly when running is
// non-nil.
type laneState struct {
	lane    stage.Lane
	queue   []queueEntry
	running *job
	lastErr string
}

func (l *laneState) busy() bool {
	return l.running != nil
}

// completion carries a worker's terminal outcome back to the coordinator.
type completion struct {
	job     *job
	outcome stage.Outcome
}

// LaneStatus describes one lane.
type LaneStatus struct {
	Lane       stage.Lane
	Busy       bool
	Queued     int
	Running    string
	RunningFor time.Duration
	LastError  string
}

// StatusSummary is a snapshot of the manager.
type StatusSummary struct {
	Phase      Phase
	ActiveItem int64
	Lanes      []LaneStatus
}

// Idle reports whether every lane is idle with an empty queue.
func (s StatusSummary) Idle() bool {
	for _, lane := range s.Lanes {
		if lane.Busy || lane.Queued > 0 {
			return false
		}
	}
	return true
}
