package notifications

import (
	"fmt"
	"time"

	"litman/internal/stage"
)

// EventType enumerates the observer-visible events.
type EventType string

const (
	EventLaneBusyChanged EventType = "lane_busy_changed"
	EventItemUpdated     EventType = "item_updated"
	EventJobFailed       EventType = "job_failed"
)

// Event is one orchestrator notification. Fields not relevant to Type are zero.
type Event struct {
	Type EventType
	Lane stage.Lane
	Busy bool
	// ItemID is zero for ingestion failures, which have no item yet; Source
	// then names the submitted path.
	ItemID   int64
	Source   string
	Artifact string
	Message  string
	At       time.Time
}

// LaneBusyChanged reports a lane switching between idle and busy.
func LaneBusyChanged(lane stage.Lane, busy bool) Event {
	return Event{Type: EventLaneBusyChanged, Lane: lane, Busy: busy, At: time.Now()}
}

// ItemUpdated reports that an artifact of an item was rewritten.
func ItemUpdated(itemID int64, artifact string) Event {
	return Event{Type: EventItemUpdated, ItemID: itemID, Artifact: artifact, At: time.Now()}
}

// JobFailed reports a job that ended in failure.
func JobFailed(itemID int64, source string, lane stage.Lane, message string) Event {
	return Event{Type: EventJobFailed, ItemID: itemID, Source: source, Lane: lane, Message: message, At: time.Now()}
}

// Subject names what the event is about, for display.
func (e Event) Subject() string {
	if e.ItemID != 0 {
		return fmt.Sprintf("item #%d", e.ItemID)
	}
	if e.Source != "" {
		return e.Source
	}
	return string(e.Lane)
}

func (e Event) String() string {
	switch e.Type {
	case EventLaneBusyChanged:
		state := "idle"
		if e.Busy {
			state = "busy"
		}
		return fmt.Sprintf("%s lane %s", e.Lane, state)
	case EventItemUpdated:
		return fmt.Sprintf("%s %s updated", e.Subject(), e.Artifact)
	case EventJobFailed:
		return fmt.Sprintf("%s %s failed: %s", e.Subject(), e.Lane, e.Message)
	default:
		return string(e.Type)
	}
}
