package stage

// Lane names an independent category of work with its own queue and
// single-flight slot.
type Lane string

const (
	LaneIngestion    Lane = "ingestion"
	LaneAnalysis     Lane = "analysis"
	LaneConversation Lane = "conversation"
)

// Lanes returns every lane in dispatch order.
func Lanes() []Lane {
	return []Lane{LaneIngestion, LaneAnalysis, LaneConversation}
}

// Kind returns the worker kind that runs on the lane.
func (l Lane) Kind() string {
	switch l {
	case LaneIngestion:
		return "ingest"
	case LaneAnalysis:
		return "analyze"
	case LaneConversation:
		return "converse"
	default:
		return string(l)
	}
}

// Valid reports whether l is one of the known lanes.
func (l Lane) Valid() bool {
	switch l {
	case LaneIngestion, LaneAnalysis, LaneConversation:
		return true
	}
	return false
}
