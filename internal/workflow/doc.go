// Package workflow coordinates the three job lanes.
//
// A Manager owns one FIFO queue and one single-flight slot per lane
// (ingestion, analysis, conversation). All lane state, item store writes, and
// observer notifications happen on a single coordinator goroutine; callers
// reach it through Submit, Status, WaitIdle, and Shutdown, and workers report
// back over a completion channel. Each running worker gets a cooperative
// cancellation token plus a hard context that is cancelled only when shutdown
// gives up waiting.
//
// Successful ingestion publishes an IngestSucceeded event on an internal bus;
// the dispatcher subscribes to it and submits the new item to the analysis
// lane. Shutdown moves through Accepting, Draining, GracePeriod, ForceStopped,
// and Closed.
package workflow
