// Package stage defines the lifecycle contract shared by every lane worker:
// the Worker interface, the cooperative cancellation Token, and the Outcome
// variant a worker returns exactly once.
package stage
