// Package services defines shared utilities consumed by the lane workers and
// the remote completion client.
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, lanes, worker kinds, and request
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, and KindOf/Retryable,
//     which map failures onto the job error taxonomy.
//
// Use these helpers when wiring new worker logic so error handling and
// observability stay uniform across lanes.
package services
