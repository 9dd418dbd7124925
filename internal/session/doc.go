// Package session wires the item store, the completion client, the lane
// workers, and the workflow manager into one process-wide unit guarded by a
// lock on the data directory.
//
// A Session is what the CLI opens for every command that touches the library.
// Close runs the workflow shutdown sequence before the store is closed and the
// lock released.
package session
