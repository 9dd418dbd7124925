// Package notifications delivers orchestrator events to observers.
//
// The workflow manager emits three event kinds: lane busy changes, item
// artifact updates, and job failures. Observers receive them on the manager's
// coordinator goroutine, so Notify must return quickly. The log observer writes
// structured lines; the ntfy observer queues a push message for finished
// analyses and failed jobs and delivers it from its own goroutine, degrading to
// a no-op when no topic is configured.
package notifications
