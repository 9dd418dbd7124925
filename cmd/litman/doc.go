// Package main hosts the litman CLI entrypoint and command graph.
//
// Commands that queue work (add, analyze, ask, translate) open a session,
// submit to the workflow manager, wait for every lane to go idle, and then run
// the shutdown sequence. An interrupt skips the wait and goes straight to
// shutdown. Read-only commands (list, show, chat-log) open the item store
// directly and do not take the session lock.
//
// Keep this package lean: behavior belongs in the internal packages; commands
// only parse arguments and render results.
package main
