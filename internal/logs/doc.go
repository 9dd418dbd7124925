// Package logs reads the litman log file for `litman logs`.
//
// Last returns the trailing lines with bounded memory and the offset to resume
// from; Follow polls from that offset until the context ends. ItemFilter keeps
// only lines that mention one library item in either log format.
package logs
