// Package fileutil provides atomic artifact writes and tolerant file removal.
package fileutil
