// Package textutil provides small text helpers shared by the workers and the
// item store: filesystem-safe artifact names and rune-aware truncation.
package textutil
