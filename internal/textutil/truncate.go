package textutil

import "unicode/utf8"

// TruncateRunes returns at most limit runes of s. A non-positive limit returns s
// unchanged.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// Snippet truncates s to limit runes and appends an ellipsis when shortened.
func Snippet(s string, limit int) string {
	out := TruncateRunes(s, limit)
	if len(out) < len(s) {
		return out + "..."
	}
	return out
}
