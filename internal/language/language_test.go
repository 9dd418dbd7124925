package language_test

import (
	"testing"

	"litman/internal/language"
)

func TestPromptName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Chinese", "Chinese"},
		{"  chinese ", "Chinese"},
		{"中文", "Chinese"},
		{"日本語", "Japanese"},
		{"Deutsch", "German"},
		{"de", "German"},
		{"zh-Hans", "Chinese"},
		{"pt_BR", "Portuguese"},
		{"Simplified Chinese", "Simplified Chinese"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := language.PromptName(tt.input); got != tt.want {
				t.Errorf("PromptName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
