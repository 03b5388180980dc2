package llm

import "testing"

func TestStripMarkdownCodeBlocks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced bare", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  \n```json\n{}\n```\n ", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownCodeBlocks(tt.in); got != tt.want {
				t.Errorf("StripMarkdownCodeBlocks(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
