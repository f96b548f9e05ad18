package content

import (
	"strings"
	"testing"
)

func TestReadingStats(t *testing.T) {
	tests := []struct {
		name    string
		md      string
		cjk     int
		words   int
		minutes int
	}{
		{"empty", "", 0, 0, 0},
		{"cjk only", strings.Repeat("字", 900), 900, 0, 3},
		{"latin only", strings.Repeat("word ", 450), 0, 450, 3},
		{"one of each", "字 word", 1, 1, 1},
		{"mixed takes slower", strings.Repeat("字", 301) + strings.Repeat(" w", 10), 301, 10, 2},
		{"digits are not words", "2025 123", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadingStats(tt.md)
			if got.CJK != tt.cjk || got.Words != tt.words || got.Minutes != tt.minutes {
				t.Errorf("ReadingStats = %+v, want CJK=%d Words=%d Minutes=%d", got, tt.cjk, tt.words, tt.minutes)
			}
			if got.Total != got.CJK+got.Words {
				t.Errorf("Total = %d, want %d", got.Total, got.CJK+got.Words)
			}
		})
	}
}

func TestStripFrontMatter(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"---\ntitle: x\n---\nbody", "body"},
		{"---\r\ntitle: x\r\n---\r\nbody\r\n", "body\n"},
		{"---\n---\nbody", "body"},
		{"no front matter", "no front matter"},
		{"---\nunterminated\nbody", "---\nunterminated\nbody"},
		{"text\n---\nnot: front\n---\n", "text\n---\nnot: front\n---\n"},
	}
	for _, tt := range tests {
		if got := StripFrontMatter(tt.input); got != tt.expected {
			t.Errorf("StripFrontMatter(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name     string
		md       string
		n        int
		expected string
	}{
		{"empty", "", 150, ""},
		{"only front matter", "---\na: b\n---\n", 150, ""},
		{"markup removed", "# Title\n\n**bold** `code` [link]", 150, "Title  bold code link..."},
		{"html stripped", "<div>hi <b>there</b></div>", 150, "hi there..."},
		{"ampersand kept", "Tom & Jerry", 150, "Tom & Jerry..."},
		{"truncated by runes", "你好世界你好世界", 4, "你好世界..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.md, tt.n); got != tt.expected {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.md, tt.n, got, tt.expected)
			}
		})
	}
}

func TestExcerptNoNewlines(t *testing.T) {
	got := Excerpt("line one\nline two\n\nline three", 150)
	if strings.Contains(got, "\n") {
		t.Errorf("Excerpt kept a newline: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Excerpt = %q, want trailing ellipsis", got)
	}
}
