package content

import (
	"strings"
	"testing"
)

func TestIsAbsolute(t *testing.T) {
	tests := []struct {
		ref      string
		expected bool
	}{
		{"https://example.com/a.png", true},
		{"http://example.com", true},
		{"//cdn.example/x.js", true},
		{"mailto:me@example.com", true},
		{"data:image/png;base64,AAAA", true},
		{"img/a.png", false},
		{"/img/a.png", false},
		{"../a.png", false},
		{"#top", false},
	}
	for _, tt := range tests {
		if got := IsAbsolute(tt.ref); got != tt.expected {
			t.Errorf("IsAbsolute(%q) = %v, want %v", tt.ref, got, tt.expected)
		}
	}
}

func TestResolveURL(t *testing.T) {
	base := "https://cdn.example/blog/"
	tests := []struct {
		ref      string
		expected string
	}{
		{"img.png", "https://cdn.example/blog/img.png"},
		{"./img/a.png", "https://cdn.example/blog/img/a.png"},
		{"../shared/a.png", "https://cdn.example/blog/shared/a.png"},
		{"../../../../etc/x.png", "https://cdn.example/blog/etc/x.png"},
		{"/root.png", "https://cdn.example/blog/root.png"},
		{"/img.png", "https://cdn.example/blog/img.png"},
		{"a/../b.png", "https://cdn.example/blog/b.png"},
		{"docs/", "https://cdn.example/blog/docs/"},
		{"?page=2", "https://cdn.example/blog/?page=2"},
		{"https://other.example/x.png", "https://other.example/x.png"},
		{"//other.example/x.png", "//other.example/x.png"},
		{"a.md?x=1#h", "https://cdn.example/blog/a.md?x=1#h"},
	}
	for _, tt := range tests {
		if got := ResolveURL(base, tt.ref); got != tt.expected {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", base, tt.ref, got, tt.expected)
		}
	}
}

func TestResolveURLStaysUnderBase(t *testing.T) {
	bases := []string{"https://cdn.example/blog/", "https://cdn.example/blog", "https://cdn.example/a/b/c/"}
	refs := []string{"/img.png", "../x.png", "../../up/y.png", "./z.png", "/../../w.md", "plain.md"}
	for _, base := range bases {
		want := normalizeBase(base)
		for _, ref := range refs {
			got := ResolveURL(base, ref)
			if !strings.HasPrefix(got, want) || strings.Contains(got, "..") {
				t.Errorf("ResolveURL(%q, %q) = %q, want it under %q", base, ref, got, want)
			}
		}
	}
}

func TestIsFragment(t *testing.T) {
	if !IsFragment("#section") {
		t.Error("IsFragment(#section) = false, want true")
	}
	if IsFragment("page#section") {
		t.Error("IsFragment(page#section) = true, want false")
	}
}
