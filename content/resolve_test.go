package content

import "testing"

func TestResolve(t *testing.T) {
	posts := []Post{
		{Title: "Intro to Go", File: "go-intro.md"},
		{Title: "Advanced Go Patterns", File: "go-advanced.md"},
		{Title: "你好 世界", File: "hello.md"},
		{Title: "hello", File: "greeting.md"},
		{Title: "Raw", File: "raw"},
	}
	tests := []struct {
		name     string
		query    string
		file     string
		strategy string
	}{
		{"exact filename", "go-intro.md", "go-intro.md", "file-exact"},
		{"filename without extension", "go-advanced", "go-advanced.md", "file-with-ext"},
		{"stem of extensionless file", "raw", "raw", "file-exact"},
		{"filename beats title", "hello", "hello.md", "file-with-ext"},
		{"exact title", "Intro to Go", "go-intro.md", "title-exact"},
		{"title substring", "Patterns", "go-advanced.md", "title-contains"},
		{"cjk title", "你好 世界", "hello.md", "title-exact"},
		{"trimmed query", "  Intro to Go ", "go-intro.md", "title-exact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(posts, tt.query)
			if !res.Resolved() {
				t.Fatalf("Resolve(%q) did not resolve", tt.query)
			}
			if res.Post.File != tt.file {
				t.Errorf("Resolve(%q).Post.File = %q, want %q", tt.query, res.Post.File, tt.file)
			}
			if res.Strategy != tt.strategy {
				t.Errorf("Resolve(%q).Strategy = %q, want %q", tt.query, res.Strategy, tt.strategy)
			}
		})
	}
}

func TestResolveMisses(t *testing.T) {
	posts := []Post{{Title: "Only", File: "only.md"}}
	for _, q := range []string{"", "   ", "missing", "only.txt"} {
		if res := Resolve(posts, q); res.Resolved() {
			t.Errorf("Resolve(%q) resolved to %+v, want no match", q, res.Post)
		}
	}
	if res := Resolve(nil, "anything"); res.Resolved() {
		t.Error("Resolve on empty index should not resolve")
	}
}

func TestResolveWithCustomChain(t *testing.T) {
	posts := []Post{{Title: "Alpha", File: "a.md"}}
	chain := []Matcher{{Name: "title-exact", Match: DefaultMatchers[3].Match}}
	if res := ResolveWith(chain, posts, "a.md"); res.Resolved() {
		t.Error("title-only chain should not match on filename")
	}
	if res := ResolveWith(chain, posts, "Alpha"); !res.Resolved() {
		t.Error("title-only chain should match exact title")
	}
}
