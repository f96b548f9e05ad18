// Package content models blog posts hosted behind a remote content base and
// fetches the post index and Markdown bodies from it.
package content

import (
	"regexp"
	"strconv"
	"strings"
)

// Post is a single blog entry as listed in the remote index.json.
type Post struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	File  string `json:"file"`
}

// Key returns the canonical identity of the post: its Markdown filename
// without the .md extension. Filenames are unique within the content base.
func (p Post) Key() string {
	return strings.TrimSuffix(p.File, ".md")
}

// Slug returns the URL slug derived from the post title.
func (p Post) Slug() string {
	return Slug(p.Title)
}

const maxSlugLen = 100

var (
	reSlugInvalid = regexp.MustCompile(`[^\w\x{4e00}-\x{9fa5}-]`)
	reSlugSpace   = regexp.MustCompile(`\s+`)
	reSlugHyphens = regexp.MustCompile(`-+`)
)

// Slug converts a title to a lowercase, URL-safe slug made of word
// characters, CJK ideographs and hyphens, at most 100 runes long.
//
// Disallowed characters, whitespace included, are removed before hyphens
// are collapsed, so "Hello World" becomes "helloworld". Published post
// URLs depend on this exact form.
func Slug(title string) string {
	s := strings.ToLower(title)
	s = reSlugInvalid.ReplaceAllString(s, "")
	s = reSlugSpace.ReplaceAllString(s, "-")
	s = reSlugHyphens.ReplaceAllString(s, "-")
	if r := []rune(s); len(r) > maxSlugLen {
		s = string(r[:maxSlugLen])
	}
	return s
}

// UniqueSlugs assigns a slug to every post in index order. A post whose slug
// was already taken gets a numeric suffix ("-2", "-3", ...), so the result is
// stable for a given index. Posts whose title has no usable characters fall
// back to their key.
func UniqueSlugs(posts []Post) []string {
	taken := make(map[string]bool, len(posts))
	out := make([]string, len(posts))
	for i, p := range posts {
		base := p.Slug()
		if base == "" {
			base = Slug(p.Key())
		}
		if base == "" {
			base = "post"
		}
		slug := base
		for n := 2; taken[slug]; n++ {
			slug = base + "-" + strconv.Itoa(n)
		}
		taken[slug] = true
		out[i] = slug
	}
	return out
}
