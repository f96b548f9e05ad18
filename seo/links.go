package seo

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/satinau/seoshell/content"
)

// URLStyle selects the public URL form of a post.
type URLStyle string

const (
	// StyleQuery links to <target>?title=<title>, served by the shell.
	StyleQuery URLStyle = "query"
	// StyleSlug links to <target>/<slug>/, served by pre-rendered pages.
	StyleSlug URLStyle = "slug"
)

// ParseURLStyle accepts "query", "slug" or "" (query).
func ParseURLStyle(s string) (URLStyle, error) {
	switch URLStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleQuery:
		return StyleQuery, nil
	case StyleSlug:
		return StyleSlug, nil
	}
	return "", fmt.Errorf("seo: unknown url style %q", s)
}

// Links computes post URLs for one index snapshot. Slugs are assigned with
// content.UniqueSlugs so every surface built from the same index agrees.
type Links struct {
	site   string
	target string
	style  URLStyle
	slugs  map[string]string
}

// NewLinks builds the URL table for posts. siteURL is the absolute site root
// and target the path of the blog page (for example "/blog").
func NewLinks(siteURL, target string, style URLStyle, posts []content.Post) *Links {
	l := &Links{
		site:   strings.TrimSuffix(siteURL, "/"),
		target: "/" + strings.Trim(target, "/"),
		style:  style,
		slugs:  make(map[string]string, len(posts)),
	}
	for i, slug := range content.UniqueSlugs(posts) {
		if _, dup := l.slugs[posts[i].Key()]; !dup {
			l.slugs[posts[i].Key()] = slug
		}
	}
	return l
}

// Slug returns the unique slug of p.
func (l *Links) Slug(p content.Post) string {
	if s, ok := l.slugs[p.Key()]; ok {
		return s
	}
	return content.UniqueSlugs([]content.Post{p})[0]
}

// Path returns the site-relative URL of p.
func (l *Links) Path(p content.Post) string {
	if l.style == StyleSlug {
		return l.SlugPath(l.Slug(p))
	}
	return l.target + "?title=" + EscapeComponent(p.Title)
}

// URL returns the absolute URL of p.
func (l *Links) URL(p content.Post) string {
	return l.site + l.Path(p)
}

// SlugPath returns the pretty path for slug.
func (l *Links) SlugPath(slug string) string {
	return l.target + "/" + url.PathEscape(slug) + "/"
}

// Style reports the configured URL style.
func (l *Links) Style() URLStyle {
	return l.style
}

// EscapeComponent percent-encodes s for use as a query value, encoding
// spaces as %20 rather than "+".
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
