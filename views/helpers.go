package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block.
func BlogPostingJsonLD(a Article) string {
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      a.Title,
		"datePublished": a.Date,
		"url":           a.CanonicalURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   a.CanonicalURL,
		},
		"wordCount": a.Stats.Total,
	}
	if a.Description != "" {
		data["description"] = a.Description
	}
	if a.Site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  a.Site.Author,
			"url":   a.Site.URL,
		}
	}
	if a.Site.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  a.Site.Name,
		}
	}
	if a.Site.Image != "" {
		data["image"] = a.Site.Image
	}
	if len(a.Keywords) > 0 {
		data["keywords"] = strings.Join(a.Keywords, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// StatsLine formats the date and reading statistics under the article title.
func StatsLine(a Article) string {
	stats := Expand(a.Labels.WithDefaults().Stats,
		"words", strconv.Itoa(a.Stats.Total),
		"minutes", strconv.Itoa(a.Stats.Minutes))
	if a.Date == "" {
		return stats
	}
	return a.Date + " · " + stats
}
