// Package markdown turns post Markdown into HTML. Transcode is a small,
// lossy regex pass for crawler-facing injections; Rich is a full goldmark
// pipeline used by the static page generator.
package markdown

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/satinau/seoshell/content"
)

var (
	reHeading    = regexp.MustCompile(`(?m)^(#{1,3}) (.*)$`)
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reImg        = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	reLink       = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reBlockquote = regexp.MustCompile(`(?m)^&gt; (.*)$`)
	reListItem   = regexp.MustCompile(`(?m)^- (.*)$`)
)

// Transcode converts md into an approximate HTML fragment with every image
// source and non-fragment link resolved against base. The output is wrapped
// in a single div.seo-article-body. Empty input yields "".
func Transcode(md, base string) string {
	if md == "" {
		return ""
	}
	s := content.StripFrontMatter(md)
	s = html.EscapeString(s)

	s = reHeading.ReplaceAllStringFunc(s, func(m string) string {
		match := reHeading.FindStringSubmatch(m)
		tag := "h" + strconv.Itoa(len(match[1]))
		return "<" + tag + ">" + match[2] + "</" + tag + ">"
	})
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reImg.ReplaceAllStringFunc(s, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		src := SafeURL(base, match[2])
		if src == "" {
			return match[1]
		}
		return `<img src="` + src + `" alt="` + match[1] + `">`
	})
	s = reLink.ReplaceAllStringFunc(s, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(base, match[2])
		if href == "" {
			return match[1]
		}
		return `<a href="` + href + `">` + match[1] + `</a>`
	})
	s = reBlockquote.ReplaceAllString(s, "<blockquote>$1</blockquote>")
	s = reListItem.ReplaceAllString(s, "<li>$1</li>")
	s = strings.ReplaceAll(s, "\n\n", "</p><p>")

	return `<div class="seo-article-body"><p>` + s + `</p></div>`
}

// SafeURL resolves an HTML-escaped reference against base and returns it
// escaped for use in an attribute. Fragments are kept as they are.
// References with a scheme other than http, https, mailto or tel yield "".
func SafeURL(base, raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if content.IsFragment(val) {
		return html.EscapeString(val)
	}
	if strings.HasPrefix(val, "//") {
		if b, err := url.Parse(base); err == nil && b.Scheme != "" {
			val = b.Scheme + ":" + val
		}
	}
	val = content.ResolveURL(base, val)
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
