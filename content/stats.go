package content

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	cjkPerMinute   = 300
	wordsPerMinute = 200
)

var (
	reCJK         = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]`)
	reLatinWord   = regexp.MustCompile(`[A-Za-z]+`)
	reFrontMatter = regexp.MustCompile(`\A---[ \t]*\n(?:[\s\S]*?\n)?---[ \t]*(?:\n|\z)`)
	reMarkup      = regexp.MustCompile("[#*`\\[\\]]")
)

// Stats summarises the length of a post body.
type Stats struct {
	CJK     int // CJK ideographs
	Words   int // Latin word tokens
	Total   int // CJK + Words
	Minutes int // estimated reading time
}

// ReadingStats counts CJK ideographs and Latin words separately and takes the
// slower of 300 ideographs or 200 words per minute.
func ReadingStats(md string) Stats {
	cjk := len(reCJK.FindAllStringIndex(md, -1))
	words := len(reLatinWord.FindAllStringIndex(md, -1))
	return Stats{
		CJK:     cjk,
		Words:   words,
		Total:   cjk + words,
		Minutes: max(ceilDiv(cjk, cjkPerMinute), ceilDiv(words, wordsPerMinute)),
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// StripFrontMatter removes a leading block delimited by two "---" lines.
// An unterminated block is left untouched.
func StripFrontMatter(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	return reFrontMatter.ReplaceAllString(md, "")
}

var excerptPolicy = bluemonday.StrictPolicy()

// Excerpt returns a plain-text description of at most n runes taken from the
// start of a Markdown body, followed by "...". It returns "" for an empty body.
func Excerpt(md string, n int) string {
	text := StripFrontMatter(md)
	text = reMarkup.ReplaceAllString(text, "")
	text = html.UnescapeString(excerptPolicy.Sanitize(text))
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if r := []rune(text); len(r) > n {
		text = string(r[:n])
	}
	text = strings.ReplaceAll(text, "\n", " ")
	return text + "..."
}
