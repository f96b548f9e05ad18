package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Selector matches a start tag. The zero value of each field means "any".
type Selector struct {
	Tag      string
	ID       string
	Attr     string
	Value    string
	HasValue bool
}

var reSelector = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9-]*)?(?:#([\w-]+))?(?:\[([\w-]+)(?:="([^"]*)")?\])?$`)

// ParseSelector parses one of the supported forms: tag, #id, tag#id,
// tag[attr] and tag[attr="value"].
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	m := reSelector.FindStringSubmatchIndex(s)
	if s == "" || m == nil {
		return Selector{}, fmt.Errorf("rewrite: unsupported selector %q", s)
	}
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return s[m[2*i]:m[2*i+1]]
	}
	return Selector{
		Tag:      strings.ToLower(group(1)),
		ID:       group(2),
		Attr:     strings.ToLower(group(3)),
		Value:    group(4),
		HasValue: m[8] >= 0,
	}, nil
}

// MustParseSelector is like ParseSelector but panics on error.
func MustParseSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// Matches reports whether a start tag with the given name and attributes
// is selected.
func (s Selector) Matches(tag string, attrs []html.Attribute) bool {
	if s.Tag != "" && s.Tag != tag {
		return false
	}
	if s.ID != "" {
		if id, ok := lookup(attrs, "id"); !ok || id != s.ID {
			return false
		}
	}
	if s.Attr != "" {
		v, ok := lookup(attrs, s.Attr)
		if !ok || (s.HasValue && v != s.Value) {
			return false
		}
	}
	return true
}

func (s Selector) String() string {
	out := s.Tag
	if s.ID != "" {
		out += "#" + s.ID
	}
	if s.Attr != "" {
		out += "[" + s.Attr
		if s.HasValue {
			out += `="` + s.Value + `"`
		}
		out += "]"
	}
	return out
}

func lookup(attrs []html.Attribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
