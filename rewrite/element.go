package rewrite

import (
	"strings"

	"golang.org/x/net/html"
)

// ContentType says how replacement content is written.
type ContentType int

const (
	// HTML content is written as-is.
	HTML ContentType = iota
	// Text content is escaped.
	Text
)

// Element is the start tag handed to an ElementHandler.
type Element struct {
	tag         string
	attrs       []html.Attribute
	selfClosing bool
	modified    bool

	inner     string
	innerType ContentType
	replace   bool
}

// TagName returns the lowercase tag name.
func (e *Element) TagName() string {
	return e.tag
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return lookup(e.attrs, strings.ToLower(name))
}

// SetAttribute sets or adds an attribute.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	for i, a := range e.attrs {
		if a.Namespace == "" && a.Key == name {
			if a.Val != value {
				e.attrs[i].Val = value
				e.modified = true
			}
			return
		}
	}
	e.attrs = append(e.attrs, html.Attribute{Key: name, Val: value})
	e.modified = true
}

// RemoveAttribute deletes an attribute if present.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range e.attrs {
		if a.Namespace == "" && a.Key == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			e.modified = true
			return
		}
	}
}

// SetInnerContent replaces everything between the start tag and its
// balancing end tag. It has no effect on void elements.
func (e *Element) SetInnerContent(s string, t ContentType) {
	e.inner = s
	e.innerType = t
	e.replace = true
}

func (e *Element) hasBody() bool {
	return !e.selfClosing && !voidElements[e.tag]
}

// startTag serialises the (modified) start tag.
func (e *Element) startTag() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	if e.selfClosing {
		b.WriteString(" /")
	}
	b.WriteByte('>')
	return b.String()
}

func (e *Element) content() string {
	if e.innerType == Text {
		return html.EscapeString(e.inner)
	}
	return e.inner
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}
