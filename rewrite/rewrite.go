// Package rewrite applies element-level edits to an HTML stream without
// building a DOM. Every token that no handler touches is copied through
// byte for byte, so scripts, styles, comments and whitespace survive.
package rewrite

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// ElementHandler edits a matched start tag.
type ElementHandler func(*Element)

type binding struct {
	sel Selector
	fn  ElementHandler
}

// Rewriter holds an ordered set of selector bindings. Handlers for the same
// element run in registration order.
type Rewriter struct {
	bindings []binding
}

// New returns an empty Rewriter.
func New() *Rewriter {
	return &Rewriter{}
}

// On registers h for every start tag matching sel.
func (rw *Rewriter) On(sel Selector, h ElementHandler) *Rewriter {
	rw.bindings = append(rw.bindings, binding{sel: sel, fn: h})
	return rw
}

// Len returns the number of registered handlers.
func (rw *Rewriter) Len() int {
	return len(rw.bindings)
}

// Transform copies r to w, applying the registered handlers.
func (rw *Rewriter) Transform(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	if err := rw.transform(bw, r); err != nil {
		return err
	}
	return bw.Flush()
}

func (rw *Rewriter) transform(w *bufio.Writer, r io.Reader) error {
	z := html.NewTokenizer(r)

	// While skipTag is set, tokens are dropped until the end tag that
	// balances the element whose inner content was replaced.
	var (
		skipTag   string
		skipDepth int
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// A tag cut off by EOF is not reported as a token; keep its bytes.
			if skipTag == "" {
				if _, err := w.Write(z.Raw()); err != nil {
					return err
				}
			}
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("rewrite: tokenize: %w", err)
			}
			return nil
		}

		if skipTag != "" {
			switch tt {
			case html.StartTagToken:
				if name, _ := z.TagName(); string(name) == skipTag {
					skipDepth++
				}
			case html.EndTagToken:
				if name, _ := z.TagName(); string(name) == skipTag {
					skipDepth--
					if skipDepth == 0 {
						skipTag = ""
						if _, err := w.Write(z.Raw()); err != nil {
							return err
						}
					}
				}
			}
			continue
		}

		if (tt != html.StartTagToken && tt != html.SelfClosingTagToken) || len(rw.bindings) == 0 {
			if _, err := w.Write(z.Raw()); err != nil {
				return err
			}
			continue
		}

		raw := append([]byte(nil), z.Raw()...)
		el := readElement(z, tt)
		matched := false
		for _, b := range rw.bindings {
			if b.sel.Matches(el.tag, el.attrs) {
				matched = true
				b.fn(el)
			}
		}

		var err error
		if matched && el.modified {
			_, err = w.WriteString(el.startTag())
		} else {
			_, err = w.Write(raw)
		}
		if err != nil {
			return err
		}
		if matched && el.replace && el.hasBody() {
			if _, err := w.WriteString(el.content()); err != nil {
				return err
			}
			skipTag, skipDepth = el.tag, 1
		}
	}
}

func readElement(z *html.Tokenizer, tt html.TokenType) *Element {
	name, more := z.TagName()
	el := &Element{tag: string(name), selfClosing: tt == html.SelfClosingTagToken}
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		el.attrs = append(el.attrs, html.Attribute{Key: string(key), Val: string(val)})
	}
	return el
}
