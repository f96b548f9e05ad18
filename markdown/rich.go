package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/satinau/seoshell/content"
)

// Document is the result of a rich conversion.
type Document struct {
	HTML        string
	Description string   // front matter "description"
	Tags        []string // front matter "tags"
	Meta        map[string]any
}

// Rich renders full CommonMark + GFM with front matter support.
type Rich struct {
	md goldmark.Markdown
}

// NewRich returns a Rich converter that resolves relative link and image
// destinations against base.
func NewRich(base string) *Rich {
	return &Rich{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			meta.Meta,
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&urlTransformer{base: base}, 100),
			),
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Convert renders md to HTML and collects its front matter.
func (r *Rich) Convert(md string) (Document, error) {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := r.md.Convert([]byte(md), &buf, parser.WithContext(ctx)); err != nil {
		return Document{}, fmt.Errorf("markdown: convert: %w", err)
	}
	doc := Document{HTML: buf.String()}
	metaData, err := meta.TryGet(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("markdown: front matter: %w", err)
	}
	doc.Meta = metaData
	if d, ok := metaData["description"].(string); ok {
		doc.Description = strings.TrimSpace(d)
	}
	doc.Tags = stringList(metaData["tags"])
	return doc, nil
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		var out []string
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// urlTransformer rewrites link and image destinations so nothing relative
// reaches the output.
type urlTransformer struct {
	base string
}

func (t *urlTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch target := n.(type) {
		case *ast.Link:
			target.Destination = t.resolve(target.Destination)
			if content.IsAbsolute(string(target.Destination)) {
				target.SetAttribute([]byte("target"), []byte("_blank"))
				target.SetAttribute([]byte("rel"), []byte("noopener noreferrer"))
			}
		case *ast.Image:
			target.Destination = t.resolve(target.Destination)
			target.SetAttribute([]byte("loading"), []byte("lazy"))
		}
		return ast.WalkContinue, nil
	})
}

func (t *urlTransformer) resolve(dest []byte) []byte {
	href := string(dest)
	if href == "" || content.IsFragment(href) || t.base == "" {
		return dest
	}
	return []byte(content.ResolveURL(t.base, href))
}
